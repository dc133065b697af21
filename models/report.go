package models

import "time"

// InsightReport summarises a batch of pipeline runs.
type InsightReport struct {
	TotalRuns int `json:"total_runs"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	AverageOriginalPrice    float64 `json:"average_original_price"`
	AverageRecommendedPrice float64 `json:"average_recommended_price"`
	AveragePriceChangePct   float64 `json:"average_price_change_pct"`

	LargestChange *PipelineResult `json:"-"`

	FailuresByKind   map[string]int           `json:"failures_by_kind"`
	FailuresByStage  map[string]int           `json:"failures_by_stage"`
	AverageStageTime map[string]time.Duration `json:"average_stage_time"`
	TopKeywords      []string                 `json:"top_keywords"`
}
