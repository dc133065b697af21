package models

import "time"

// OptimizedContent is the validated output of the optimization engine.
type OptimizedContent struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	Keywords      []string `json:"keywords"`
	SellingPoints []string `json:"selling_points"`
}

// StageTiming records how long one pipeline stage ran.
type StageTiming struct {
	Stage   string        `json:"stage"`
	Elapsed time.Duration `json:"elapsed"`
}

// PipelineResult aggregates everything produced by one successful run.
type PipelineResult struct {
	RunID      string             `json:"run_id"`
	URL        string             `json:"url"`
	State      string             `json:"state"`
	Attributes *ListingAttributes `json:"attributes"`
	Comparison *ComparisonData    `json:"comparison"`
	Optimized  *OptimizedContent  `json:"optimized"`
	Rendered   string             `json:"rendered"`
	Timings    []StageTiming      `json:"timings"`
	Elapsed    time.Duration      `json:"elapsed"`
	CreatedAt  time.Time          `json:"created_at"`
}
