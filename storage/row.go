package storage

import (
	"strings"
	"time"

	"listing-optimizer/models"
)

// columns is the flattened result layout shared by every backend.
var columns = []string{
	"run_id", "url", "original_title", "optimized_title", "original_price",
	"recommended_price", "confidence", "keywords", "selling_points",
	"description", "rendered", "elapsed_ms", "created_at",
}

type row struct {
	RunID            string
	URL              string
	OriginalTitle    string
	OptimizedTitle   string
	OriginalPrice    float64
	RecommendedPrice float64
	Confidence       float64
	Keywords         string
	SellingPoints    string
	Description      string
	Rendered         string
	ElapsedMs        int64
	CreatedAt        time.Time
}

func toRow(r *models.PipelineResult) row {
	out := row{
		RunID:     r.RunID,
		URL:       r.URL,
		Rendered:  r.Rendered,
		ElapsedMs: r.Elapsed.Milliseconds(),
		CreatedAt: r.CreatedAt,
	}
	if r.Attributes != nil {
		out.OriginalTitle = r.Attributes.Title
		out.OriginalPrice = r.Attributes.Price
	}
	if r.Optimized != nil {
		out.OptimizedTitle = r.Optimized.Title
		out.RecommendedPrice = r.Optimized.Price
		out.Keywords = strings.Join(r.Optimized.Keywords, ",")
		out.SellingPoints = strings.Join(r.Optimized.SellingPoints, "|")
		out.Description = r.Optimized.Description
	}
	if r.Comparison != nil {
		out.Confidence = r.Comparison.Prices.Confidence
	}
	return out
}

func (r row) args() []any {
	return []any{
		r.RunID, r.URL, r.OriginalTitle, r.OptimizedTitle, r.OriginalPrice,
		r.RecommendedPrice, r.Confidence, r.Keywords, r.SellingPoints,
		r.Description, r.Rendered, r.ElapsedMs, r.CreatedAt,
	}
}

// StoredResult is the summary of a persisted result read back from a database.
type StoredResult struct {
	RunID            string
	URL              string
	OptimizedTitle   string
	OriginalPrice    float64
	RecommendedPrice float64
	Confidence       float64
	CreatedAt        time.Time
}
