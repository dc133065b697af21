package models

import "time"

// ComparisonItem is one comparable listing found on a marketplace.
type ComparisonItem struct {
	Title     string     `json:"title"`
	Price     float64    `json:"price"`
	Condition string     `json:"condition"`
	Platform  string     `json:"platform"`
	SoldAt    *time.Time `json:"sold_at,omitempty"`
}

// PriceRange is the inclusive [Min, Max] span of observed prices.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PriceStatistics summarises a set of comparison items.
// Min <= Average <= Max always holds.
type PriceStatistics struct {
	Average     float64    `json:"average"`
	Range       PriceRange `json:"range"`
	Recommended float64    `json:"recommended"`
	Confidence  float64    `json:"confidence"`
}

// KeywordStatistics describes search keywords for a product. Every keyword in
// Ranked has an entry in Frequency.
type KeywordStatistics struct {
	Ranked    []string           `json:"ranked"`
	Frequency map[string]int     `json:"frequency"`
	Demand    map[string]float64 `json:"demand"`
}

// TrendDirection tags the price movement of a period.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// TrendPoint is one period of market history. Sequences are most-recent first.
type TrendPoint struct {
	Period       string         `json:"period"`
	AveragePrice float64        `json:"average_price"`
	Volume       int            `json:"volume"`
	Direction    TrendDirection `json:"direction"`
}

// ComparisonData is the read-only research output handed to the optimizer.
type ComparisonData struct {
	Items    []ComparisonItem  `json:"items"`
	Prices   PriceStatistics   `json:"prices"`
	Keywords KeywordStatistics `json:"keywords"`
	Trends   []TrendPoint      `json:"trends"`
}
