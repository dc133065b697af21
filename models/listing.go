package models

import "time"

// Content is the raw page returned by the acquisition layer, with the few
// structured fields that can be read without knowing the page layout.
type Content struct {
	URL        string            `json:"url"`
	StatusCode int               `json:"status_code"`
	Title      string            `json:"title"`
	Meta       map[string]string `json:"meta"`
	Body       string            `json:"body"`
	FetchedAt  time.Time         `json:"fetched_at"`
}

// ListingAttributes holds the structured fields extracted from a listing page.
// It is produced once per pipeline run and never modified afterwards.
type ListingAttributes struct {
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Price          float64           `json:"price"`
	Condition      string            `json:"condition"`
	Images         []string          `json:"images"`
	Specifications map[string]string `json:"specifications"`
	SellerID       string            `json:"seller_id"`
	Location       string            `json:"location"`
}
