package services

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"listing-optimizer/errs"
	"listing-optimizer/models"
	"listing-optimizer/utils"
)

func sampleResult(title string, orig, rec float64, keywords ...string) *models.PipelineResult {
	return &models.PipelineResult{
		RunID:      "run-" + title,
		URL:        "https://www.ebay.com/itm/123456789012",
		Attributes: &models.ListingAttributes{Title: title, Price: orig},
		Optimized:  &models.OptimizedContent{Title: title, Price: rec, Keywords: keywords},
		Comparison: &models.ComparisonData{Prices: models.PriceStatistics{Confidence: 0.8}},
		Rendered:   "<h1>" + title + "</h1>",
		Timings: []models.StageTiming{
			{Stage: "fetching", Elapsed: 200 * time.Millisecond},
			{Stage: "optimizing", Elapsed: 10 * time.Millisecond},
		},
		Elapsed: 210 * time.Millisecond,
	}
}

func sampleBatch() ([]*models.PipelineResult, []error) {
	results := []*models.PipelineResult{
		sampleResult("Camera", 100, 110, "canon", "film"),
		sampleResult("Phone", 200, 150, "unlocked", "canon"),
		sampleResult("Lens", 300, 300, "canon"),
	}
	fetchErr := errs.New(errs.RateLimited, "too many requests")
	fetchErr.Stage = "fetching"
	failures := []error{
		fetchErr,
		errs.New(errs.ValidationFailed, "missing title"),
	}
	return results, failures
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(utils.NewLoggerTo(io.Discard))
	r := svc.Generate(sampleBatch())
	if r.TotalRuns != 5 || r.Succeeded != 3 || r.Failed != 2 {
		t.Errorf("counts: got total=%d ok=%d failed=%d", r.TotalRuns, r.Succeeded, r.Failed)
	}
	if r.FailuresByKind[string(errs.RateLimited)] != 1 || r.FailuresByKind[string(errs.ValidationFailed)] != 1 {
		t.Errorf("FailuresByKind: got %v", r.FailuresByKind)
	}
	if r.FailuresByStage["fetching"] != 1 || r.FailuresByStage["unknown"] != 1 {
		t.Errorf("FailuresByStage: got %v", r.FailuresByStage)
	}
}

func TestInsightPrices(t *testing.T) {
	svc := NewInsightService(utils.NewLoggerTo(io.Discard))
	r := svc.Generate(sampleBatch())
	if r.AverageOriginalPrice != 200 {
		t.Errorf("AverageOriginalPrice: got %.2f, want 200", r.AverageOriginalPrice)
	}
	if r.AverageRecommendedPrice != 186.67 {
		t.Errorf("AverageRecommendedPrice: got %.2f, want 186.67", r.AverageRecommendedPrice)
	}
	// (+10% -25% +0%) / 3
	if r.AveragePriceChangePct != -5 {
		t.Errorf("AveragePriceChangePct: got %.2f, want -5", r.AveragePriceChangePct)
	}
	if r.LargestChange == nil || r.LargestChange.Attributes.Title != "Phone" {
		t.Errorf("LargestChange: got %+v", r.LargestChange)
	}
}

func TestInsightStageTimesAndKeywords(t *testing.T) {
	svc := NewInsightService(utils.NewLoggerTo(io.Discard))
	r := svc.Generate(sampleBatch())
	if r.AverageStageTime["fetching"] != 200*time.Millisecond {
		t.Errorf("fetching avg: got %v", r.AverageStageTime["fetching"])
	}
	if len(r.TopKeywords) != 3 || r.TopKeywords[0] != "canon" {
		t.Errorf("TopKeywords: got %v", r.TopKeywords)
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(utils.NewLoggerTo(io.Discard))
	r := svc.Generate(nil, nil)
	if r.TotalRuns != 0 || r.LargestChange != nil {
		t.Errorf("expected an empty report, got %+v", r)
	}
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(utils.NewLoggerTo(io.Discard))
	var buf bytes.Buffer
	svc.Print(&buf, svc.Generate(sampleBatch()))

	out := buf.String()
	for _, want := range []string{"LISTING OPTIMIZATION SUMMARY", "1st", "canon", string(errs.RateLimited)} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	PrintResult(&buf, sampleResult("Camera", 100, 110, "canon"))

	out := buf.String()
	for _, want := range []string{"run-Camera", "Camera", "canon", "80%"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}
