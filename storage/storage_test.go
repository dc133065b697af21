package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"listing-optimizer/models"
)

func sampleResults() []*models.PipelineResult {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mk := func(id, title string, orig, rec float64, offset time.Duration) *models.PipelineResult {
		return &models.PipelineResult{
			RunID:      id,
			URL:        "https://www.ebay.com/itm/123456789012",
			State:      "done",
			Attributes: &models.ListingAttributes{Title: title, Price: orig},
			Comparison: &models.ComparisonData{Prices: models.PriceStatistics{Confidence: 0.75}},
			Optimized: &models.OptimizedContent{
				Title:         title + " Tested",
				Description:   "Works, with \"quotes\", commas\nand newlines.",
				Price:         rec,
				Keywords:      []string{"canon", "film"},
				SellingPoints: []string{"Fast shipping", "Tested"},
			},
			Rendered:  "<h1>" + title + "</h1>",
			Elapsed:   1500 * time.Millisecond,
			CreatedAt: created.Add(offset),
		}
	}
	return []*models.PipelineResult{
		mk("6f1c1f44-0d4c-4c1e-9b51-3f3f7a0a0001", "Canon AE-1", 189, 195.5, 0),
		mk("6f1c1f44-0d4c-4c1e-9b51-3f3f7a0a0002", "Nikon FM2", 320, 310, time.Minute),
	}
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := w.Write(sampleResults()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("rows: got %d, want header + 2", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(columns, ",") {
		t.Errorf("header: got %v", records[0])
	}
	first := records[1]
	if first[3] != "Canon AE-1 Tested" || first[5] != "195.50" || first[7] != "canon,film" {
		t.Errorf("row: got %v", first)
	}
	if first[9] != "Works, with \"quotes\", commas\nand newlines." {
		t.Errorf("description did not round-trip: %q", first[9])
	}
	if first[11] != "1500" || first[12] != "2024-06-01T12:00:00Z" {
		t.Errorf("elapsed/created: got %q %q", first[11], first[12])
	}
}

func TestSQLiteWriter(t *testing.T) {
	w, err := NewSQLiteWriter(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("NewSQLiteWriter: %v", err)
	}
	defer w.Close()

	results := sampleResults()
	if err := w.Write(results); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// duplicate run ids are ignored
	if err := w.Write(results[:1]); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	stored, err := w.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored: got %d, want 2", len(stored))
	}
	if stored[0].OptimizedTitle != "Nikon FM2 Tested" {
		t.Errorf("newest first: got %q", stored[0].OptimizedTitle)
	}
	if stored[1].RecommendedPrice != 195.5 || stored[1].Confidence != 0.75 {
		t.Errorf("values: got %+v", stored[1])
	}
	if !stored[1].CreatedAt.Equal(results[0].CreatedAt) {
		t.Errorf("CreatedAt: got %v, want %v", stored[1].CreatedAt, results[0].CreatedAt)
	}
}

func TestBatchInsertPlaceholders(t *testing.T) {
	query, args := batchInsert(sampleResults(), func(n int) string { return "$" + strconv.Itoa(n) })
	if len(args) != 2*len(columns) {
		t.Errorf("args: got %d, want %d", len(args), 2*len(columns))
	}
	if !strings.Contains(query, "($1,$2,") || !strings.Contains(query, "$26)") {
		t.Errorf("unexpected placeholders: %s", query)
	}
	if !strings.HasPrefix(query, "INSERT INTO optimized_listings (run_id, url,") {
		t.Errorf("unexpected query: %s", query)
	}
}

