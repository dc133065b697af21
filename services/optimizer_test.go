package services

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"listing-optimizer/errs"
	"listing-optimizer/models"
	"listing-optimizer/utils"
)

func newTestOptimizer() *Optimizer {
	return NewOptimizer(DefaultOptimizerConfig(), utils.NewLoggerTo(io.Discard))
}

func iphoneAttrs() *models.ListingAttributes {
	return &models.ListingAttributes{
		Title:          "iPhone 13 Pro Max",
		Description:    "Sierra blue, 256GB, battery health 91%. Always kept in a case.",
		Price:          899.99,
		Condition:      "Used",
		Specifications: map[string]string{"Storage Capacity": "256 GB", "Colour": "Sierra Blue"},
	}
}

func iphoneData() *models.ComparisonData {
	return &models.ComparisonData{
		Prices: models.PriceStatistics{
			Average:     916.67,
			Range:       models.PriceRange{Min: 850, Max: 990},
			Recommended: 925,
			Confidence:  0.85,
		},
		Keywords: models.KeywordStatistics{
			Ranked:    []string{"unlocked", "256gb", "iphone"},
			Frequency: map[string]int{"unlocked": 40, "256gb": 30, "iphone": 50},
			Demand:    map[string]float64{"unlocked": 800, "256gb": 500, "iphone": 900},
		},
	}
}

func TestOptimizeIPhoneExample(t *testing.T) {
	out, err := newTestOptimizer().Optimize(iphoneAttrs(), iphoneData())
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	if out.Price < 458.335 || out.Price > 1375.005 {
		t.Errorf("Price: got %v, want within [458.335, 1375.005]", out.Price)
	}
	if out.Price != 925 {
		t.Errorf("Price: got %v, want 925 at high confidence", out.Price)
	}
	if !strings.Contains(out.Title, "iPhone") || !strings.Contains(out.Title, "13") {
		t.Errorf("Title lost identity: %q", out.Title)
	}
	if n := utf8.RuneCountInString(out.Title); n > TitleLimit {
		t.Errorf("Title length %d exceeds %d", n, TitleLimit)
	}
	if n := utf8.RuneCountInString(out.Description); n < DescriptionMin || n > DescriptionMax {
		t.Errorf("Description length %d outside band", n)
	}
	if len(out.Keywords) != 3 || out.Keywords[0] != "iphone" {
		t.Errorf("Keywords: got %v", out.Keywords)
	}
	if len(out.SellingPoints) == 0 || len(out.SellingPoints) > MaxSellingPoints {
		t.Errorf("SellingPoints: got %d", len(out.SellingPoints))
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	o := newTestOptimizer()
	a, err := o.Optimize(iphoneAttrs(), iphoneData())
	if err != nil {
		t.Fatal(err)
	}
	b, err := o.Optimize(iphoneAttrs(), iphoneData())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("outputs differ:\n%+v\n%+v", a, b)
	}
}

func TestOptimizeValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ListingAttributes, *models.ComparisonData)
	}{
		{"empty description", func(a *models.ListingAttributes, _ *models.ComparisonData) { a.Description = "  " }},
		{"empty title", func(a *models.ListingAttributes, _ *models.ComparisonData) { a.Title = "" }},
		{"zero price", func(a *models.ListingAttributes, _ *models.ComparisonData) { a.Price = 0 }},
		{"no keywords", func(_ *models.ListingAttributes, d *models.ComparisonData) { d.Keywords = models.KeywordStatistics{} }},
		{"no price stats", func(_ *models.ListingAttributes, d *models.ComparisonData) { d.Prices = models.PriceStatistics{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs, data := iphoneAttrs(), iphoneData()
			tt.mutate(attrs, data)
			_, err := newTestOptimizer().Optimize(attrs, data)
			if got := errs.KindOf(err); got != errs.ValidationFailed {
				t.Errorf("kind: got %q, want %q (%v)", got, errs.ValidationFailed, err)
			}
		})
	}

	if _, err := newTestOptimizer().Optimize(nil, iphoneData()); !errs.Is(err, errs.ValidationFailed) {
		t.Errorf("nil attrs: got %v", err)
	}
	if _, err := newTestOptimizer().Optimize(iphoneAttrs(), nil); !errs.Is(err, errs.ValidationFailed) {
		t.Errorf("nil data: got %v", err)
	}
}

func TestOptimizeRejectsPriceDrift(t *testing.T) {
	attrs := iphoneAttrs()
	attrs.Price = 100
	data := iphoneData()
	data.Prices = models.PriceStatistics{Average: 300, Recommended: 300, Confidence: 0.9}

	_, err := newTestOptimizer().Optimize(attrs, data)
	if !errs.Is(err, errs.ConsistencyFailed) {
		t.Errorf("got %v, want ConsistencyFailed", err)
	}
}

func TestOptimizeRejectsTitleThatLosesIdentity(t *testing.T) {
	words := make([]string, 10)
	for i := range words {
		words[i] = fmt.Sprintf("word%011d", i)
	}
	attrs := iphoneAttrs()
	attrs.Title = strings.Join(words, " ")

	_, err := newTestOptimizer().Optimize(attrs, iphoneData())
	if !errs.Is(err, errs.ConsistencyFailed) {
		t.Errorf("got %v, want ConsistencyFailed", err)
	}
}

func TestWordPresentEitherDirection(t *testing.T) {
	optimized := "iphone 13 pro"
	if !wordPresent("iphone", optimized, significantWords(optimized)) {
		t.Error("word contained in optimized title should count")
	}
	if !wordPresent("professional", optimized, significantWords(optimized)) {
		t.Error("optimized word contained in original word should count")
	}
	if wordPresent("samsung", optimized, significantWords(optimized)) {
		t.Error("unrelated word should not count")
	}
}
