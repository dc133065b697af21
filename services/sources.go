package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strings"
	"time"

	"listing-optimizer/models"
	"listing-optimizer/utils"
)

// ComparableItemSource finds listings comparable to the given one.
type ComparableItemSource interface {
	ComparableItems(ctx context.Context, attrs *models.ListingAttributes) ([]models.ComparisonItem, error)
}

// KeywordStatsSource reports search keyword statistics for a product.
type KeywordStatsSource interface {
	KeywordStats(ctx context.Context, attrs *models.ListingAttributes) (models.KeywordStatistics, error)
}

// TrendSource reports recent price history, most recent period first.
type TrendSource interface {
	Trends(ctx context.Context, attrs *models.ListingAttributes) ([]models.TrendPoint, error)
}

// SimulatedMarket is an offline stand-in for a marketplace research API. Every
// number is derived from a hash of the listing title, so identical listings
// always get identical data.
type SimulatedMarket struct {
	Clock utils.Clock
}

var simulatedPlatforms = []string{"ebay", "amazon", "mercari", "facebook"}

var marketModifiers = []string{"unlocked", "authentic", "fast shipping", "original box", "tested", "genuine", "oem"}

func (m *SimulatedMarket) now() time.Time {
	if m.Clock == nil {
		return time.Now()
	}
	return m.Clock.Now()
}

func (m *SimulatedMarket) rng(attrs *models.ListingAttributes, salt string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(attrs.Title)))
	h.Write([]byte(salt))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func (m *SimulatedMarket) ComparableItems(_ context.Context, attrs *models.ListingAttributes) ([]models.ComparisonItem, error) {
	if attrs.Price <= 0 {
		return nil, nil
	}
	r := m.rng(attrs, "items")
	now := m.now()

	count := 8 + r.Intn(13)
	items := make([]models.ComparisonItem, 0, count)
	for i := 0; i < count; i++ {
		item := models.ComparisonItem{
			Title:     fmt.Sprintf("%s #%d", attrs.Title, i+1),
			Price:     round2(attrs.Price * (0.85 + 0.3*r.Float64())),
			Condition: attrs.Condition,
			Platform:  simulatedPlatforms[r.Intn(len(simulatedPlatforms))],
		}
		if r.Float64() < 0.6 {
			sold := now.Add(-time.Duration(1+r.Intn(30)) * 24 * time.Hour)
			item.SoldAt = &sold
		}
		items = append(items, item)
	}
	return items, nil
}

func (m *SimulatedMarket) KeywordStats(_ context.Context, attrs *models.ListingAttributes) (models.KeywordStatistics, error) {
	r := m.rng(attrs, "keywords")
	stats := models.KeywordStatistics{
		Frequency: make(map[string]int),
		Demand:    make(map[string]float64),
	}

	seen := make(map[string]struct{})
	var candidates []string
	add := func(k string) {
		k = strings.ToLower(normaliseText(k))
		if len(k) <= 2 {
			return
		}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		candidates = append(candidates, k)
	}
	for _, w := range strings.Fields(attrs.Title) {
		add(strings.Trim(w, ".,;:!?()[]|"))
	}
	for _, mod := range marketModifiers {
		add(mod)
	}

	for _, k := range candidates {
		stats.Frequency[k] = 5 + r.Intn(46)
		stats.Demand[k] = float64(100 + r.Intn(901))
	}
	stats.Ranked = append(stats.Ranked, candidates...)
	sort.SliceStable(stats.Ranked, func(i, j int) bool {
		return stats.Frequency[stats.Ranked[i]] > stats.Frequency[stats.Ranked[j]]
	})
	return stats, nil
}

func (m *SimulatedMarket) Trends(_ context.Context, attrs *models.ListingAttributes) ([]models.TrendPoint, error) {
	if attrs.Price <= 0 {
		return nil, nil
	}
	r := m.rng(attrs, "trends")
	now := m.now()

	const periods = 6
	points := make([]models.TrendPoint, periods)
	for i := 0; i < periods; i++ {
		points[i] = models.TrendPoint{
			Period:       now.AddDate(0, -i, 0).Format("2006-01"),
			AveragePrice: round2(attrs.Price * (0.9 + 0.2*r.Float64())),
			Volume:       20 + r.Intn(180),
		}
	}
	for i := range points {
		points[i].Direction = models.TrendStable
		if i+1 == len(points) {
			continue
		}
		prev := points[i+1].AveragePrice
		switch change := (points[i].AveragePrice - prev) / prev; {
		case change > 0.02:
			points[i].Direction = models.TrendIncreasing
		case change < -0.02:
			points[i].Direction = models.TrendDecreasing
		}
	}
	return points, nil
}
