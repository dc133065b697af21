package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"listing-optimizer/cache"
	"listing-optimizer/models"
	"listing-optimizer/utils"
)

// ResearchOptions tunes a Researcher.
type ResearchOptions struct {
	TargetCount int
	CacheTTL    time.Duration
}

// Researcher gathers comparison data for a listing. Its three sub-analyses
// run concurrently, each holding a slot of a gate shared across the process.
type Researcher struct {
	items    ComparableItemSource
	keywords KeywordStatsSource
	trends   TrendSource
	cache    cache.Cache
	gate     *utils.Gate
	logger   *utils.Logger
	opts     ResearchOptions
}

// NewResearcher creates a Researcher. A nil gate allows three concurrent
// sub-analyses.
func NewResearcher(items ComparableItemSource, keywords KeywordStatsSource, trends TrendSource,
	c cache.Cache, gate *utils.Gate, logger *utils.Logger, opts ResearchOptions) *Researcher {
	if gate == nil {
		gate = utils.NewGate(3)
	}
	if opts.TargetCount < 1 {
		opts.TargetCount = 20
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Minute
	}
	return &Researcher{
		items:    items,
		keywords: keywords,
		trends:   trends,
		cache:    c,
		gate:     gate,
		logger:   logger,
		opts:     opts,
	}
}

// Analyze never fails: a sub-analysis that errors contributes no data and the
// price statistics fall back to low confidence.
func (r *Researcher) Analyze(ctx context.Context, attrs *models.ListingAttributes) *models.ComparisonData {
	key := cache.Fingerprint("research", attrs.Title, attrs.Condition, priceBucket(attrs.Price))
	if r.cache != nil {
		var cached models.ComparisonData
		ok, err := cache.GetJSON(ctx, r.cache, key, &cached)
		if err != nil {
			r.logger.Warn("[research] Cache read failed, treating as miss: %v", err)
		} else if ok {
			r.logger.Debug("[research] Cache hit for %q", attrs.Title)
			return &cached
		}
	}

	var (
		items    []models.ComparisonItem
		keywords models.KeywordStatistics
		trends   []models.TrendPoint
	)

	var g errgroup.Group
	var itemsOK, keywordsOK, trendsOK bool
	g.Go(func() error {
		itemsOK = r.run(ctx, "comparable items", func(ctx context.Context) error {
			got, err := r.items.ComparableItems(ctx, attrs)
			if err == nil {
				items = got
			}
			return err
		})
		return nil
	})
	g.Go(func() error {
		keywordsOK = r.run(ctx, "keyword statistics", func(ctx context.Context) error {
			got, err := r.keywords.KeywordStats(ctx, attrs)
			if err == nil {
				keywords = got
			}
			return err
		})
		return nil
	})
	g.Go(func() error {
		trendsOK = r.run(ctx, "trends", func(ctx context.Context) error {
			got, err := r.trends.Trends(ctx, attrs)
			if err == nil {
				trends = got
			}
			return err
		})
		return nil
	})
	_ = g.Wait()
	complete := itemsOK && keywordsOK && trendsOK && ctx.Err() == nil

	valid := make([]models.ComparisonItem, 0, len(items))
	for _, it := range items {
		if it.Price > 0 {
			valid = append(valid, it)
		}
	}
	if trends == nil {
		trends = []models.TrendPoint{}
	}

	data := &models.ComparisonData{
		Items:    valid,
		Prices:   DerivePriceStatistics(valid, attrs.Price, r.opts.TargetCount),
		Keywords: normaliseKeywordStats(keywords),
		Trends:   trends,
	}
	r.logger.Info("[research] %d comparables, %d keywords, %d trend points (confidence %.2f)",
		len(data.Items), len(data.Keywords.Ranked), len(data.Trends), data.Prices.Confidence)

	// partial results are returned but never cached
	if r.cache != nil && complete {
		if err := cache.SetJSON(ctx, r.cache, key, data, r.opts.CacheTTL); err != nil {
			r.logger.Warn("[research] Cache write failed: %v", err)
		}
	}
	return data
}

// run reports whether the sub-analysis succeeded.
func (r *Researcher) run(ctx context.Context, name string, fn func(ctx context.Context) error) bool {
	start := time.Now()
	if err := r.gate.Do(ctx, fn); err != nil {
		r.logger.Warn("[research] %s unavailable, continuing without it: %v", name, err)
		return false
	}
	r.logger.Debug("[research] %s done in %v", name, time.Since(start))
	return true
}

// normaliseKeywordStats guarantees every ranked keyword has a frequency entry.
func normaliseKeywordStats(k models.KeywordStatistics) models.KeywordStatistics {
	out := models.KeywordStatistics{
		Ranked:    []string{},
		Frequency: make(map[string]int, len(k.Frequency)),
		Demand:    make(map[string]float64, len(k.Demand)),
	}
	for kw, f := range k.Frequency {
		out.Frequency[kw] = f
	}
	for kw, d := range k.Demand {
		out.Demand[kw] = d
	}
	for _, kw := range k.Ranked {
		if kw == "" {
			continue
		}
		out.Ranked = append(out.Ranked, kw)
		if _, ok := out.Frequency[kw]; !ok {
			out.Frequency[kw] = 1
		}
	}
	return out
}

func priceBucket(price float64) string {
	return fmt.Sprintf("%.0f", math.Floor(price/10)*10)
}
