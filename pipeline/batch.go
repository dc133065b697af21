package pipeline

import (
	"context"

	"listing-optimizer/models"
	"listing-optimizer/scraper"
	"listing-optimizer/utils"
)

// Outcome is the result of one URL in a batch: exactly one of Result and Err
// is set.
type Outcome struct {
	URL    string
	Result *models.PipelineResult
	Err    error
}

// RunAll runs every distinct URL with at most concurrency runs in flight.
// URLs that normalise to the same listing are processed once. Outcomes are
// returned in input order.
func (p *Pipeline) RunAll(ctx context.Context, urls []string, concurrency int) []Outcome {
	seen := utils.NewURLSet()
	var unique []string
	for _, u := range urls {
		key := u
		if normalized, err := scraper.NormalizeURL(u); err == nil {
			key = normalized
		}
		if !seen.Add(key) {
			p.deps.Logger.Warn("[pipeline] Skipping duplicate listing %s", u)
			continue
		}
		unique = append(unique, u)
	}

	p.deps.Logger.Info("[pipeline] Running %d unique listings (%d requested)", seen.Size(), len(urls))

	outcomes := make([]Outcome, len(unique))
	pool := utils.NewWorkerPool(concurrency)
	for i, u := range unique {
		pool.Submit(func() {
			res, err := p.Run(ctx, u)
			outcomes[i] = Outcome{URL: u, Result: res, Err: err}
		})
	}
	pool.Wait()

	p.deps.Logger.Info("[pipeline] Batch finished: %d listings", len(outcomes))
	return outcomes
}

// Split separates successful results from failures.
func Split(outcomes []Outcome) ([]*models.PipelineResult, []error) {
	var results []*models.PipelineResult
	var failures []error
	for _, o := range outcomes {
		if o.Err != nil {
			failures = append(failures, o.Err)
			continue
		}
		results = append(results, o.Result)
	}
	return results, failures
}
