package pipeline

import (
	"listing-optimizer/config"
	"listing-optimizer/scraper"
	"listing-optimizer/services"
	"listing-optimizer/utils"
)

// Options configures the production components assembled by Build.
type Options struct {
	TemplateID string
	Templates  map[string]config.Template
	Fetch      scraper.Options
	Research   services.ResearchOptions
	Optimizer  services.OptimizerConfig

	// ResearchGate bounds concurrent research sub-analyses across all runs.
	ResearchGate *utils.Gate

	// Market sources default to a SimulatedMarket on the shared clock.
	Items    services.ComparableItemSource
	Keywords services.KeywordStatsSource
	Trends   services.TrendSource
}

// Build assembles the production pipeline around a transport, sharing the
// cache, limiter and clock in deps between fetching and research.
func Build(deps Deps, transport scraper.Transport, opts Options) *Pipeline {
	if deps.Clock == nil {
		deps.Clock = utils.RealClock()
	}

	market := &services.SimulatedMarket{Clock: deps.Clock}
	if opts.Items == nil {
		opts.Items = market
	}
	if opts.Keywords == nil {
		opts.Keywords = market
	}
	if opts.Trends == nil {
		opts.Trends = market
	}

	c := Components{
		Acquirer:   scraper.NewFetcher(transport, deps.Cache, deps.Limiter, deps.Clock, deps.Logger, opts.Fetch),
		Extractor:  services.NewExtractor(deps.Logger),
		Researcher: services.NewResearcher(opts.Items, opts.Keywords, opts.Trends, deps.Cache, opts.ResearchGate, deps.Logger, opts.Research),
		Optimizer:  services.NewOptimizer(opts.Optimizer, deps.Logger),
		Renderer:   services.NewTemplateRenderer(opts.Templates),
	}
	return New(deps, c, opts.TemplateID)
}
