package scraper

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"listing-optimizer/cache"
	"listing-optimizer/errs"
	"listing-optimizer/models"
	"listing-optimizer/utils"
)

// Options tunes a Fetcher.
type Options struct {
	Retry      utils.RetryPolicy
	CacheTTL   time.Duration
	UserAgents []string
}

// Fetcher is the acquisition service: it fetches listing pages through a
// shared rate limiter and cache, retrying throttled and network failures.
type Fetcher struct {
	transport Transport
	cache     cache.Cache
	limiter   *utils.RateLimiter
	clock     utils.Clock
	logger    *utils.Logger
	retrier   *utils.Retrier
	agents    *UserAgentPool
	ttl       time.Duration
	flights   singleflight.Group
}

// NewFetcher creates a ready-to-use Fetcher. cache, limiter and clock are
// normally shared process-wide.
func NewFetcher(transport Transport, c cache.Cache, limiter *utils.RateLimiter, clock utils.Clock, logger *utils.Logger, opts Options) *Fetcher {
	if clock == nil {
		clock = utils.RealClock()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	return &Fetcher{
		transport: transport,
		cache:     c,
		limiter:   limiter,
		clock:     clock,
		logger:    logger,
		retrier:   &utils.Retrier{Policy: opts.Retry, Clock: clock, Logger: logger},
		agents:    NewUserAgentPool(opts.UserAgents),
		ttl:       opts.CacheTTL,
	}
}

// Fetch returns the content of the listing at rawURL. A valid cache entry is
// returned without touching the network.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*models.Content, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		if e, ok := errs.As(err); ok {
			e.URL = rawURL
		}
		return nil, err
	}

	key := cache.Fingerprint("fetch", normalized)
	if content, ok := f.lookup(ctx, key); ok {
		f.logger.Debug("[fetch] Cache hit for %s", normalized)
		return content, nil
	}

	// the flight outlives any single caller; each caller stops waiting on its own ctx
	flightCtx := context.WithoutCancel(ctx)
	ch := f.flights.DoChan(key, func() (any, error) {
		if content, ok := f.lookup(flightCtx, key); ok {
			return content, nil
		}
		return f.fetchAndStore(flightCtx, normalized, key)
	})

	select {
	case <-ctx.Done():
		e := errs.Wrap(errs.NetworkError, ctx.Err(), "%s", describeNetworkError(ctx.Err()))
		e.URL = normalized
		return nil, e
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			f.logger.Debug("[fetch] Joined in-flight request for %s", normalized)
		}
		return res.Val.(*models.Content), nil
	}
}

func (f *Fetcher) lookup(ctx context.Context, key string) (*models.Content, bool) {
	if f.cache == nil {
		return nil, false
	}
	var content models.Content
	ok, err := cache.GetJSON(ctx, f.cache, key, &content)
	if err != nil {
		f.logger.Warn("[fetch] Cache read failed, treating as miss: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &content, true
}

func (f *Fetcher) fetchAndStore(ctx context.Context, normalized, key string) (*models.Content, error) {
	var content *models.Content

	err := f.retrier.Do(ctx, "fetch "+normalized, func(ctx context.Context, attempt int) error {
		if f.limiter != nil {
			if err := f.limiter.WaitForSlot(ctx); err != nil {
				return errs.Wrap(errs.NetworkError, err, "waiting for rate limiter")
			}
		}

		agent := f.agents.Next()
		f.logger.Debug("[fetch] GET %s (attempt %d)", normalized, attempt)

		res, err := f.transport.Get(ctx, normalized, agent)
		if cerr := classify(res, err); cerr != nil {
			return cerr
		}

		parsed, err := ParseContent(normalized, res.StatusCode, res.Body, f.clock.Now())
		if err != nil {
			return err
		}
		content = parsed
		return nil
	})
	if err != nil {
		if e, ok := errs.As(err); ok {
			e.URL = normalized
		}
		f.logger.Error("[fetch] %v", err)
		return nil, err
	}

	if f.cache != nil {
		if err := cache.SetJSON(ctx, f.cache, key, content, f.ttl); err != nil {
			f.logger.Warn("[fetch] Cache write failed: %v", err)
		}
	}
	f.logger.Info("[fetch] Fetched %s (%d bytes)", normalized, len(content.Body))
	return content, nil
}
