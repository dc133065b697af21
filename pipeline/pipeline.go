package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"listing-optimizer/cache"
	"listing-optimizer/errs"
	"listing-optimizer/models"
	"listing-optimizer/utils"
)

// Deps is the process-wide state shared by every run: one cache, one rate
// limiter, one clock and one logger.
type Deps struct {
	Cache   cache.Cache
	Limiter *utils.RateLimiter
	Clock   utils.Clock
	Logger  *utils.Logger
}

// Pipeline runs listings through fetch, extract, research, optimize and
// render, strictly in that order. It is safe for concurrent use as long as its
// components are.
type Pipeline struct {
	deps       Deps
	c          Components
	templateID string
}

// New creates a Pipeline from explicit components.
func New(deps Deps, c Components, templateID string) *Pipeline {
	if deps.Clock == nil {
		deps.Clock = utils.RealClock()
	}
	if templateID == "" {
		templateID = "default"
	}
	return &Pipeline{deps: deps, c: c, templateID: templateID}
}

// run is the state of one in-flight Run call.
type run struct {
	url     string
	state   State
	timings []models.StageTiming
}

// Run processes a single listing URL. On failure the returned error is an
// *errs.Error carrying the failing stage, the URL and the timings of every
// stage that ran.
func (p *Pipeline) Run(ctx context.Context, url string) (*models.PipelineResult, error) {
	start := p.deps.Clock.Now()
	r := &run{url: url}
	result := &models.PipelineResult{RunID: uuid.NewString(), URL: url, CreatedAt: start}

	p.deps.Logger.Info("[pipeline] %s run %s started", url, result.RunID)

	var content *models.Content
	err := p.stage(r, Fetching, func() (err error) {
		content, err = p.c.Acquirer.Fetch(ctx, url)
		return err
	})
	if err != nil {
		return nil, p.fail(r, err)
	}

	err = p.stage(r, Extracting, func() error {
		attrs, err := extract(p.c.Extractor, content)
		if err != nil {
			return errs.Wrap(errs.ValidationFailed, err, "extraction failed")
		}
		if attrs == nil || strings.TrimSpace(attrs.Title) == "" {
			return errs.New(errs.ValidationFailed, "extracted listing has no title")
		}
		if attrs.Price <= 0 {
			return errs.New(errs.ValidationFailed, "extracted listing has no positive price")
		}
		result.Attributes = attrs
		return nil
	})
	if err != nil {
		return nil, p.fail(r, err)
	}

	err = p.stage(r, Researching, func() error {
		result.Comparison = p.c.Researcher.Analyze(ctx, result.Attributes)
		if result.Comparison == nil {
			return fmt.Errorf("research returned no data")
		}
		return nil
	})
	if err != nil {
		return nil, p.fail(r, err)
	}

	err = p.stage(r, Optimizing, func() (err error) {
		result.Optimized, err = p.c.Optimizer.Optimize(result.Attributes, result.Comparison)
		return err
	})
	if err != nil {
		return nil, p.fail(r, err)
	}

	err = p.stage(r, Rendering, func() (err error) {
		result.Rendered, err = p.c.Renderer.Render(result.Optimized, result.Attributes, p.templateID)
		return err
	})
	if err != nil {
		return nil, p.fail(r, err)
	}

	r.state = Done
	result.State = string(Done)
	result.Timings = r.timings
	result.Elapsed = p.deps.Clock.Now().Sub(start)

	p.deps.Logger.Info("[pipeline] %s done in %v", url, result.Elapsed)
	return result, nil
}

// stage runs fn as state s, recording its elapsed time. A panic inside fn is
// reported as an error.
func (p *Pipeline) stage(r *run, s State, fn func() error) (err error) {
	r.state = s
	start := p.deps.Clock.Now()
	p.deps.Logger.Debug("[pipeline] %s → %s", r.url, s)

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
		r.timings = append(r.timings, models.StageTiming{Stage: string(s), Elapsed: p.deps.Clock.Now().Sub(start)})
	}()
	return fn()
}

func extract(x Extractor, content *models.Content) (attrs *models.ListingAttributes, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("extractor panic: %v", rec)
		}
	}()
	return x.Extract(content)
}

// fail annotates err with the run's context and moves the run to Failed.
// Unclassified errors become PipelineFailed.
func (p *Pipeline) fail(r *run, err error) error {
	var out *errs.Error
	if e, ok := errs.As(err); ok {
		cp := *e
		out = &cp
	} else {
		out = errs.Wrap(errs.PipelineFailed, err, "unexpected failure")
	}
	if out.Stage == "" {
		out.Stage = string(r.state)
	}
	if out.URL == "" {
		out.URL = r.url
	}
	out.Timings = r.timings

	var total time.Duration
	for _, t := range r.timings {
		total += t.Elapsed
	}
	p.deps.Logger.Error("[pipeline] %s failed at %s after %v: %v", r.url, r.state, total, out)
	r.state = Failed
	return out
}
