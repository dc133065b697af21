package pipeline

import (
	"context"

	"listing-optimizer/models"
)

// State is the orchestrator's position in a run.
type State string

const (
	Fetching    State = "fetching"
	Extracting  State = "extracting"
	Researching State = "researching"
	Optimizing  State = "optimizing"
	Rendering   State = "rendering"
	Done        State = "done"
	Failed      State = "failed"
)

// Stages lists the working states in execution order.
var Stages = []State{Fetching, Extracting, Researching, Optimizing, Rendering}

// Acquirer fetches raw listing content.
type Acquirer interface {
	Fetch(ctx context.Context, url string) (*models.Content, error)
}

// Extractor turns raw content into listing attributes.
type Extractor interface {
	Extract(content *models.Content) (*models.ListingAttributes, error)
}

// Researcher gathers comparison data. It never fails.
type Researcher interface {
	Analyze(ctx context.Context, attrs *models.ListingAttributes) *models.ComparisonData
}

// Optimizer computes validated optimized content.
type Optimizer interface {
	Optimize(attrs *models.ListingAttributes, data *models.ComparisonData) (*models.OptimizedContent, error)
}

// Renderer substitutes optimized content into a template.
type Renderer interface {
	Render(content *models.OptimizedContent, attrs *models.ListingAttributes, templateID string) (string, error)
}

// Components are the five collaborators a Pipeline drives.
type Components struct {
	Acquirer   Acquirer
	Extractor  Extractor
	Researcher Researcher
	Optimizer  Optimizer
	Renderer   Renderer
}
