package storage

import "listing-optimizer/models"

// ResultWriter is the interface any storage backend must satisfy.
type ResultWriter interface {
	Write(results []*models.PipelineResult) error
	Close() error
}
