// Package pipeline post-processes listing collections: deduplication and
// merge, caller-supplied filters, ranking, and the final size bound.
package pipeline

import (
	"log/slog"

	"github.com/trendscout/trendscout/internal/types"
)

// Stage transforms a listing collection. Stages never mutate input
// listings; a stage that changes a listing works on a copy.
type Stage interface {
	// Name returns the stage identifier.
	Name() string

	// Apply transforms the collection.
	Apply(listings []*types.Listing) []*types.Listing
}

// Pipeline chains stages together in order.
type Pipeline struct {
	stages []Stage
	logger *slog.Logger
}

// New creates an empty Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Use appends a stage to the chain.
func (p *Pipeline) Use(stage Stage) {
	p.stages = append(p.stages, stage)
}

// Run passes the collection through every stage in order.
func (p *Pipeline) Run(listings []*types.Listing) []*types.Listing {
	current := listings
	for _, stage := range p.stages {
		before := len(current)
		current = stage.Apply(current)
		if len(current) != before {
			p.logger.Debug("stage applied",
				"stage", stage.Name(),
				"in", before,
				"out", len(current),
			)
		}
	}
	return current
}
