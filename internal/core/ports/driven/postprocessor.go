package driven

import (
	"context"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

// PostProcessor turns a provision into chunks.
// PostProcessors are chained in a pipeline (e.g., chunking, enrichment).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a provision and returns chunks.
	// A processor that creates chunks (the chunker) receives nil chunks.
	// A processor that modifies chunks (the enricher) receives and returns them.
	Process(ctx context.Context, p *domain.Provision, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the provision through all processors in order.
	Process(ctx context.Context, p *domain.Provision) ([]domain.Chunk, error)
}
