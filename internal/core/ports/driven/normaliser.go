package driven

import (
	"context"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

// Normaliser transforms a source document into provisions.
// Chunking is handled afterwards by the PostProcessor pipeline.
type Normaliser interface {
	// Name identifies the normaliser in logs.
	Name() string

	// Normalise parses data read from source. Structural problems are
	// reported as errors wrapping domain.ErrInvalidDocument.
	Normalise(ctx context.Context, source string, data []byte) ([]domain.Provision, error)
}
