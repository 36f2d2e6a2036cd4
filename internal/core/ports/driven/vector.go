package driven

import (
	"context"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

// VectorStore manages named vector indexes.
//
// Implementations include:
//   - SQLite (exact cosine scan over a local file)
//   - Qdrant (server, gRPC)
//   - Memory (tests)
type VectorStore interface {
	// ListIndexes returns the names of existing indexes.
	ListIndexes(ctx context.Context) ([]string, error)

	// CreateIndex creates an index. Callers check DescribeIndex first;
	// creating an index that already exists is an error.
	CreateIndex(ctx context.Context, spec domain.IndexSpec) error

	// DescribeIndex reports an index's dimension and readiness.
	// Returns domain.ErrNotFound when the index does not exist.
	DescribeIndex(ctx context.Context, name string) (*domain.IndexDescription, error)

	// Index returns a handle to a named index. The index need not exist
	// yet; operations on a missing index fail with domain.ErrNotFound.
	Index(name string) VectorIndex

	// Close releases resources.
	Close() error
}

// VectorIndex stores and searches vectors with metadata.
type VectorIndex interface {
	// Query returns up to topK nearest records, best first, metadata included.
	Query(ctx context.Context, vector []float32, topK int) ([]VectorMatch, error)

	// Upsert inserts or replaces records by ID.
	Upsert(ctx context.Context, records []VectorRecord) error
}

// VectorRecord is a vector to store.
type VectorRecord struct {
	ID       string
	Values   []float32
	Metadata map[string]any
}

// VectorMatch is a stored record returned by a query.
type VectorMatch struct {
	ID       string
	Score    float64
	Metadata map[string]any
}
