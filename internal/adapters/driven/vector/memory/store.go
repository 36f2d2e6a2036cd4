// Package memory provides an in-process vector store. Nothing is
// persisted; it backs tests and the "memory" backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/vidhi/internal/adapters/driven/vector"
	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

type index struct {
	spec    domain.IndexSpec
	records map[string]driven.VectorRecord

	// pendingPolls is the number of DescribeIndex calls that report the
	// index as not ready after creation.
	pendingPolls int
}

// Store is an in-memory implementation of driven.VectorStore.
type Store struct {
	mu         sync.RWMutex
	indexes    map[string]*index
	readyAfter int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{indexes: make(map[string]*index)}
}

// SetReadyAfter makes newly created indexes report not-ready for the
// first n DescribeIndex calls, simulating hosted index provisioning.
func (s *Store) SetReadyAfter(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readyAfter = n
}

// ListIndexes returns index names in sorted order.
func (s *Store) ListIndexes(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.indexes))
	for name := range s.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CreateIndex creates an empty index.
func (s *Store) CreateIndex(_ context.Context, spec domain.IndexSpec) error {
	if spec.Name == "" || spec.Dimension <= 0 {
		return fmt.Errorf("index spec %+v: %w", spec, domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[spec.Name]; ok {
		return fmt.Errorf("index %s already exists: %w", spec.Name, domain.ErrInvalidInput)
	}
	if spec.Metric == "" {
		spec.Metric = domain.MetricCosine
	}
	s.indexes[spec.Name] = &index{
		spec:         spec,
		records:      make(map[string]driven.VectorRecord),
		pendingPolls: s.readyAfter,
	}
	return nil
}

// DescribeIndex reports an index's dimension, size and readiness.
func (s *Store) DescribeIndex(_ context.Context, name string) (*domain.IndexDescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indexes[name]
	if !ok {
		return nil, fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}
	ready := idx.pendingPolls <= 0
	if !ready {
		idx.pendingPolls--
	}
	return &domain.IndexDescription{
		Name:      name,
		Dimension: idx.spec.Dimension,
		Metric:    idx.spec.Metric,
		Ready:     ready,
		Count:     int64(len(idx.records)),
	}, nil
}

// Index returns a handle to a named index.
func (s *Store) Index(name string) driven.VectorIndex {
	return &handle{store: s, name: name}
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// Records returns a copy of every record in an index, for assertions.
func (s *Store) Records(name string) []driven.VectorRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[name]
	if !ok {
		return nil
	}
	out := make([]driven.VectorRecord, 0, len(idx.records))
	for _, r := range idx.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type handle struct {
	store *Store
	name  string
}

func (h *handle) Query(ctx context.Context, vec []float32, topK int) ([]driven.VectorMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()

	idx, ok := h.store.indexes[h.name]
	if !ok {
		return nil, fmt.Errorf("index %s: %w", h.name, domain.ErrNotFound)
	}
	if len(vec) != idx.spec.Dimension {
		return nil, fmt.Errorf("query has %d dimensions, index %s has %d: %w",
			len(vec), h.name, idx.spec.Dimension, domain.ErrDimensionMismatch)
	}

	matches := make([]driven.VectorMatch, 0, len(idx.records))
	for _, r := range idx.records {
		matches = append(matches, driven.VectorMatch{
			ID:       r.ID,
			Score:    vector.Cosine(vec, r.Values),
			Metadata: vector.CopyMetadata(r.Metadata),
		})
	}
	return vector.TopK(matches, topK), nil
}

func (h *handle) Upsert(ctx context.Context, records []driven.VectorRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	idx, ok := h.store.indexes[h.name]
	if !ok {
		return fmt.Errorf("index %s: %w", h.name, domain.ErrNotFound)
	}
	for _, r := range records {
		if len(r.Values) != idx.spec.Dimension {
			return fmt.Errorf("record %s has %d dimensions, index %s has %d: %w",
				r.ID, len(r.Values), h.name, idx.spec.Dimension, domain.ErrDimensionMismatch)
		}
	}
	for _, r := range records {
		values := make([]float32, len(r.Values))
		copy(values, r.Values)
		idx.records[r.ID] = driven.VectorRecord{ID: r.ID, Values: values, Metadata: vector.CopyMetadata(r.Metadata)}
	}
	return nil
}
