package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
	"github.com/custodia-labs/vidhi/internal/logger"
)

// DefaultQueryTimeout bounds each embedding and vector query at answer time.
const DefaultQueryTimeout = 30 * time.Second

// IndexHandle is a named vector index queried at answer time.
// Name is the provenance tag attached to matches.
type IndexHandle struct {
	Name  string
	Index driven.VectorIndex
}

// Retriever runs every expanded query against every index and merges
// the results, keeping the best score per chunk ID.
type Retriever struct {
	expander *QueryExpander
	embedder driven.EmbeddingService
	indexes  []IndexHandle
	topK     int
	timeout  time.Duration
}

// NewRetriever creates a retriever. Indexes are queried in the given order.
func NewRetriever(
	expander *QueryExpander,
	embedder driven.EmbeddingService,
	indexes []IndexHandle,
	topK int,
) *Retriever {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &Retriever{
		expander: expander,
		embedder: embedder,
		indexes:  indexes,
		topK:     topK,
		timeout:  DefaultQueryTimeout,
	}
}

// Retrieve returns the merged matches for a question in first-seen order.
// A failed embedding skips that query; a failed index query skips that
// index for that query. If everything fails the result is empty.
func (r *Retriever) Retrieve(ctx context.Context, question string) []domain.Match {
	logger.Section("Retrieve")
	if domain.IsBlank(question) || r.embedder == nil {
		return []domain.Match{}
	}

	queries := []string{question}
	if r.expander != nil {
		queries = r.expander.Expand(ctx, question)
	}

	merged := newMatchSet()
	for _, q := range queries {
		vec, err := embedQuery(ctx, r.embedder, q, r.timeout)
		if err != nil {
			logger.Warn("Query failed for %q: %v", preview(q, 50), err)
			continue
		}
		for _, h := range r.indexes {
			matches, err := queryIndex(ctx, h, vec, r.topK, r.timeout)
			if err != nil {
				logger.Warn("Index %s query failed for %q: %v", h.Name, preview(q, 50), err)
				continue
			}
			for _, m := range matches {
				merged.keepBest(m)
			}
		}
	}

	logger.Debug("Retrieved %d unique chunks across %d indexes", merged.len(), len(r.indexes))
	return merged.list()
}

// Indexes returns the handles queried by the retriever.
func (r *Retriever) Indexes() []IndexHandle {
	return r.indexes
}

// matchSet keeps one match per ID in first-seen order.
type matchSet struct {
	pos     map[string]int
	matches []domain.Match
}

func newMatchSet() *matchSet {
	return &matchSet{pos: make(map[string]int)}
}

// keepBest adds m or replaces an existing entry with a strictly higher score.
// The entry keeps its original position.
func (s *matchSet) keepBest(m domain.Match) {
	if i, ok := s.pos[m.ID]; ok {
		if m.Score > s.matches[i].Score {
			s.matches[i] = m
		}
		return
	}
	s.add(m)
}

// addIfAbsent adds m only when its ID has not been seen.
func (s *matchSet) addIfAbsent(m domain.Match) bool {
	if _, ok := s.pos[m.ID]; ok {
		return false
	}
	s.add(m)
	return true
}

func (s *matchSet) add(m domain.Match) {
	s.pos[m.ID] = len(s.matches)
	s.matches = append(s.matches, m)
}

func (s *matchSet) len() int {
	return len(s.matches)
}

func (s *matchSet) list() []domain.Match {
	out := make([]domain.Match, len(s.matches))
	copy(out, s.matches)
	return out
}

// embedQuery embeds text in query mode under a timeout.
func embedQuery(ctx context.Context, e driven.EmbeddingService, text string, timeout time.Duration) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	vec, err := e.Embed(callCtx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return vec, nil
}

// queryIndex runs one nearest-neighbour query and tags the matches.
func queryIndex(
	ctx context.Context, h IndexHandle, vec []float32, k int, timeout time.Duration,
) ([]domain.Match, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	hits, err := h.Index.Query(callCtx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", h.Name, err)
	}

	matches := make([]domain.Match, len(hits))
	for i, hit := range hits {
		matches[i] = domain.Match{
			ID:          hit.ID,
			Score:       hit.Score,
			IndexSource: h.Name,
			Metadata:    hit.Metadata,
		}
	}
	return matches, nil
}

// preview returns at most n runes of s.
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
