package services

import (
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
	"github.com/custodia-labs/vidhi/internal/logger"
)

// crossLinkKeys are the metadata fields that name related material, in
// the order seeds are taken.
var crossLinkKeys = []string{"schedule", "appendix", "part"}

// maxSeedsPerMatch caps the follow-up queries issued for one match.
const maxSeedsPerMatch = 3

// CrossLinker follows structural references (schedule, appendix, part)
// found in retrieved metadata and pulls in the chunks they point to.
type CrossLinker struct {
	embedder driven.EmbeddingService
	indexes  []IndexHandle
	topK     int
	timeout  time.Duration
}

// NewCrossLinker creates a cross-linker querying indexes with topK per seed.
func NewCrossLinker(embedder driven.EmbeddingService, indexes []IndexHandle, topK int) *CrossLinker {
	if topK <= 0 {
		topK = domain.DefaultCrossLinkTopK
	}
	return &CrossLinker{
		embedder: embedder,
		indexes:  indexes,
		topK:     topK,
		timeout:  DefaultQueryTimeout,
	}
}

// Expand returns matches followed by newly discovered chunks. A chunk
// already present is never replaced, whatever its score.
func (c *CrossLinker) Expand(ctx context.Context, matches []domain.Match) []domain.Match {
	if len(matches) == 0 {
		return []domain.Match{}
	}
	logger.Section("Cross-link")

	expanded := newMatchSet()
	for _, m := range matches {
		expanded.addIfAbsent(m)
	}
	if c.embedder == nil {
		return expanded.list()
	}

	for _, m := range matches {
		for _, seed := range crossLinkSeeds(m.Metadata) {
			c.follow(ctx, seed, expanded)
		}
	}

	logger.Debug("Expanded to %d chunks with cross-links", expanded.len())
	return expanded.list()
}

// follow embeds one seed and queries every index with it.
func (c *CrossLinker) follow(ctx context.Context, seed string, into *matchSet) {
	vec, err := embedQuery(ctx, c.embedder, seed, c.timeout)
	if err != nil {
		logger.Warn("Cross-link query failed for %q: %v", seed, err)
		return
	}
	for _, h := range c.indexes {
		found, err := queryIndex(ctx, h, vec, c.topK, c.timeout)
		if err != nil {
			logger.Warn("Cross-link query on %s failed for %q: %v", h.Name, seed, err)
			continue
		}
		for _, m := range found {
			into.addIfAbsent(m)
		}
	}
}

// crossLinkSeeds returns the reference strings in metadata worth following.
func crossLinkSeeds(metadata map[string]any) []string {
	var seeds []string
	for _, key := range crossLinkKeys {
		value := domain.MetaString(metadata, key)
		if len(strings.TrimSpace(value)) > 2 {
			seeds = append(seeds, value)
		}
		if len(seeds) == maxSeedsPerMatch {
			break
		}
	}
	return seeds
}
