// Package enricher adds chunk bookkeeping and search keywords to chunks
// produced by the chunker.
package enricher

import (
	"context"
	"strings"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

// Processor sets chunk_index, total_chunks, is_chunked and keywords.
type Processor struct{}

// New creates an enricher.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "enricher"
}

// Process annotates chunks in place. keywords is "<section title> <chapter
// title>" trimmed, and is omitted when both are empty.
func (p *Processor) Process(_ context.Context, prov *domain.Provision, chunks []domain.Chunk) ([]domain.Chunk, error) {
	keywords := strings.TrimSpace(
		domain.MetaString(prov.Metadata, domain.MetaSectionTitle) + " " +
			domain.MetaString(prov.Metadata, domain.MetaChapterTitle))

	for i := range chunks {
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]any)
		}
		meta := chunks[i].Metadata
		meta[domain.MetaChunkIndex] = i
		meta[domain.MetaChunkTotal] = len(chunks)
		meta[domain.MetaIsChunked] = len(chunks) > 1
		if keywords != "" {
			meta[domain.MetaKeywords] = keywords
		}
	}
	return chunks, nil
}
