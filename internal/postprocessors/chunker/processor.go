// Package chunker provides a recursive character text splitter.
//
// Text is split on the first separator that occurs in it; pieces that are
// still too long are split again with the remaining separators, and pieces
// that fit are merged back into windows of at most the chunk size with the
// configured overlap. Text with no separator left is cut at fixed rune
// offsets. All lengths are in runes.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultSeparators are tried in order, coarsest first.
var DefaultSeparators = []string{"\n\n", "\n", ".", " "}

// Processor splits provision text into overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator list.
func WithSeparators(seps ...string) Option {
	return func(p *Processor) {
		var clean []string
		for _, s := range seps {
			if s != "" {
				clean = append(clean, s)
			}
		}
		if len(clean) > 0 {
			p.separators = clean
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the provision text into chunks carrying a copy of the
// provision metadata. Input chunks are ignored.
func (p *Processor) Process(_ context.Context, prov *domain.Provision, _ []domain.Chunk) ([]domain.Chunk, error) {
	texts := p.Split(prov.Text)
	if len(texts) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		meta := make(map[string]any, len(prov.Metadata)+4)
		for k, v := range prov.Metadata {
			meta[k] = v
		}
		chunks[i] = domain.Chunk{Text: text, Metadata: meta}
	}
	return chunks, nil
}

// Split returns the chunk texts for s. Blank input yields nil.
func (p *Processor) Split(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return p.split(s, p.separators)
}

func (p *Processor) split(text string, separators []string) []string {
	sep, rest := "", []string(nil)
	for i, s := range separators {
		if strings.Contains(text, s) {
			sep, rest = s, separators[i+1:]
			break
		}
	}
	if sep == "" {
		return p.hardCut(text)
	}

	var out, fitting []string
	for _, piece := range splitKeep(text, sep) {
		if runeLen(piece) < p.chunkSize {
			fitting = append(fitting, piece)
			continue
		}
		if len(fitting) > 0 {
			out = append(out, p.merge(fitting)...)
			fitting = nil
		}
		out = append(out, p.split(piece, rest)...)
	}
	if len(fitting) > 0 {
		out = append(out, p.merge(fitting)...)
	}
	return out
}

// merge packs pieces into windows of at most chunkSize runes, carrying up
// to overlap runes of trailing pieces into the next window.
func (p *Processor) merge(pieces []string) []string {
	var out, window []string
	total := 0

	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n > p.chunkSize && len(window) > 0 {
			if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
				out = append(out, chunk)
			}
			for total > p.overlap || (total+n > p.chunkSize && total > 0) {
				total -= runeLen(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += n
	}
	if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
		out = append(out, chunk)
	}
	return out
}

// hardCut slices text into chunkSize rune windows stepping by
// chunkSize-overlap.
func (p *Processor) hardCut(text string) []string {
	runes := []rune(text)
	step := p.chunkSize - p.overlap
	var out []string
	for start := 0; start < len(runes); start += step {
		end := min(start+p.chunkSize, len(runes))
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}

// splitKeep splits s on sep, keeping sep at the start of each following
// piece so that joining the pieces restores s.
func splitKeep(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
