package services

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
	"github.com/custodia-labs/vidhi/internal/logger"
)

// Expansion call parameters.
const (
	expansionTemperature = 0.7
	expansionMaxTokens   = 200

	// DefaultLLMTimeout bounds expansion and rerank calls.
	DefaultLLMTimeout = 30 * time.Second
)

// QueryExpander asks the LLM for paraphrases of a question so retrieval
// sees layperson, formal and research phrasings.
type QueryExpander struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	n       int
	timeout time.Duration
}

// NewQueryExpander creates an expander requesting n variations.
// llm may be nil, in which case Expand returns only the question.
func NewQueryExpander(llm driven.LLMService, n int) *QueryExpander {
	if n <= 0 {
		n = domain.DefaultExpansions
	}
	return &QueryExpander{llm: llm, n: n, timeout: DefaultLLMTimeout}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (e *QueryExpander) SetPromptStore(store driven.PromptStore) {
	e.prompts = store
}

// Expand returns the question followed by up to n distinct paraphrases.
// Failures degrade to the question alone.
func (e *QueryExpander) Expand(ctx context.Context, question string) []string {
	if domain.IsBlank(question) || e.llm == nil {
		return []string{question}
	}

	prompt := renderPrompt(e.prompts, domain.PromptQueryExpansion, e.n, question)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	content, err := e.llm.Chat(callCtx,
		[]driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}},
		driven.ChatOptions{Temperature: expansionTemperature, MaxTokens: expansionMaxTokens},
	)
	if err != nil {
		logger.Warn("Query expansion failed: %v", err)
		return []string{question}
	}

	queries := dedupeQueries(append([]string{question}, parseVariants(content)...))
	if len(queries) > e.n+1 {
		queries = queries[:e.n+1]
	}
	logger.Debug("Expanded into %d queries", len(queries))
	return queries
}

// parseVariants reads one phrase per line. Leading list markers
// ("-", "•", "*", "1.", "2)") and surrounding whitespace are removed and
// blank lines are skipped.
func parseVariants(content string) []string {
	var variants []string
	for _, line := range strings.Split(content, "\n") {
		v := strings.TrimLeftFunc(strings.TrimSpace(line), isListMarker)
		v = strings.TrimSpace(v)
		if v != "" {
			variants = append(variants, v)
		}
	}
	return variants
}

func isListMarker(r rune) bool {
	switch r {
	case '-', '•', '*', '.', ')':
		return true
	}
	return unicode.IsDigit(r) || unicode.IsSpace(r)
}

// dedupeQueries drops repeats, keeping first occurrences in order.
func dedupeQueries(queries []string) []string {
	seen := make(map[string]bool, len(queries))
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		if seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}
