package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
	"github.com/custodia-labs/vidhi/internal/logger"
)

// Rerank call parameters.
const (
	rerankTemperature = 0
	rerankMaxTokens   = 100
	rerankPreviewLen  = 300
)

var rankingNumber = regexp.MustCompile(`\b\d+\b`)

// Reranker asks the LLM to order a candidate pool by relevance and keeps
// the top K.
type Reranker struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	topK    int
	timeout time.Duration
}

// NewReranker creates a reranker keeping topK matches.
// llm may be nil, in which case the pool is ordered by score.
func NewReranker(llm driven.LLMService, topK int) *Reranker {
	if topK <= 0 {
		topK = domain.DefaultRerankTopK
	}
	return &Reranker{llm: llm, topK: topK, timeout: DefaultLLMTimeout}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (r *Reranker) SetPromptStore(store driven.PromptStore) {
	r.prompts = store
}

// Rerank returns at most topK matches. Pools no larger than topK are
// returned unchanged without a model call. When the model call fails the
// pool is sorted by descending score instead.
func (r *Reranker) Rerank(ctx context.Context, question string, pool []domain.Match) []domain.Match {
	if len(pool) <= r.topK {
		return pool
	}
	logger.Section("Rerank")

	order, err := r.rank(ctx, question, pool)
	if err != nil {
		logger.Warn("Reranking failed: %v", err)
		return topByScore(pool, r.topK)
	}

	out := make([]domain.Match, len(order))
	for i, idx := range order {
		out[i] = pool[idx]
	}
	logger.Debug("Reranked %d candidates to %v", len(pool), order)
	return out
}

func (r *Reranker) rank(ctx context.Context, question string, pool []domain.Match) ([]int, error) {
	if r.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	listing := make([]string, len(pool))
	for i, m := range pool {
		listing[i] = fmt.Sprintf("Chunk %d (%s): %s", i, m.Source(), preview(m.Text(), rerankPreviewLen))
	}
	prompt := renderPrompt(r.prompts, domain.PromptRerank,
		question, strings.Join(listing, "\n\n"), r.topK)

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	content, err := r.llm.Chat(callCtx,
		[]driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}},
		driven.ChatOptions{Temperature: rerankTemperature, MaxTokens: rerankMaxTokens},
	)
	if err != nil {
		return nil, err
	}
	return parseRanking(content, len(pool), r.topK), nil
}

// parseRanking reads chunk numbers from the model output. Integers are
// taken in order, out-of-range and repeated numbers are ignored, and at
// most k are kept. When fewer than k were given, the remaining slots are
// filled with unselected chunks in pool order, so output with no usable
// number keeps the first k chunks.
func parseRanking(output string, poolSize, k int) []int {
	if k > poolSize {
		k = poolSize
	}
	selected := make([]int, 0, k)
	taken := make(map[int]bool, k)

	for _, tok := range rankingNumber.FindAllString(output, -1) {
		if len(selected) == k {
			break
		}
		idx, err := strconv.Atoi(tok)
		if err != nil || idx < 0 || idx >= poolSize || taken[idx] {
			continue
		}
		taken[idx] = true
		selected = append(selected, idx)
	}

	if len(selected) == 0 {
		logger.Debug("No chunk numbers in ranking %q", preview(output, 80))
	}

	for i := 0; i < poolSize && len(selected) < k; i++ {
		if !taken[i] {
			taken[i] = true
			selected = append(selected, i)
		}
	}
	return selected
}

// topByScore returns the k best matches by descending score. Equal scores
// keep pool order.
func topByScore(pool []domain.Match, k int) []domain.Match {
	sorted := make([]domain.Match, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}
