package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
)

// --- Test doubles shared by the pipeline tests ---

// fakeLLM implements driven.LLMService. reply decides the response for
// each chat call; every call is recorded.
type fakeLLM struct {
	mu    sync.Mutex
	reply func(messages []driven.ChatMessage) (string, error)
	calls []llmCall
}

type llmCall struct {
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return f.Chat(ctx, []driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}},
		driven.ChatOptions{MaxTokens: opts.MaxTokens, Temperature: opts.Temperature})
}

func (f *fakeLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, llmCall{messages: messages, opts: opts})
	f.mu.Unlock()
	if f.reply == nil {
		return "", errors.New("no reply configured")
	}
	return f.reply(messages)
}

func (f *fakeLLM) ModelName() string            { return "fake-llm" }
func (f *fakeLLM) Ping(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error                 { return nil }

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// answerCalls counts synthesis calls, recognised by their system message.
func (f *fakeLLM) answerCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if len(c.messages) > 0 && c.messages[0].Role == driven.RoleSystem {
			n++
		}
	}
	return n
}

// routeByPrompt returns a reply func that answers expansion, rerank and
// synthesis prompts separately.
func routeByPrompt(expansion, rerank, answer string) func([]driven.ChatMessage) (string, error) {
	return func(messages []driven.ChatMessage) (string, error) {
		if messages[0].Role == driven.RoleSystem {
			return answer, nil
		}
		if strings.Contains(messages[0].Content, "Chunk 0") {
			return rerank, nil
		}
		return expansion, nil
	}
}

// fakeEmbedder implements driven.EmbeddingService. vectorFor maps text to
// a vector; fail lists texts whose query embedding fails.
type fakeEmbedder struct {
	mu         sync.Mutex
	vectorFor  func(text string) []float32
	fail       map[string]bool
	batchErrs  []error
	embedded   []string
	batchSizes []int
	onEmbed    func(text string)
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.embedded = append(f.embedded, text)
	f.mu.Unlock()
	if f.onEmbed != nil {
		f.onEmbed(text)
	}
	if f.fail[text] {
		return nil, errors.New("embedding service down")
	}
	return f.vector(text), nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.batchSizes = append(f.batchSizes, len(texts))
	var err error
	if len(f.batchErrs) > 0 {
		err, f.batchErrs = f.batchErrs[0], f.batchErrs[1:]
	}
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vector(t)
	}
	return out, nil
}

func (f *fakeEmbedder) vector(text string) []float32 {
	if f.vectorFor != nil {
		return f.vectorFor(text)
	}
	return []float32{1, 0, 0}
}

func (f *fakeEmbedder) Dimensions() int              { return len(f.vector("")) }
func (f *fakeEmbedder) ModelName() string            { return "fake-embed" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

func (f *fakeEmbedder) embedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.embedded)
}

// fakeIndex implements driven.VectorIndex with a scripted query response.
type fakeIndex struct {
	mu      sync.Mutex
	respond func(vec []float32) ([]driven.VectorMatch, error)
	queries int
	upserts [][]driven.VectorRecord
}

func (f *fakeIndex) Query(_ context.Context, vec []float32, topK int) ([]driven.VectorMatch, error) {
	f.mu.Lock()
	f.queries++
	f.mu.Unlock()
	if f.respond == nil {
		return nil, nil
	}
	hits, err := f.respond(vec)
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, err
}

func (f *fakeIndex) Upsert(_ context.Context, records []driven.VectorRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, records)
	return nil
}

func (f *fakeIndex) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries
}

// fixedHits returns a respond func ignoring the query vector.
func fixedHits(hits ...driven.VectorMatch) func([]float32) ([]driven.VectorMatch, error) {
	return func([]float32) ([]driven.VectorMatch, error) { return hits, nil }
}

// hit builds a vector match carrying text.
func hit(id string, score float64, text string) driven.VectorMatch {
	return driven.VectorMatch{ID: id, Score: score, Metadata: map[string]any{domain.MetaText: text}}
}

// fakeSessionStore implements driven.SessionStore in memory.
type fakeSessionStore struct {
	mu      sync.Mutex
	saved   map[string]domain.Session
	saves   int
	saveErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{saved: make(map[string]domain.Session)}
}

func (f *fakeSessionStore) Save(_ context.Context, s *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[s.ID] = *s
	return nil
}

func (f *fakeSessionStore) Load(_ context.Context, id string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.saved[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (f *fakeSessionStore) List(_ context.Context) ([]domain.SessionSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.SessionSummary, 0, len(f.saved))
	for id, s := range f.saved {
		out = append(out, domain.SessionSummary{ID: id, Turns: len(s.Turns)})
	}
	return out, nil
}

// fakePromptStore implements driven.PromptStore with fixed overrides.
type fakePromptStore struct {
	prompts map[string]string
}

func (f *fakePromptStore) Load(name string) (string, error) {
	if p, ok := f.prompts[name]; ok {
		return p, nil
	}
	p, _ := domain.DefaultPrompt(name)
	return p, nil
}

func (f *fakePromptStore) Reload() {}
