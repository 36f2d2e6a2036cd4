package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
	"github.com/custodia-labs/vidhi/internal/core/ports/driving"
	"github.com/custodia-labs/vidhi/internal/logger"
)

// Ensure the answer pipeline implements the interfaces.
var (
	_ driving.AnswerService       = (*AnswerService)(nil)
	_ driving.RetrievalService    = (*AnswerEngine)(nil)
	_ driving.ConversationFactory = (*AnswerEngine)(nil)
)

// AnswerEngineConfig wires the answer pipeline.
type AnswerEngineConfig struct {
	// Embedder embeds queries. Required for retrieval.
	Embedder driven.EmbeddingService

	// LLM serves expansion, reranking and synthesis. Required for answers;
	// without it expansion and reranking degrade.
	LLM driven.LLMService

	// Indexes are queried in order.
	Indexes []IndexHandle

	// Prompts overrides built-in prompt templates. Optional.
	Prompts driven.PromptStore

	// Sessions persists transcripts. Optional.
	Sessions driven.SessionStore

	// Retrieval holds pipeline knobs; zero values take defaults.
	Retrieval domain.RetrievalSettings
}

// AnswerEngine holds the stateless stages of the answer pipeline and is
// shared by all conversations.
type AnswerEngine struct {
	retriever   *Retriever
	crossLinker *CrossLinker
	reranker    *Reranker
	synthesizer *Synthesizer
	sessions    driven.SessionStore
	budget      int
}

// NewAnswerEngine builds every stage from cfg.
func NewAnswerEngine(cfg AnswerEngineConfig) *AnswerEngine {
	r := cfg.Retrieval
	expander := NewQueryExpander(cfg.LLM, r.Expansions)
	reranker := NewReranker(cfg.LLM, r.RerankTopK)
	synthesizer := NewSynthesizer(cfg.LLM)
	if cfg.Prompts != nil {
		expander.SetPromptStore(cfg.Prompts)
		reranker.SetPromptStore(cfg.Prompts)
		synthesizer.SetPromptStore(cfg.Prompts)
	}

	budget := r.ContextBudget
	if budget <= 0 {
		budget = domain.DefaultContextBudget
	}

	return &AnswerEngine{
		retriever:   NewRetriever(expander, cfg.Embedder, cfg.Indexes, r.TopK),
		crossLinker: NewCrossLinker(cfg.Embedder, cfg.Indexes, r.CrossLinkTopK),
		reranker:    reranker,
		synthesizer: synthesizer,
		sessions:    cfg.Sessions,
		budget:      budget,
	}
}

// NewConversation starts a conversation with a fresh session.
func (e *AnswerEngine) NewConversation() driving.AnswerService {
	return NewAnswerService(e, NewSessionRecorder(e.sessions, NewSessionID()))
}

// Retrieve runs expansion, retrieval, cross-linking and reranking.
func (e *AnswerEngine) Retrieve(ctx context.Context, question string) ([]domain.Match, error) {
	if domain.IsBlank(question) {
		return nil, fmt.Errorf("empty question: %w", domain.ErrInvalidInput)
	}
	candidates := e.retriever.Retrieve(ctx, question)
	if len(candidates) == 0 {
		return []domain.Match{}, ctx.Err()
	}
	expanded := e.crossLinker.Expand(ctx, candidates)
	return e.reranker.Rerank(ctx, question, expanded), ctx.Err()
}

// AnswerService answers questions within one session.
type AnswerService struct {
	engine   *AnswerEngine
	recorder *SessionRecorder
}

// NewAnswerService binds an engine to a session recorder.
func NewAnswerService(engine *AnswerEngine, recorder *SessionRecorder) *AnswerService {
	return &AnswerService{engine: engine, recorder: recorder}
}

// SessionID identifies the conversation transcript.
func (s *AnswerService) SessionID() string {
	return s.recorder.ID()
}

// Ask returns the answer text for question.
func (s *AnswerService) Ask(ctx context.Context, question string) string {
	return s.AskDetailed(ctx, question).Text
}

// AskDetailed runs the full pipeline. It never panics or fails: early
// exits carry fixed messages and errors are reported as
// "Error while answering: <reason>".
func (s *AnswerService) AskDetailed(ctx context.Context, question string) (answer *domain.Answer) {
	question = strings.TrimSpace(question)
	answer = &domain.Answer{Question: question, SessionID: s.SessionID()}

	if question == "" {
		answer.Status, answer.Text = domain.AnswerEmpty, domain.MsgEmptyQuestion
		return answer
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Answer pipeline panicked: %v", r)
			answer.Status, answer.Text = domain.AnswerError, domain.MsgErrorPrefix+fmt.Sprint(r)
		}
	}()

	if err := s.answer(ctx, answer); err != nil {
		logger.Warn("Answer failed: %v", err)
		answer.Status, answer.Text = domain.AnswerError, domain.MsgErrorPrefix+err.Error()
	}
	return answer
}

func (s *AnswerService) answer(ctx context.Context, answer *domain.Answer) error {
	e := s.engine
	logger.Section("Answer")
	logger.Debug("Question: %q", answer.Question)

	candidates := e.retriever.Retrieve(ctx, answer.Question)
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(candidates) == 0 {
		answer.Status, answer.Text = domain.AnswerNoResults, domain.MsgNoResults
		return nil
	}

	expanded := e.crossLinker.Expand(ctx, candidates)
	answer.Sources = e.reranker.Rerank(ctx, answer.Question, expanded)
	answer.Context = AssembleContext(answer.Sources, e.budget)
	if domain.IsBlank(answer.Context) {
		answer.Status, answer.Text = domain.AnswerNoContext, domain.MsgNoContext
		return nil
	}

	text, err := e.synthesizer.Synthesize(ctx, answer.Question, answer.Context)
	if err != nil {
		return err
	}
	answer.Status, answer.Text = domain.AnswerOK, text

	if err := s.recorder.Record(ctx, answer.Question, text); err != nil {
		logger.Error("Failed to save session: %v", err)
	}
	return nil
}
