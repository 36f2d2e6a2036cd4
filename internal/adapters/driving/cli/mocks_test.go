package cli

import (
	"context"
	"fmt"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driving"
)

type mockConversation struct {
	id        string
	answer    func(question string) *domain.Answer
	questions []string
}

func (m *mockConversation) Ask(ctx context.Context, question string) string {
	return m.AskDetailed(ctx, question).Text
}

func (m *mockConversation) AskDetailed(_ context.Context, question string) *domain.Answer {
	m.questions = append(m.questions, question)
	if m.answer != nil {
		return m.answer(question)
	}
	return &domain.Answer{Question: question, Text: "answer: " + question, Status: domain.AnswerOK, SessionID: m.id}
}

func (m *mockConversation) SessionID() string { return m.id }

type mockConversations struct {
	answer  func(question string) *domain.Answer
	created []*mockConversation
}

func (m *mockConversations) NewConversation() driving.AnswerService {
	c := &mockConversation{id: fmt.Sprintf("session-%d", len(m.created)+1), answer: m.answer}
	m.created = append(m.created, c)
	return c
}

type mockIngestService struct {
	report   *domain.IngestReport
	err      error
	statuses []driving.IndexStatus
	calls    []ingestCall
}

type ingestCall struct {
	index string
	paths []string
	opts  domain.IngestOptions
}

func (m *mockIngestService) IngestFile(_ context.Context, _ string, path string, _ domain.IngestOptions) domain.FileResult {
	return domain.FileResult{Path: path}
}

func (m *mockIngestService) IngestPaths(
	_ context.Context, index string, paths []string, opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	m.calls = append(m.calls, ingestCall{index: index, paths: paths, opts: opts})
	return m.report, m.err
}

func (m *mockIngestService) Indexes(_ context.Context) ([]driving.IndexStatus, error) {
	return m.statuses, m.err
}

type mockSessionService struct {
	summaries []domain.SessionSummary
	sessions  map[string]*domain.Session
	err       error
}

func (m *mockSessionService) List(_ context.Context) ([]domain.SessionSummary, error) {
	return m.summaries, m.err
}

func (m *mockSessionService) Get(_ context.Context, id string) (*domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	embedErr    error
	llmErr      error

	embedProvider domain.AIProvider
	embedModel    string
	embedKey      string
	llmProvider   domain.AIProvider
	llmModel      string
	llmKey        string
	backend       domain.VectorBackend
	saved         *domain.AppSettings
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.saved = s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, key string) error {
	m.embedProvider, m.embedModel, m.embedKey = p, model, key
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, key string) error {
	m.llmProvider, m.llmModel, m.llmKey = p, model, key
	return nil
}

func (m *mockSettingsService) SetVectorBackend(b domain.VectorBackend) error {
	m.backend = b
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.embedErr }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.llmErr }

// setServices swaps the injected services for one test.
func setServices(s Services) func() {
	old := Services{
		Conversations: conversations,
		Retrieval:     retrievalService,
		Ingest:        ingestService,
		Sessions:      sessionService,
		Settings:      settingsService,
	}
	SetServices(s)
	return func() { SetServices(old) }
}
