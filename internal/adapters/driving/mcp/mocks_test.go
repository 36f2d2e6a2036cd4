package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driving"
)

// mockConversation is a mock implementation of driving.AnswerService.
type mockConversation struct {
	id        string
	answer    *domain.Answer
	questions []string
}

func (m *mockConversation) Ask(ctx context.Context, question string) string {
	return m.AskDetailed(ctx, question).Text
}

func (m *mockConversation) AskDetailed(_ context.Context, question string) *domain.Answer {
	m.questions = append(m.questions, question)
	if m.answer != nil {
		a := *m.answer
		a.Question = question
		a.SessionID = m.id
		return &a
	}
	return &domain.Answer{Question: question, Text: "answer to " + question, Status: domain.AnswerOK, SessionID: m.id}
}

func (m *mockConversation) SessionID() string {
	return m.id
}

// mockConversationFactory is a mock implementation of driving.ConversationFactory.
type mockConversationFactory struct {
	mu      sync.Mutex
	answer  *domain.Answer
	created []*mockConversation
}

func (m *mockConversationFactory) NewConversation() driving.AnswerService {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &mockConversation{id: fmt.Sprintf("session-%d", len(m.created)+1), answer: m.answer}
	m.created = append(m.created, c)
	return c
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	matches []domain.Match
	err     error
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string) ([]domain.Match, error) {
	return m.matches, m.err
}

// mockSessionService is a mock implementation of driving.SessionService.
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
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}
