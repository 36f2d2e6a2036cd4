package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
	"github.com/custodia-labs/vidhi/internal/core/ports/driving"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// NewSessionID returns "YYYYMMDD_HHMMSS_<8 hex>" for a session starting now.
func NewSessionID() string {
	return domain.NewSessionID(time.Now(), strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// SessionRecorder owns the transcript of one session and persists it after
// every exchange. A recorder is never shared between sessions.
type SessionRecorder struct {
	mu      sync.Mutex
	store   driven.SessionStore
	session domain.Session
}

// NewSessionRecorder creates a recorder for a new, empty session.
// store may be nil, in which case the transcript is kept in memory only.
func NewSessionRecorder(store driven.SessionStore, id string) *SessionRecorder {
	return &SessionRecorder{
		store:   store,
		session: domain.Session{ID: id, Turns: []domain.Turn{}},
	}
}

// ID returns the session ID.
func (r *SessionRecorder) ID() string {
	return r.session.ID
}

// Record appends a question/answer pair and saves the whole transcript.
// The pair stays recorded in memory even when saving fails.
func (r *SessionRecorder) Record(ctx context.Context, question, answer string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.session.Turns = append(r.session.Turns,
		domain.Turn{Role: domain.RoleUser, Content: question},
		domain.Turn{Role: domain.RoleAssistant, Content: answer},
	)
	if r.store == nil {
		return nil
	}

	snapshot := r.snapshotLocked()
	if err := r.store.Save(ctx, &snapshot); err != nil {
		return fmt.Errorf("save session %s: %w", r.session.ID, err)
	}
	return nil
}

// Transcript returns a copy of the recorded turns.
func (r *SessionRecorder) Transcript() domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *SessionRecorder) snapshotLocked() domain.Session {
	turns := make([]domain.Turn, len(r.session.Turns))
	copy(turns, r.session.Turns)
	return domain.Session{ID: r.session.ID, Turns: turns}
}

// SessionService reads stored transcripts.
type SessionService struct {
	store driven.SessionStore
}

// NewSessionService creates a session service.
func NewSessionService(store driven.SessionStore) *SessionService {
	return &SessionService{store: store}
}

// List returns stored sessions, newest first.
func (s *SessionService) List(ctx context.Context) ([]domain.SessionSummary, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Get returns a full transcript.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("session id required: %w", domain.ErrInvalidInput)
	}
	session, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return session, nil
}
