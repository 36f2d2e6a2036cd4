package driven

import (
	"context"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

// SessionStore persists conversation transcripts.
type SessionStore interface {
	// Save writes the full transcript, replacing any previous version.
	Save(ctx context.Context, session *domain.Session) error

	// Load reads a transcript. Returns domain.ErrNotFound when absent.
	Load(ctx context.Context, id string) (*domain.Session, error)

	// List returns stored sessions, newest first.
	List(ctx context.Context) ([]domain.SessionSummary, error)
}
