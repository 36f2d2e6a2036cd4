package driving

import (
	"context"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

// SessionService reads recorded conversation transcripts.
type SessionService interface {
	// List returns stored sessions, newest first.
	List(ctx context.Context) ([]domain.SessionSummary, error)

	// Get returns a full transcript.
	Get(ctx context.Context, id string) (*domain.Session, error)
}
