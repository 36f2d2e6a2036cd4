package driving

import (
	"context"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

// AnswerService answers legal questions within one conversation.
// Every exchange that produces an answer is recorded in the session.
type AnswerService interface {
	// Ask returns the answer text. It never fails: early exits and errors
	// are reported as fixed or error-prefixed messages.
	Ask(ctx context.Context, question string) string

	// AskDetailed is Ask with the sources and status that produced the answer.
	AskDetailed(ctx context.Context, question string) *domain.Answer

	// SessionID identifies the conversation transcript.
	SessionID() string
}

// RetrievalService exposes the retrieval half of the pipeline:
// expansion, multi-index retrieval, cross-linking and reranking.
type RetrievalService interface {
	// Retrieve returns the reranked matches for a question.
	Retrieve(ctx context.Context, question string) ([]domain.Match, error)
}

// ConversationFactory starts new conversations. Each returned
// AnswerService has its own session.
type ConversationFactory interface {
	// NewConversation starts a conversation with a fresh session ID.
	NewConversation() AnswerService
}
