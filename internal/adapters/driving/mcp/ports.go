package mcp

import (
	"github.com/custodia-labs/vidhi/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Conversations starts question and answer sessions.
	Conversations driving.ConversationFactory

	// Retrieval exposes reranked matches without synthesis. Optional.
	Retrieval driving.RetrievalService

	// Sessions reads recorded transcripts. Optional.
	Sessions driving.SessionService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Conversations == nil {
		return ErrMissingConversations
	}
	return nil
}
