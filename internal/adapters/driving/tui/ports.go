// Package tui provides an interactive terminal chat for vidhi.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"fmt"

	"github.com/custodia-labs/vidhi/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Conversations starts question and answer sessions.
	Conversations driving.ConversationFactory

	// Sessions reads recorded transcripts.
	Sessions driving.SessionService

	// Settings describes the configured providers. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(conversations driving.ConversationFactory, sessions driving.SessionService) *Ports {
	return &Ports{
		Conversations: conversations,
		Sessions:      sessions,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Conversations == nil {
		return fmt.Errorf("%w: %w", ErrInvalidPorts, ErrMissingConversations)
	}
	if p.Sessions == nil {
		return fmt.Errorf("%w: %w", ErrInvalidPorts, ErrMissingSessionService)
	}
	return nil
}
