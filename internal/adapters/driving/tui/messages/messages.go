// Package messages defines Bubbletea message types for the chat TUI.
package messages

import (
	"github.com/custodia-labs/vidhi/internal/core/domain"
)

// AnswerReceived carries the pipeline result back to the model.
// The pipeline never fails, so errors arrive inside Answer.Status.
type AnswerReceived struct {
	Answer *domain.Answer
}

// SessionStarted is sent when a fresh conversation replaces the current one.
type SessionStarted struct {
	SessionID string
}

// SessionsLoaded carries recorded session summaries.
type SessionsLoaded struct {
	Sessions []domain.SessionSummary
	Err      error
}

// TranscriptLoaded carries one recorded session.
type TranscriptLoaded struct {
	Session *domain.Session
	Err     error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the question and answer view.
	ViewChat ViewType = iota
	// ViewSessions lists recorded sessions.
	ViewSessions
	// ViewTranscript shows one recorded session.
	ViewTranscript
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewSessions:
		return "sessions"
	case ViewTranscript:
		return "transcript"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
