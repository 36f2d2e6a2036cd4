package domain

import (
	"fmt"
	"time"
)

// Role identifies who produced a turn.
type Role string

// Turn roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a session transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is the transcript of one conversation. Turns only grow, and
// always in user/assistant pairs.
type Session struct {
	// ID is "YYYYMMDD_HHMMSS_<8 hex>".
	ID string

	// Turns in the order they happened.
	Turns []Turn
}

// sessionTimeLayout renders the timestamp half of a session ID.
const sessionTimeLayout = "20060102_150405"

// NewSessionID builds a session ID from a start time and a random hex
// string, of which the first 8 characters are used.
func NewSessionID(start time.Time, random string) string {
	if len(random) > 8 {
		random = random[:8]
	}
	return fmt.Sprintf("%s_%s", start.Format(sessionTimeLayout), random)
}

// SessionStartedAt parses the timestamp half of a session ID.
func SessionStartedAt(id string) (time.Time, error) {
	if len(id) < len(sessionTimeLayout) {
		return time.Time{}, fmt.Errorf("session id %q: %w", id, ErrInvalidInput)
	}
	t, err := time.ParseInLocation(sessionTimeLayout, id[:len(sessionTimeLayout)], time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("session id %q: %w", id, ErrInvalidInput)
	}
	return t, nil
}

// SessionSummary is a listing entry for a stored session.
type SessionSummary struct {
	ID        string
	StartedAt time.Time
	Turns     int
}
