package tui

import "errors"

// ErrMissingConversations is returned when the conversation factory is not provided.
var ErrMissingConversations = errors.New("tui: conversation factory is required")

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("tui: session service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
