// Package mcp provides an MCP (Model Context Protocol) server adapter for vidhi.
// It lets AI assistants ask legal questions and retrieve provisions.
package mcp

import "errors"

// ErrMissingConversations is returned when the conversation factory is not provided.
var ErrMissingConversations = errors.New("mcp: conversation factory is required")

// ErrUnknownSession is returned when a tool call names a session this
// server did not start.
var ErrUnknownSession = errors.New("mcp: unknown session")
