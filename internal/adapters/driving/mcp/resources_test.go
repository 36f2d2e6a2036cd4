package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

func TestExtractSessionID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid session URI",
			uri:      "vidhi://sessions/20250301_100000_aaaaaaaa",
			expected: "20250301_100000_aaaaaaaa",
		},
		{
			name:     "invalid prefix",
			uri:      "file://sessions/abc",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "vidhi://sessions/abc/turns",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractSessionID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func newSessionsServer(t *testing.T, sessions *mockSessionService) *Server {
	t.Helper()
	ports := &Ports{Conversations: &mockConversationFactory{}}
	if sessions != nil {
		ports.Sessions = sessions
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleSessionsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil session service returns empty list", func(t *testing.T) {
		server := newSessionsServer(t, nil)

		result, err := server.handleSessionsResource(ctx, makeReadResourceRequest("vidhi://sessions"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("lists sessions", func(t *testing.T) {
		started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		server := newSessionsServer(t, &mockSessionService{
			summaries: []domain.SessionSummary{{ID: "20250301_100000_aaaaaaaa", StartedAt: started, Turns: 4}},
		})

		result, err := server.handleSessionsResource(ctx, makeReadResourceRequest("vidhi://sessions"))
		require.NoError(t, err)

		var infos []map[string]any
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
		require.Len(t, infos, 1)
		assert.Equal(t, "20250301_100000_aaaaaaaa", infos[0]["id"])
		assert.Equal(t, "2025-03-01T10:00:00Z", infos[0]["started_at"])
		assert.Equal(t, float64(4), infos[0]["turns"])
		assert.Equal(t, "vidhi://sessions/20250301_100000_aaaaaaaa", infos[0]["uri"])
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server := newSessionsServer(t, &mockSessionService{err: errors.New("disk")})

		_, err := server.handleSessionsResource(ctx, makeReadResourceRequest("vidhi://sessions"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing sessions")
	})
}

func TestServer_handleTranscriptResource(t *testing.T) {
	ctx := context.Background()
	sessions := &mockSessionService{
		sessions: map[string]*domain.Session{
			"s1": {ID: "s1", Turns: []domain.Turn{
				{Role: domain.RoleUser, Content: "What is Section 302?"},
				{Role: domain.RoleAssistant, Content: "Punishment for murder."},
			}},
			"empty": {ID: "empty"},
		},
	}

	t.Run("returns turns", func(t *testing.T) {
		server := newSessionsServer(t, sessions)

		result, err := server.handleTranscriptResource(ctx, makeReadResourceRequest("vidhi://sessions/s1"))
		require.NoError(t, err)

		var turns []domain.Turn
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &turns))
		assert.Equal(t, sessions.sessions["s1"].Turns, turns)
		assert.Contains(t, result.Contents[0].Text, `"role": "user"`)
	})

	t.Run("empty session is an empty array", func(t *testing.T) {
		server := newSessionsServer(t, sessions)

		result, err := server.handleTranscriptResource(ctx, makeReadResourceRequest("vidhi://sessions/empty"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("unknown session is not found", func(t *testing.T) {
		server := newSessionsServer(t, sessions)

		_, err := server.handleTranscriptResource(ctx, makeReadResourceRequest("vidhi://sessions/missing"))

		require.Error(t, err)
	})

	t.Run("invalid URI is not found", func(t *testing.T) {
		server := newSessionsServer(t, sessions)

		_, err := server.handleTranscriptResource(ctx, makeReadResourceRequest("vidhi://other"))

		require.Error(t, err)
	})

	t.Run("nil session service is not found", func(t *testing.T) {
		server := newSessionsServer(t, nil)

		_, err := server.handleTranscriptResource(ctx, makeReadResourceRequest("vidhi://sessions/s1"))

		require.Error(t, err)
	})

	t.Run("returns error on load failure", func(t *testing.T) {
		server := newSessionsServer(t, &mockSessionService{err: errors.New("disk")})

		_, err := server.handleTranscriptResource(ctx, makeReadResourceRequest("vidhi://sessions/s1"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading session")
	})
}
