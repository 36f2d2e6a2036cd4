package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vidhi/internal/core/ports/driving"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Conversation retention limits.
const (
	// MaxConversations caps live conversations; the least recently used
	// one is dropped to make room.
	MaxConversations = 1000

	// ConversationIdleTTL drops conversations unused for this long.
	ConversationIdleTTL = 30 * time.Minute
)

type liveConversation struct {
	answers  driving.AnswerService
	lastUsed time.Time
}

// Server is the MCP server for vidhi.
type Server struct {
	ports  *Ports
	server *mcp.Server

	// mu guards conversations. Each conversation records its own session.
	mu            sync.Mutex
	conversations map[string]*liveConversation
	maxLive       int
	idleTTL       time.Duration
	now           func() time.Time
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "vidhi",
		Version: Version,
	}

	s := &Server{
		ports:         ports,
		server:        mcp.NewServer(impl, nil),
		conversations: make(map[string]*liveConversation),
		maxLive:       MaxConversations,
		idleTTL:       ConversationIdleTTL,
		now:           time.Now,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// conversation returns the conversation for id, starting a new one when
// id is empty. Expired conversations are unknown; their transcripts stay
// readable through the session resources.
func (s *Server) conversation(id string) (driving.AnswerService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expireLocked(now)

	if id == "" {
		for len(s.conversations) >= s.maxLive {
			s.evictOldestLocked()
		}
		c := s.ports.Conversations.NewConversation()
		s.conversations[c.SessionID()] = &liveConversation{answers: c, lastUsed: now}
		return c, nil
	}
	live, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	live.lastUsed = now
	return live.answers, nil
}

func (s *Server) expireLocked(now time.Time) {
	for id, live := range s.conversations {
		if now.Sub(live.lastUsed) > s.idleTTL {
			delete(s.conversations, id)
		}
	}
}

func (s *Server) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, live := range s.conversations {
		if oldestID == "" || live.lastUsed.Before(oldest) {
			oldestID, oldest = id, live.lastUsed
		}
	}
	delete(s.conversations, oldestID)
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
