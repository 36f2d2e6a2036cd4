package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the legal question or a plain description of a situation"`
	SessionID string `json:"session_id,omitempty" jsonschema:"continue a session returned by an earlier call; omit to start one"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string         `json:"answer"`
	Status    string         `json:"status"`
	SessionID string         `json:"session_id"`
	Sources   []SourceOutput `json:"sources,omitempty"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Question string `json:"question" jsonschema:"the question to find provisions for"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Matches []SourceOutput `json:"matches"`
	Count   int            `json:"count"`
}

// SourceOutput represents one retrieved provision.
type SourceOutput struct {
	ID            string  `json:"id"`
	Index         string  `json:"index"`
	Score         float64 `json:"score"`
	SectionNumber string  `json:"section_number,omitempty"`
	SectionTitle  string  `json:"section_title,omitempty"`
	Text          string  `json:"text,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about the Constitution of India or Indian criminal law",
	}, s.handleAsk)

	if s.ports.Retrieval != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "retrieve",
			Description: "Find the legal provisions most relevant to a question without answering it",
		}, s.handleRetrieve)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	conversation, err := s.conversation(strings.TrimSpace(input.SessionID))
	if err != nil {
		return nil, AskOutput{}, err
	}

	answer := conversation.AskDetailed(ctx, input.Question)
	if answer == nil {
		return nil, AskOutput{}, errors.New("no answer produced")
	}

	return nil, AskOutput{
		Answer:    answer.Text,
		Status:    string(answer.Status),
		SessionID: conversation.SessionID(),
		Sources:   toSourceOutputs(answer.Sources),
	}, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, RetrieveOutput{}, domain.ErrInvalidInput
	}

	matches, err := s.ports.Retrieval.Retrieve(ctx, input.Question)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	out := toSourceOutputs(matches)
	if out == nil {
		out = []SourceOutput{}
	}
	return nil, RetrieveOutput{Matches: out, Count: len(out)}, nil
}

func toSourceOutputs(matches []domain.Match) []SourceOutput {
	if len(matches) == 0 {
		return nil
	}
	out := make([]SourceOutput, len(matches))
	for i, m := range matches {
		out[i] = SourceOutput{
			ID:            m.ID,
			Index:         m.Source(),
			Score:         m.Score,
			SectionNumber: domain.MetaString(m.Metadata, domain.MetaSectionNumber),
			SectionTitle:  domain.MetaString(m.Metadata, domain.MetaSectionTitle),
			Text:          m.Text(),
		}
	}
	return out
}
