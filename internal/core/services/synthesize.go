package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
)

// Answer call parameters.
const (
	answerTemperature = 0
	answerMaxTokens   = 600

	// DefaultAnswerTimeout bounds the final completion.
	DefaultAnswerTimeout = 60 * time.Second
)

// Synthesizer produces the final answer from a question and its context.
type Synthesizer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	timeout time.Duration
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(llm driven.LLMService) *Synthesizer {
	return &Synthesizer{llm: llm, timeout: DefaultAnswerTimeout}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *Synthesizer) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Synthesize asks the model to answer question from context.
func (s *Synthesizer) Synthesize(ctx context.Context, question, passages string) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: loadPrompt(s.prompts, domain.PromptAnswerSystem)},
		{Role: driven.RoleUser, Content: renderPrompt(s.prompts, domain.PromptAnswerUser, question, passages)},
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.llm.Chat(callCtx, messages, driven.ChatOptions{
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("generate answer: model returned an empty response")
	}
	return answer, nil
}
