package driven

import "context"

// LLMService provides chat-completion operations.
// It backs query expansion, reranking and answer synthesis.
//
// Implementations include:
//   - OpenAI (gpt-4o-mini, gpt-4o)
//   - Anthropic (Claude models)
//   - Ollama (llama3.2, mistral)
type LLMService interface {
	// Generate produces a completion for a single user prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat produces the next assistant message for a conversation.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation.
// Temperature is always sent to the provider, including zero.
type GenerateOptions struct {
	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls randomness (0 is deterministic).
	Temperature float64

	// StopWords are sequences that stop generation.
	StopWords []string
}

// Message roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a message in a conversation.
type ChatMessage struct {
	// Role is "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat completion.
// Temperature is always sent to the provider, including zero.
type ChatOptions struct {
	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls randomness.
	Temperature float64
}
