package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// APIKeyEnv returns the environment variable consulted for this
// provider's API key, or "" for local providers.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// VectorBackend identifies the vector store implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendSQLite stores vectors in a local SQLite file.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendQdrant uses a Qdrant server over gRPC.
	VectorBackendQdrant VectorBackend = "qdrant"

	// VectorBackendMemory keeps vectors in process memory.
	VectorBackendMemory VectorBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendSQLite, VectorBackendQdrant, VectorBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendSQLite:
		return "SQLite (local file)"
	case VectorBackendQdrant:
		return "Qdrant (server)"
	case VectorBackendMemory:
		return "Memory (ephemeral)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds chat-completion provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// QdrantSettings holds Qdrant connection settings.
type QdrantSettings struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// VectorStoreSettings holds vector store configuration.
type VectorStoreSettings struct {
	// Backend selects the implementation.
	Backend VectorBackend

	// Path is the SQLite database file. Empty means <config dir>/vectors.db.
	Path string

	// Region is a placement hint for newly created indexes.
	Region string

	// Qdrant holds server settings when Backend is qdrant.
	Qdrant QdrantSettings
}

// RetrievalSettings holds query-time pipeline knobs.
type RetrievalSettings struct {
	// Expansions is the number of paraphrases requested from the LLM.
	Expansions int

	// TopK is the number of matches requested per index per query.
	TopK int

	// CrossLinkTopK is the number of matches requested per cross-link seed.
	CrossLinkTopK int

	// RerankTopK is the number of matches kept after reranking.
	RerankTopK int

	// ContextBudget is the maximum context length in characters.
	ContextBudget int
}

// IngestSettings holds ingestion pipeline knobs.
type IngestSettings struct {
	ChunkSize       int
	ChunkOverlap    int
	EmbedBatchSize  int
	UpsertBatchSize int

	// MaxAttempts bounds each embed and upsert batch.
	MaxAttempts int

	// RetryDelay is the base backoff between attempts.
	RetryDelay time.Duration

	// ReadyTimeout bounds the wait for a new index to become ready.
	ReadyTimeout time.Duration

	// ReadyPollInterval is the delay between readiness checks.
	ReadyPollInterval time.Duration

	// EmbedRate caps embedding requests per second. Zero disables the limit.
	EmbedRate float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// VectorStore holds vector store settings.
	VectorStore VectorStoreSettings

	// Indexes is the ordered list of corpora queried at answer time.
	Indexes []IndexBinding

	// Retrieval holds query-time knobs.
	Retrieval RetrievalSettings

	// Ingest holds ingestion knobs.
	Ingest IngestSettings
}

// Retrieval defaults.
const (
	DefaultExpansions    = 3
	DefaultTopK          = 5
	DefaultCrossLinkTopK = 3
	DefaultRerankTopK    = 5
	DefaultContextBudget = 8000
)

// Ingestion defaults.
const (
	DefaultChunkSize         = 800
	DefaultChunkOverlap      = 150
	DefaultEmbedBatchSize    = 500
	DefaultUpsertBatchSize   = 100
	DefaultMaxAttempts       = 3
	DefaultRetryDelay        = 2 * time.Second
	DefaultReadyTimeout      = 60 * time.Second
	DefaultReadyPollInterval = 2 * time.Second
)

// DefaultAppSettings returns settings with sensible defaults.
// AI providers default to OpenAI; the API key must come from the config
// file or the environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		VectorStore: VectorStoreSettings{
			Backend: VectorBackendSQLite,
			Region:  "us-east-1",
			Qdrant:  QdrantSettings{Host: "localhost", Port: 6334},
		},
		Indexes: DefaultIndexBindings(),
		Retrieval: RetrievalSettings{
			Expansions:    DefaultExpansions,
			TopK:          DefaultTopK,
			CrossLinkTopK: DefaultCrossLinkTopK,
			RerankTopK:    DefaultRerankTopK,
			ContextBudget: DefaultContextBudget,
		},
		Ingest: IngestSettings{
			ChunkSize:         DefaultChunkSize,
			ChunkOverlap:      DefaultChunkOverlap,
			EmbedBatchSize:    DefaultEmbedBatchSize,
			UpsertBatchSize:   DefaultUpsertBatchSize,
			MaxAttempts:       DefaultMaxAttempts,
			RetryDelay:        DefaultRetryDelay,
			ReadyTimeout:      DefaultReadyTimeout,
			ReadyPollInterval: DefaultReadyPollInterval,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllVectorBackends returns the available vector store backends.
func AllVectorBackends() []VectorBackend {
	return []VectorBackend{
		VectorBackendSQLite,
		VectorBackendQdrant,
		VectorBackendMemory,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-large",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor returns the ingestion pipeline: the recursive chunker
// sized from settings, followed by the metadata enricher.
func PipelineConfigFor(s IngestSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "enricher"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": s.ChunkSize,
				"overlap":    s.ChunkOverlap,
			},
		},
	}
}
