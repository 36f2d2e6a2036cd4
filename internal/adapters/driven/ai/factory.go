// Package ai provides factory functions for creating the AI and vector store
// adapters from application settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	configfile "github.com/custodia-labs/vidhi/internal/adapters/driven/config/file"
	ollamaembed "github.com/custodia-labs/vidhi/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/vidhi/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/vidhi/internal/adapters/driven/embedding/ratelimit"
	anthropicllm "github.com/custodia-labs/vidhi/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/vidhi/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/vidhi/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/vidhi/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/vidhi/internal/adapters/driven/vector/qdrant"
	vectorsqlite "github.com/custodia-labs/vidhi/internal/adapters/driven/vector/sqlite"
	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// vectorDBFile is the SQLite vector database name inside the config dir.
const vectorDBFile = "vectors.db"

// InitResult contains the adapters built from settings.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorStore      driven.VectorStore
	Warnings         []string // Non-fatal issues, e.g. an unreachable provider.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorStore != nil {
		r.VectorStore.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Initialise builds every adapter the application needs. Unconfigured or
// unreachable AI providers are reported as warnings and left nil so that
// commands which do not need them still work; a vector store that cannot be
// opened is an error.
func Initialise(settings *domain.AppSettings) (*InitResult, error) {
	if settings == nil {
		return nil, fmt.Errorf("initialise: %w", domain.ErrInvalidInput)
	}

	result := &InitResult{}

	store, err := CreateVectorStore(&settings.VectorStore)
	if err != nil {
		return nil, err
	}
	result.VectorStore = store

	embedder, err := CreateEmbeddingService(&settings.Embedding)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
	case embedder == nil:
		result.Warnings = append(result.Warnings, "embedding provider is not configured")
	default:
		result.EmbeddingService = ratelimit.New(embedder, ratelimit.Config{
			RequestsPerSecond: settings.Ingest.EmbedRate,
		})
	}

	llm, err := CreateLLMService(&settings.LLM)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
	case llm == nil:
		result.Warnings = append(result.Warnings, "LLM provider is not configured")
	default:
		result.LLMService = llm
	}

	return result, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'vidhi settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'vidhi settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'vidhi settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'vidhi settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings)

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings)

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateVectorStore opens the configured vector store backend.
// An empty SQLite path resolves to vectors.db in the config directory.
func CreateVectorStore(settings *domain.VectorStoreSettings) (driven.VectorStore, error) {
	if settings == nil {
		return nil, fmt.Errorf("vector store: %w", domain.ErrInvalidInput)
	}

	switch settings.Backend {
	case domain.VectorBackendSQLite, "":
		path := settings.Path
		if path == "" {
			dir, err := configfile.DefaultDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(dir, vectorDBFile)
		}
		store, err := vectorsqlite.NewStore(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorStoreUnavailable, err)
		}
		return store, nil

	case domain.VectorBackendQdrant:
		store, err := qdrant.NewStore(qdrant.Config{
			Host:   settings.Qdrant.Host,
			Port:   settings.Qdrant.Port,
			APIKey: settings.Qdrant.APIKey,
			UseTLS: settings.Qdrant.UseTLS,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorStoreUnavailable, err)
		}
		return store, nil

	case domain.VectorBackendMemory:
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("vector backend %q: %w", settings.Backend, domain.ErrUnsupportedType)
	}
}

// IsUnavailable reports whether err means a provider could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrEmbeddingUnavailable) ||
		errors.Is(err, domain.ErrLLMUnavailable) ||
		errors.Is(err, domain.ErrVectorStoreUnavailable)
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
