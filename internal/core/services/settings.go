package services

import (
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
	"github.com/custodia-labs/vidhi/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"

	keyVectorBackend = "vector_store.backend"
	keyVectorPath    = "vector_store.path"
	keyVectorRegion  = "vector_store.region"
	keyQdrantHost    = "vector_store.qdrant.host"
	keyQdrantPort    = "vector_store.qdrant.port"
	keyQdrantAPIKey  = "vector_store.qdrant.api_key"
	keyQdrantTLS     = "vector_store.qdrant.tls"

	keyIndexOrder = "indexes.order"

	keyExpansions    = "retrieval.expansions"
	keyTopK          = "retrieval.top_k"
	keyCrossLinkTopK = "retrieval.cross_link_top_k"
	keyRerankTopK    = "retrieval.rerank_top_k"
	keyContextBudget = "retrieval.context_budget"

	keyChunkSize       = "ingest.chunk_size"
	keyChunkOverlap    = "ingest.chunk_overlap"
	keyEmbedBatchSize  = "ingest.embed_batch_size"
	keyUpsertBatchSize = "ingest.upsert_batch_size"
	keyMaxAttempts     = "ingest.max_attempts"
	keyRetryDelay      = "ingest.retry_delay"
	keyReadyTimeout    = "ingest.ready_timeout"
	keyReadyPoll       = "ingest.ready_poll_interval"
	keyEmbedRate       = "ingest.embed_rate"

	envQdrantAPIKey = "QDRANT_API_KEY"
	defaultOllama   = "http://localhost:11434"
)

// indexCollectionKey is the config key holding the physical collection of
// a logical index.
func indexCollectionKey(name string) string {
	return "indexes." + name + ".collection"
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
// API keys missing from the config file are read from the environment.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment lookup used for API keys.
func (s *SettingsService) SetEnvLookup(lookup func(string) (string, bool)) {
	s.lookupEnv = lookup
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:    s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		VectorStore: domain.VectorStoreSettings{
			Backend: s.getBackend(d.VectorStore.Backend),
			Path:    s.configStore.GetString(keyVectorPath),
			Region:  s.getString(keyVectorRegion, d.VectorStore.Region),
			Qdrant: domain.QdrantSettings{
				Host:   s.getString(keyQdrantHost, d.VectorStore.Qdrant.Host),
				Port:   s.getInt(keyQdrantPort, d.VectorStore.Qdrant.Port),
				APIKey: s.configStore.GetString(keyQdrantAPIKey),
				UseTLS: s.getBool(keyQdrantTLS, d.VectorStore.Qdrant.UseTLS),
			},
		},
		Indexes: s.getIndexes(d.Indexes),
		Retrieval: domain.RetrievalSettings{
			Expansions:    s.getInt(keyExpansions, d.Retrieval.Expansions),
			TopK:          s.getInt(keyTopK, d.Retrieval.TopK),
			CrossLinkTopK: s.getInt(keyCrossLinkTopK, d.Retrieval.CrossLinkTopK),
			RerankTopK:    s.getInt(keyRerankTopK, d.Retrieval.RerankTopK),
			ContextBudget: s.getInt(keyContextBudget, d.Retrieval.ContextBudget),
		},
		Ingest: domain.IngestSettings{
			ChunkSize:         s.getInt(keyChunkSize, d.Ingest.ChunkSize),
			ChunkOverlap:      s.getInt(keyChunkOverlap, d.Ingest.ChunkOverlap),
			EmbedBatchSize:    s.getInt(keyEmbedBatchSize, d.Ingest.EmbedBatchSize),
			UpsertBatchSize:   s.getInt(keyUpsertBatchSize, d.Ingest.UpsertBatchSize),
			MaxAttempts:       s.getInt(keyMaxAttempts, d.Ingest.MaxAttempts),
			RetryDelay:        s.getDuration(keyRetryDelay, d.Ingest.RetryDelay),
			ReadyTimeout:      s.getDuration(keyReadyTimeout, d.Ingest.ReadyTimeout),
			ReadyPollInterval: s.getDuration(keyReadyPoll, d.Ingest.ReadyPollInterval),
			EmbedRate:         s.configStore.GetFloat(keyEmbedRate),
		},
	}

	s.applyEnvKeys(settings)
	return settings, nil
}

// applyEnvKeys fills empty API keys from the environment.
func (s *SettingsService) applyEnvKeys(settings *domain.AppSettings) {
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.env(settings.Embedding.Provider.APIKeyEnv())
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.env(settings.LLM.Provider.APIKeyEnv())
	}
	if settings.VectorStore.Qdrant.APIKey == "" {
		settings.VectorStore.Qdrant.APIKey = s.env(envQdrantAPIKey)
	}
}

func (s *SettingsService) env(name string) string {
	if name == "" || s.lookupEnv == nil {
		return ""
	}
	v, _ := s.lookupEnv(name)
	return v
}

// Save persists application settings. API keys are written only when set
// and not equal to the environment value, so keys sourced from the
// environment are not copied into the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyVectorBackend, settings.VectorStore.Backend.String()},
		{keyVectorPath, settings.VectorStore.Path},
		{keyVectorRegion, settings.VectorStore.Region},
		{keyQdrantHost, settings.VectorStore.Qdrant.Host},
		{keyQdrantPort, settings.VectorStore.Qdrant.Port},
		{keyQdrantTLS, settings.VectorStore.Qdrant.UseTLS},
		{keyExpansions, settings.Retrieval.Expansions},
		{keyTopK, settings.Retrieval.TopK},
		{keyCrossLinkTopK, settings.Retrieval.CrossLinkTopK},
		{keyRerankTopK, settings.Retrieval.RerankTopK},
		{keyContextBudget, settings.Retrieval.ContextBudget},
		{keyChunkSize, settings.Ingest.ChunkSize},
		{keyChunkOverlap, settings.Ingest.ChunkOverlap},
		{keyEmbedBatchSize, settings.Ingest.EmbedBatchSize},
		{keyUpsertBatchSize, settings.Ingest.UpsertBatchSize},
		{keyMaxAttempts, settings.Ingest.MaxAttempts},
		{keyRetryDelay, settings.Ingest.RetryDelay.String()},
		{keyReadyTimeout, settings.Ingest.ReadyTimeout.String()},
		{keyReadyPoll, settings.Ingest.ReadyPollInterval.String()},
		{keyEmbedRate, settings.Ingest.EmbedRate},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := []struct {
		key, value, env string
	}{
		{keyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.Provider.APIKeyEnv()},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.Provider.APIKeyEnv()},
		{keyQdrantAPIKey, settings.VectorStore.Qdrant.APIKey, envQdrantAPIKey},
	}
	for _, secret := range secrets {
		if secret.value == "" || secret.value == s.env(secret.env) {
			continue
		}
		if err := s.configStore.Set(secret.key, secret.value); err != nil {
			return fmt.Errorf("save %s: %w", secret.key, err)
		}
	}

	order := make([]string, len(settings.Indexes))
	for i, b := range settings.Indexes {
		order[i] = b.Name
		if err := s.configStore.Set(indexCollectionKey(b.Name), b.Collection); err != nil {
			return fmt.Errorf("save index %s: %w", b.Name, err)
		}
	}
	if err := s.configStore.Set(keyIndexOrder, order); err != nil {
		return fmt.Errorf("save index order: %w", err)
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !containsProvider(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.env(provider.APIKeyEnv()) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.env(provider.APIKeyEnv()) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetVectorBackend configures the vector store backend.
func (s *SettingsService) SetVectorBackend(backend domain.VectorBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid vector backend: %s", backend)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.VectorStore.Backend = backend
	return s.Save(settings)
}

// Validate checks that current settings can answer questions.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not configured: %w",
			settings.Embedding.Provider, domain.ErrEmbeddingUnavailable)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %q is not configured: %w",
			settings.LLM.Provider, domain.ErrLLMUnavailable)
	}
	if !settings.VectorStore.Backend.IsValid() {
		return fmt.Errorf("vector backend %q: %w", settings.VectorStore.Backend, domain.ErrUnsupportedType)
	}
	if len(settings.Indexes) == 0 {
		return fmt.Errorf("no indexes configured: %w", domain.ErrInvalidInput)
	}
	if settings.Ingest.ChunkOverlap >= settings.Ingest.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d: %w",
			settings.Ingest.ChunkOverlap, settings.Ingest.ChunkSize, domain.ErrInvalidInput)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

// getIndexes reads the ordered index list. A logical name without a
// collection maps to a collection of the same name.
func (s *SettingsService) getIndexes(defaultVal []domain.IndexBinding) []domain.IndexBinding {
	order := s.configStore.GetStringSlice(keyIndexOrder)
	if len(order) == 0 {
		return defaultVal
	}
	bindings := make([]domain.IndexBinding, 0, len(order))
	for _, name := range order {
		bindings = append(bindings, domain.IndexBinding{
			Name:       name,
			Collection: s.getString(indexCollectionKey(name), name),
		})
	}
	return bindings
}

// GetPipelineConfig returns the ingestion post-processor pipeline.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	settings, _ := s.Get()
	cfg := domain.PipelineConfigFor(settings.Ingest)
	if processors := s.configStore.GetStringSlice("pipeline.processors"); len(processors) > 0 {
		cfg.Processors = processors
	}
	return cfg
}

func containsProvider(providers []domain.AIProvider, p domain.AIProvider) bool {
	for _, candidate := range providers {
		if candidate == p {
			return true
		}
	}
	return false
}

func modelOrDefault(model, defaultModel string) string {
	if model != "" {
		return model
	}
	return defaultModel
}

// baseURLFor keeps a custom URL for local providers and clears it for cloud ones.
func baseURLFor(provider domain.AIProvider, current string) string {
	if provider.RequiresAPIKey() {
		return ""
	}
	if current == "" {
		return defaultOllama
	}
	return current
}
