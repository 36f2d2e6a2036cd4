package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider(t *testing.T) {
	tests := []struct {
		provider AIProvider
		valid    bool
		needsKey bool
		env      string
	}{
		{AIProviderOllama, true, false, ""},
		{AIProviderOpenAI, true, true, "OPENAI_API_KEY"},
		{AIProviderAnthropic, true, true, "ANTHROPIC_API_KEY"},
		{AIProvider("cohere"), false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.provider.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.provider.IsValid())
			assert.Equal(t, tt.needsKey, tt.provider.RequiresAPIKey())
			assert.Equal(t, tt.env, tt.provider.APIKeyEnv())
			assert.NotEmpty(t, tt.provider.Description())
		})
	}
}

func TestVectorBackend(t *testing.T) {
	for _, b := range AllVectorBackends() {
		assert.True(t, b.IsValid(), b)
		assert.NotEqual(t, unknownDescription, b.Description())
	}
	assert.False(t, VectorBackend("pinecone").IsValid())
	assert.Equal(t, unknownDescription, VectorBackend("pinecone").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.True(t, EmbeddingSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "sk"}.IsConfigured())
	assert.False(t, EmbeddingSettings{}.IsConfigured())
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderAnthropic}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, "text-embedding-3-large", s.Embedding.Model)
	assert.Equal(t, "gpt-4o-mini", s.LLM.Model)
	assert.Equal(t, VectorBackendSQLite, s.VectorStore.Backend)
	assert.Len(t, s.Indexes, 2)
	assert.Equal(t, 3, s.Retrieval.Expansions)
	assert.Equal(t, 5, s.Retrieval.TopK)
	assert.Equal(t, 3, s.Retrieval.CrossLinkTopK)
	assert.Equal(t, 5, s.Retrieval.RerankTopK)
	assert.Equal(t, 8000, s.Retrieval.ContextBudget)
	assert.Equal(t, 800, s.Ingest.ChunkSize)
	assert.Equal(t, 150, s.Ingest.ChunkOverlap)
	assert.Equal(t, 500, s.Ingest.EmbedBatchSize)
	assert.Equal(t, 100, s.Ingest.UpsertBatchSize)
	assert.Equal(t, 3, s.Ingest.MaxAttempts)
}

func TestPipelineConfigFor(t *testing.T) {
	cfg := PipelineConfigFor(IngestSettings{ChunkSize: 400, ChunkOverlap: 50})

	assert.Equal(t, []string{"chunker", "enricher"}, cfg.Processors)
	assert.Equal(t, 400, cfg.GetProcessorConfig("chunker")["chunk_size"])
	assert.Equal(t, 50, cfg.GetProcessorConfig("chunker")["overlap"])
	assert.Nil(t, cfg.GetProcessorConfig("enricher"))

	var empty PipelineConfig
	assert.Nil(t, empty.GetProcessorConfig("chunker"))
}
