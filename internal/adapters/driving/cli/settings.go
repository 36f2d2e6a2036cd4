package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers and the vector store.

Settings live in ~/.vidhi/config.toml (or $VIDHI_HOME/config.toml). API keys
may instead come from OPENAI_API_KEY, ANTHROPIC_API_KEY and QDRANT_API_KEY,
including through a .env file in the working directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider used for ingestion and retrieval.

Changing the embedding model changes vector dimensions; indexes built
with another model must be re-ingested.`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for query expansion, reranking and answers.`,
	RunE:  runSettingsLLM,
}

var settingsVectorCmd = &cobra.Command{
	Use:   "vector",
	Short: "Configure vector store",
	Long: `Select the vector store backend.

  sqlite - local file, no server required (default)
  qdrant - Qdrant server over gRPC
  memory - process memory, lost on exit`,
	RunE: runSettingsVector,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsVectorCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Println()

	vs := settings.VectorStore
	cmd.Println("[Vector Store]")
	cmd.Printf("  Backend: %s\n", vs.Backend.Description())
	switch vs.Backend {
	case domain.VectorBackendSQLite:
		path := vs.Path
		if path == "" {
			path = "(default)"
		}
		cmd.Printf("  Path: %s\n", path)
	case domain.VectorBackendQdrant:
		cmd.Printf("  Address: %s:%d (tls: %t)\n", vs.Qdrant.Host, vs.Qdrant.Port, vs.Qdrant.UseTLS)
		if vs.Qdrant.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(vs.Qdrant.APIKey))
		}
	case domain.VectorBackendMemory:
	}
	cmd.Printf("  Region: %s\n", vs.Region)
	cmd.Println()

	cmd.Println("[Indexes]")
	for _, b := range settings.Indexes {
		cmd.Printf("  %s -> %s\n", b.Name, b.Collection)
	}
	cmd.Println()

	r := settings.Retrieval
	cmd.Println("[Retrieval]")
	cmd.Printf("  Expansions: %d, Top K: %d, Cross-link K: %d, Rerank K: %d, Context: %d chars\n",
		r.Expansions, r.TopK, r.CrossLinkTopK, r.RerankTopK, r.ContextBudget)
	cmd.Println()

	in := settings.Ingest
	cmd.Println("[Ingest]")
	cmd.Printf("  Chunk size: %d, Overlap: %d, Embed batch: %d, Upsert batch: %d\n",
		in.ChunkSize, in.ChunkOverlap, in.EmbedBatchSize, in.UpsertBatchSize)
	cmd.Printf("  Attempts: %d, Retry delay: %s", in.MaxAttempts, in.RetryDelay)
	if in.EmbedRate > 0 {
		cmd.Printf(", Embed rate: %g/s", in.EmbedRate)
	}
	cmd.Println()
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'vidhi settings embedding' or 'vidhi settings llm' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if provider == domain.AIProviderOllama && baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	return configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsVector(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	cmd.Println("Select Vector Store")
	backends := domain.AllVectorBackends()
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(backends), 1)
	backend := backends[idx-1]

	if backend != domain.VectorBackendQdrant {
		if err := settingsService.SetVectorBackend(backend); err != nil {
			return fmt.Errorf("failed to set vector backend: %w", err)
		}
		cmd.Printf("Vector store set to: %s\n", backend.Description())
		return nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	q := &settings.VectorStore.Qdrant

	cmd.Printf("Qdrant host [%s]: ", q.Host)
	if host := readLine(reader); host != "" {
		q.Host = host
	}
	cmd.Printf("Qdrant gRPC port [%d]: ", q.Port)
	if port := readLine(reader); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p < 1 || p > 65535 {
			return fmt.Errorf("invalid port: %s", port)
		}
		q.Port = p
	}
	cmd.Print("Use TLS? [y/N]: ")
	q.UseTLS = strings.EqualFold(readLine(reader), "y")
	cmd.Print("API key (blank for none or $QDRANT_API_KEY): ")
	if key := readPassword(reader); key != "" {
		q.APIKey = key
	}
	cmd.Println()

	settings.VectorStore.Backend = domain.VectorBackendQdrant
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Vector store set to: %s at %s:%d\n", backend.Description(), q.Host, q.Port)
	return nil
}

//nolint:dupl // mirrors configureLLMProvider for embeddings
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultEmbeddingModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	apiKey := promptAPIKey(cmd, reader, selectedProvider)

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

//nolint:dupl // mirrors configureEmbeddingProvider for the LLM
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	apiKey := promptAPIKey(cmd, reader, selectedProvider)

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

// promptAPIKey asks for a key when the provider needs one. A blank answer
// leaves the environment variable in charge.
func promptAPIKey(cmd *cobra.Command, reader *bufio.Reader, provider domain.AIProvider) string {
	if !provider.RequiresAPIKey() {
		return ""
	}
	cmd.Printf("Enter API key (blank to use $%s): ", provider.APIKeyEnv())
	key := readPassword(reader)
	cmd.Println()
	return key
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo on a terminal and falls back to a
// plain line from reader.
func readPassword(reader *bufio.Reader) string {
	if stdinIsTerminal() {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	input, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
