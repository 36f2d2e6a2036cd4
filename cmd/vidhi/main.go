package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/vidhi/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/vidhi/internal/adapters/driven/config/file"
	sessionfile "github.com/custodia-labs/vidhi/internal/adapters/driven/session/file"
	"github.com/custodia-labs/vidhi/internal/adapters/driving/cli"
	"github.com/custodia-labs/vidhi/internal/core/services"
	"github.com/custodia-labs/vidhi/internal/logger"
	"github.com/custodia-labs/vidhi/internal/normalisers/legal"
	"github.com/custodia-labs/vidhi/internal/postprocessors"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// .env is optional; it usually carries API keys.
	_ = godotenv.Load()

	dir, err := configfile.DefaultDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	configStore, err := configfile.NewConfigStore(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settingsService.SetEnvLookup(os.LookupEnv)

	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading settings: %v\n", err)
		return 1
	}

	adapters, err := ai.Initialise(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer adapters.Close()

	for _, w := range adapters.Warnings {
		logger.Warn("%s", w)
	}

	indexes := make([]services.IndexHandle, 0, len(settings.Indexes))
	for _, b := range settings.Indexes {
		indexes = append(indexes, services.IndexHandle{
			Name:  b.Name,
			Index: adapters.VectorStore.Index(b.Collection),
		})
	}

	prompts, err := configfile.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	sessions, err := sessionfile.NewStore(filepath.Join(dir, "sessions"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := registry.BuildPipeline(settingsService.GetPipelineConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building ingest pipeline: %v\n", err)
		return 1
	}

	engine := services.NewAnswerEngine(services.AnswerEngineConfig{
		Embedder:  adapters.EmbeddingService,
		LLM:       adapters.LLMService,
		Indexes:   indexes,
		Prompts:   prompts,
		Sessions:  sessions,
		Retrieval: settings.Retrieval,
	})

	ingest := services.NewIngestService(
		legal.New(),
		pipeline,
		adapters.EmbeddingService,
		adapters.VectorStore,
		settings.Indexes,
		services.IngestConfigFrom(settings.Ingest, settings.VectorStore.Region),
	)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Conversations: engine,
		Retrieval:     engine,
		Ingest:        ingest,
		Sessions:      services.NewSessionService(sessions),
		Settings:      settingsService,
	})

	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}
