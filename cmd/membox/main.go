package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/membox-labs/membox-cli/internal/adapters/driven/embedding/gemini"
	geminillm "github.com/membox-labs/membox-cli/internal/adapters/driven/llm/gemini"
	"github.com/membox-labs/membox-cli/internal/adapters/driven/storage/sqlite"
	"github.com/membox-labs/membox-cli/internal/adapters/driven/vectorstore/chroma"
	"github.com/membox-labs/membox-cli/internal/adapters/driving/cli"
	"github.com/membox-labs/membox-cli/internal/config"
	"github.com/membox-labs/membox-cli/internal/core/services"
	"github.com/membox-labs/membox-cli/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// Credentials may live in a .env file during development.
	_ = godotenv.Load()

	path := os.Getenv("MEMBOX_CONFIG")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	wired := cli.Services{Config: cfg}

	runs, err := sqlite.NewRunStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer runs.Close()
	wired.Runs = runs

	// Without an API key only the offline commands (sources, history,
	// version) work; ingest and ask report themselves unconfigured.
	if apiKey := cfg.Gemini.APIKey(); apiKey != "" {
		embedder, err := gemini.New(gemini.Config{
			APIKey: apiKey,
			Model:  cfg.Gemini.EmbeddingModel,
		})
		if err != nil {
			return fmt.Errorf("embedding: %w", err)
		}
		defer embedder.Close()

		generator, err := geminillm.New(geminillm.Config{
			APIKey: apiKey,
			Model:  cfg.Gemini.GenerationModel,
		})
		if err != nil {
			return fmt.Errorf("generation: %w", err)
		}
		defer generator.Close()

		store := chroma.New(chroma.Config{BaseURL: cfg.Chroma.URL}, embedder)
		defer store.Close()

		registry := services.NewCollectionRegistry(store)
		wired.Answerer = services.NewAnswerService(store, embedder, registry, services.NewSynthesizer(generator))
		wired.Ingestor = services.NewIngestService(store, runs)
	} else {
		logger.Warn("%s is not set; ingest and ask are unavailable", cfg.Gemini.APIKeyEnv)
	}

	cli.SetServices(wired)
	return cli.Execute()
}
