package cli

import (
	"context"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/nprepindia/Solution-Generation/pkg/adapter"
	"github.com/nprepindia/Solution-Generation/pkg/repository"
	"github.com/nprepindia/Solution-Generation/pkg/usecase/solution"
	"github.com/nprepindia/Solution-Generation/pkg/utils/logging"
	"github.com/nprepindia/Solution-Generation/pkg/utils/retry"
)

// config holds configuration values
type config struct {
	// Repository
	databaseDSN string

	// Adapters
	geminiProject   string
	geminiLocation  string
	generativeModel string
	embeddingModel  string

	// Behavior
	logLevel   string
	promptPath string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "database-dsn",
			Aliases:     []string{"d"},
			Usage:       "PostgreSQL connection string for the knowledge base",
			Sources:     cli.EnvVars("SOLGEN_DATABASE_DSN", "DATABASE_URL"),
			Destination: &cfg.databaseDSN,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("SOLGEN_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID", "GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "generative-model",
			Usage:       "Model used for the agent loop",
			Sources:     cli.EnvVars("SOLGEN_GENERATIVE_MODEL"),
			Destination: &cfg.generativeModel,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "Model used for query embeddings",
			Sources:     cli.EnvVars("SOLGEN_EMBEDDING_MODEL"),
			Destination: &cfg.embeddingModel,
		},
		&cli.StringFlag{
			Name:        "prompt",
			Usage:       "Path to a file overriding the built-in solving prompt",
			Sources:     cli.EnvVars("SOLGEN_PROMPT"),
			Destination: &cfg.promptPath,
		},
	}
}

// setupLogger configures the default logger from the log-level flag.
func (cfg *config) setupLogger() {
	logging.SetDefault(logging.New(cfg.logLevel, os.Stderr))
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	var opts []adapter.GeminiOption
	if cfg.generativeModel != "" {
		opts = append(opts, adapter.WithGenerativeModel(cfg.generativeModel))
	}
	if cfg.embeddingModel != "" {
		opts = append(opts, adapter.WithEmbeddingModel(cfg.embeddingModel))
	}

	return retry.Do(ctx, "gemini_init", retry.Init, func(ctx context.Context) (adapter.Gemini, error) {
		return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation, opts...)
	})
}

// newStore opens the knowledge base and verifies connectivity.
func (cfg *config) newStore(ctx context.Context) (repository.Store, error) {
	if cfg.databaseDSN == "" {
		return nil, goerr.New("database-dsn is required")
	}

	store, err := repository.NewPostgres(cfg.databaseDSN)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open knowledge base")
	}

	if _, err := retry.Do(ctx, "database_ping", retry.Init, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, store.Ping(ctx)
	}); err != nil {
		_ = store.Close()
		return nil, goerr.Wrap(err, "knowledge base is unreachable")
	}

	return store, nil
}

// newUseCase wires the adapters and the store into the solving usecase.
func (cfg *config) newUseCase(ctx context.Context) (*solution.UseCase, repository.Store, error) {
	store, err := cfg.newStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	var opts []solution.Option
	if cfg.promptPath != "" {
		data, err := os.ReadFile(cfg.promptPath)
		if err != nil {
			_ = store.Close()
			return nil, nil, goerr.Wrap(err, "failed to read prompt file", goerr.V("path", cfg.promptPath))
		}
		if strings.TrimSpace(string(data)) == "" {
			_ = store.Close()
			return nil, nil, goerr.New("prompt file is empty", goerr.V("path", cfg.promptPath))
		}
		opts = append(opts, solution.WithSolvePrompt(string(data)))
	}

	return solution.New(gemini, store, opts...), store, nil
}
