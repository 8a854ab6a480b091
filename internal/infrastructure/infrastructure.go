// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies the assessment pipeline requires: logging,
// model providers, document intake, prompt composition, artifact output, and the
// optional persistence systems.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/veldt-labs/arbiter/internal/config"
	"github.com/veldt-labs/arbiter/internal/documents"
	"github.com/veldt-labs/arbiter/internal/output"
	"github.com/veldt-labs/arbiter/internal/prompts"
	"github.com/veldt-labs/arbiter/internal/runs"
	"github.com/veldt-labs/arbiter/pkg/database"
	"github.com/veldt-labs/arbiter/pkg/lifecycle"
	"github.com/veldt-labs/arbiter/pkg/provider"
	"github.com/veldt-labs/arbiter/pkg/storage"
)

// Infrastructure holds the systems required by the assessment pipeline.
// Database, Storage, and Runs are nil when the corresponding configuration
// section is disabled.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Provider  provider.System
	Documents documents.System
	Prompts   prompts.System
	Output    output.System
	Database  database.System
	Storage   storage.System
	Runs      runs.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := newLogger(&cfg.Logging)

	prompt, err := prompts.NewSystem(&cfg.Prompts, logger)
	if err != nil {
		return nil, fmt.Errorf("prompts init failed: %w", err)
	}

	var db database.System
	if cfg.Database.Enabled {
		db, err = database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
	}

	var store storage.System
	if cfg.Storage.Enabled {
		store, err = storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
	}

	var ledger runs.System
	if db != nil {
		ledger = runs.New(db.Connection(), logger)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Provider:  provider.New(&cfg.Providers, &cfg.Retry, logger),
		Documents: documents.NewSystem(&cfg.Input, logger),
		Prompts:   prompt,
		Output:    output.NewSystem(&cfg.Output, cfg.Version, store, logger),
		Database:  db,
		Storage:   store,
		Runs:      ledger,
	}, nil
}

// Start registers the enabled persistence systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	return nil
}

func newLogger(cfg *config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Leveler()}

	var handler slog.Handler
	if cfg.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
