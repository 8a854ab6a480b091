package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/google/uuid"

	"github.com/veldt-labs/arbiter/internal/config"
	"github.com/veldt-labs/arbiter/internal/coordinator"
	"github.com/veldt-labs/arbiter/internal/infrastructure"
	"github.com/veldt-labs/arbiter/internal/runs"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		history = flag.Int("history", 0, "Print the N most recent ledger runs and exit")
		show    = flag.String("show", "", "Print the ledger run with the given id and exit")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Println("config load failed:", err)
		return 1
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		log.Println("infrastructure init failed:", err)
		return 1
	}

	logger := infra.Logger
	logger.Info("arbiter starting",
		"version", cfg.Version,
		"env", cfg.Env(),
		"input", cfg.Input.Dir,
		"output", cfg.Output.Dir,
	)

	if err := infra.Start(); err != nil {
		logger.Error("infrastructure start failed", "error", err)
		return 1
	}

	if err := infra.Lifecycle.WaitForStartup(); err != nil {
		logger.Error("startup failed", "error", err)
		infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())
		return 1
	}

	if *history > 0 || *show != "" {
		code := inspect(infra, *history, *show)
		if shutdownErr := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); shutdownErr != nil {
			logger.Warn("shutdown incomplete", "error", shutdownErr)
		}
		return code
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())
		cancel()
	}()

	summary, err := coordinator.Run(runCtx, infra, cfg)

	if shutdownErr := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); shutdownErr != nil {
		logger.Warn("shutdown incomplete", "error", shutdownErr)
	}

	if err != nil {
		logger.Error("assessment run failed", "error", err)
		return 1
	}

	logger.Info("arbiter finished",
		"processed", summary.Processed,
		"failed", summary.Failed,
	)

	if summary.Failed > 0 {
		return 1
	}
	return 0
}

// inspect serves the read-only ledger flags: a single run by id, or the
// most recent runs.
func inspect(infra *infrastructure.Infrastructure, history int, show string) int {
	if infra.Runs == nil {
		infra.Logger.Error("ledger inspection requires the database to be enabled")
		return 1
	}

	ctx := context.Background()

	if show != "" {
		id, err := uuid.Parse(show)
		if err != nil {
			infra.Logger.Error("invalid run id", "id", show, "error", err)
			return 1
		}

		found, err := infra.Runs.Find(ctx, id)
		if err != nil {
			infra.Logger.Error("run lookup failed", "id", show, "error", err)
			return 1
		}
		return printRun(infra, found)
	}

	recent, err := infra.Runs.ListRecent(ctx, history)
	if err != nil {
		infra.Logger.Error("recent runs lookup failed", "error", err)
		return 1
	}

	for i := range recent {
		if code := printRun(infra, &recent[i]); code != 0 {
			return code
		}
	}
	return 0
}

func printRun(infra *infrastructure.Infrastructure, r *runs.Run) int {
	data, err := runs.Render(r)
	if err != nil {
		infra.Logger.Error("run render failed", "id", r.ID, "error", err)
		return 1
	}
	fmt.Println(string(data))
	return 0
}
