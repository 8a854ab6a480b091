package runs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/veldt-labs/arbiter/pkg/repository"
)

const runColumns = `id, filename, status, provider_name, model_name, attempts,
		  duration_ms, error, text_key, json_key, started_at, completed_at`

const recordQuery = `
	INSERT INTO runs(
		id, filename, status, provider_name, model_name, attempts,
		duration_ms, error, text_key, json_key, started_at, completed_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING ` + runColumns

const findQuery = `
	SELECT ` + runColumns + `
	FROM runs
	WHERE id = $1`

const listRecentQuery = `
	SELECT ` + runColumns + `
	FROM runs
	ORDER BY completed_at DESC
	LIMIT $1`

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a run ledger repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "runs"),
	}
}

func (r *repo) Record(ctx context.Context, cmd RecordCommand) (*Run, error) {
	args := []any{
		cmd.ID,
		cmd.Filename,
		cmd.Status,
		cmd.ProviderName,
		cmd.ModelName,
		cmd.Attempts,
		cmd.DurationMS,
		cmd.Error,
		cmd.TextKey,
		cmd.JSONKey,
		cmd.StartedAt,
		cmd.CompletedAt,
	}

	run, err := repository.QueryOne(ctx, r.db, recordQuery, args, scanRun)
	if err != nil {
		return nil, fmt.Errorf("record run: %w", repository.MapError(err, ErrNotFound, ErrDuplicate))
	}

	r.logger.Info("run recorded",
		"id", run.ID,
		"filename", run.Filename,
		"status", run.Status,
	)
	return &run, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Run, error) {
	run, err := repository.QueryOne(ctx, r.db, findQuery, []any{id}, scanRun)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &run, nil
}

func (r *repo) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	items, err := repository.QueryMany(ctx, r.db, listRecentQuery, []any{limit}, scanRun)
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}
	return items, nil
}
