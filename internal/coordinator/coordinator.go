// Package coordinator drives the assessment pipeline: it discovers credit
// report documents, runs the workflow for each one with bounded concurrency,
// forwards completed assessments to the output system, and records ledger
// rows when the database is enabled.
package coordinator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/google/uuid"

	"github.com/veldt-labs/arbiter/internal/config"
	"github.com/veldt-labs/arbiter/internal/documents"
	"github.com/veldt-labs/arbiter/internal/infrastructure"
	"github.com/veldt-labs/arbiter/internal/output"
	"github.com/veldt-labs/arbiter/internal/runs"
	"github.com/veldt-labs/arbiter/internal/workflow"
)

// Summary aggregates the outcome of one coordinator pass over the input
// directory.
type Summary struct {
	Processed int
	Failed    int
}

type outcome struct {
	document   documents.Document
	assessment *workflow.Assessment
	artifacts  []output.Artifact
	err        error
}

// Run assesses every document in the input directory. Individual document
// failures are reported in the summary rather than aborting the batch; Run
// itself fails only when the document listing cannot be obtained.
func Run(ctx context.Context, infra *infrastructure.Infrastructure, cfg *config.Config) (*Summary, error) {
	logger := infra.Logger.With("system", "coordinator")

	docs, err := infra.Documents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	if len(docs) == 0 {
		logger.Warn("no documents found", "dir", cfg.Input.Dir)
		return &Summary{}, nil
	}

	rt := &workflow.Runtime{
		Provider: infra.Provider,
		Prompts:  infra.Prompts,
		Workflow: cfg.Workflow,
		Logger:   infra.Logger.With("workflow", "assess"),
	}

	logger.Info("assessment batch starting",
		"documents", len(docs),
		"workers", cfg.Workflow.Workers,
	)

	outcomes := make([]outcome, len(docs))

	var g errgroup.Group
	g.SetLimit(cfg.Workflow.Workers)

	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = outcome{document: doc, err: err}
				return nil
			}
			outcomes[i] = process(ctx, infra, rt, doc)
			return nil
		})
	}

	g.Wait()

	summary := &Summary{}
	for _, out := range outcomes {
		if out.err != nil {
			summary.Failed++
			logger.Error("document assessment failed",
				"filename", out.document.Filename,
				"error", out.err,
			)
			continue
		}

		summary.Processed++
		logger.Info("document assessed",
			"filename", out.document.Filename,
			"run_id", out.assessment.RunID,
			"artifacts", len(out.artifacts),
		)
	}

	logger.Info("assessment batch finished",
		"processed", summary.Processed,
		"failed", summary.Failed,
	)
	return summary, nil
}

// process runs the full pipeline for a single document: extraction, workflow
// execution, artifact output, ledger recording.
func process(
	ctx context.Context,
	infra *infrastructure.Infrastructure,
	rt *workflow.Runtime,
	doc documents.Document,
) outcome {
	started := time.Now()

	text, err := infra.Documents.ExtractText(ctx, doc)
	if err != nil {
		err = fmt.Errorf("extract %s: %w", doc.Filename, err)
		record(ctx, infra, failedRun(doc, started, err))
		return outcome{document: doc, err: err}
	}

	a, err := workflow.Execute(ctx, rt, doc, text)
	if err != nil {
		err = fmt.Errorf("assess %s: %w", doc.Filename, err)
		record(ctx, infra, failedRun(doc, started, err))
		return outcome{document: doc, err: err}
	}

	artifacts, err := infra.Output.Write(ctx, a)
	if err != nil {
		err = fmt.Errorf("write artifacts for %s: %w", doc.Filename, err)
		record(ctx, infra, failedRun(doc, started, err))
		return outcome{document: doc, err: err}
	}

	record(ctx, infra, completedRun(a, artifacts))
	return outcome{document: doc, assessment: a, artifacts: artifacts}
}

// record writes a ledger row when the database is enabled. Recording is best
// effort: it survives run cancellation and never fails the document.
func record(ctx context.Context, infra *infrastructure.Infrastructure, cmd runs.RecordCommand) {
	if infra.Runs == nil {
		return
	}

	if _, err := infra.Runs.Record(context.WithoutCancel(ctx), cmd); err != nil {
		infra.Logger.Warn("run ledger record failed",
			"filename", cmd.Filename,
			"error", err,
		)
	}
}

func completedRun(a *workflow.Assessment, artifacts []output.Artifact) runs.RecordCommand {
	cmd := runs.RecordCommand{
		ID:           a.RunID,
		Filename:     a.Document.Filename,
		Status:       runs.StatusCompleted,
		ProviderName: ptr(a.DecisionInvocation.Provider),
		ModelName:    ptr(a.DecisionInvocation.Model),
		Attempts:     a.RiskInvocation.Attempts + a.DecisionInvocation.Attempts,
		DurationMS:   a.CompletedAt.Sub(a.StartedAt).Milliseconds(),
		StartedAt:    a.StartedAt,
		CompletedAt:  a.CompletedAt,
	}

	for _, artifact := range artifacts {
		key := artifact.StorageKey
		if key == "" {
			key = artifact.Path
		}
		switch artifact.Format {
		case output.FormatText:
			cmd.TextKey = ptr(key)
		case output.FormatJSON:
			cmd.JSONKey = ptr(key)
		}
	}

	return cmd
}

func failedRun(doc documents.Document, started time.Time, err error) runs.RecordCommand {
	completed := time.Now()
	return runs.RecordCommand{
		ID:          uuid.New(),
		Filename:    doc.Filename,
		Status:      runs.StatusFailed,
		Error:       ptr(err.Error()),
		DurationMS:  completed.Sub(started).Milliseconds(),
		StartedAt:   started,
		CompletedAt: completed,
	}
}

func ptr[T any](v T) *T { return &v }
