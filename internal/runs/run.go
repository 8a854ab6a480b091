// Package runs implements the assessment run ledger for Arbiter.
// It provides types, data access, and recording logic for the outcome of
// each document assessment produced by the workflow engine.
package runs

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses recorded in the ledger.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run represents a stored ledger row for one document assessment.
// It mirrors the runs table schema with flattened provider metadata.
// Nullable columns use pointer fields; they are nil for failed runs
// that never reached a provider.
type Run struct {
	ID           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	Status       string    `json:"status"`
	ProviderName *string   `json:"provider_name"`
	ModelName    *string   `json:"model_name"`
	Attempts     int       `json:"attempts"`
	DurationMS   int64     `json:"duration_ms"`
	Error        *string   `json:"error"`
	TextKey      *string   `json:"text_key"`
	JSONKey      *string   `json:"json_key"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
}

// RecordCommand carries the data needed to record a run.
// TextKey and JSONKey hold artifact locations (local paths, or storage keys
// when mirroring is enabled) and are nil when the run produced no artifacts.
type RecordCommand struct {
	ID           uuid.UUID
	Filename     string
	Status       string
	ProviderName *string
	ModelName    *string
	Attempts     int
	DurationMS   int64
	Error        *string
	TextKey      *string
	JSONKey      *string
	StartedAt    time.Time
	CompletedAt  time.Time
}
