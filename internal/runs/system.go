package runs

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for run ledger operations.
type System interface {
	// Record inserts a ledger row and returns the stored run.
	Record(ctx context.Context, cmd RecordCommand) (*Run, error)
	// Find returns the run with the given id.
	Find(ctx context.Context, id uuid.UUID) (*Run, error)
	// ListRecent returns up to limit runs, most recently completed first.
	ListRecent(ctx context.Context, limit int) ([]Run, error)
}
