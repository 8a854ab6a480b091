package runs

import "errors"

// Domain errors for run ledger operations.
var (
	ErrNotFound  = errors.New("run not found")
	ErrDuplicate = errors.New("run already recorded")
)
