package graph

import (
	"errors"
	"fmt"
)

// Domain errors for graph construction and execution.
var (
	// ErrMissingInput indicates a node's declared input field is absent from
	// state when the node becomes eligible.
	ErrMissingInput = errors.New("missing input field")
	// ErrNodeExecutionFailed indicates a node failed after its retry budget.
	ErrNodeExecutionFailed = errors.New("node execution failed")
	// ErrWorkflowTimeout indicates the run exceeded its wall-clock budget.
	ErrWorkflowTimeout = errors.New("workflow timeout exceeded")
	// ErrCycle indicates the declared field sets form a dependency cycle.
	ErrCycle = errors.New("dependency cycle")
	// ErrDuplicateNode indicates two nodes share a name.
	ErrDuplicateNode = errors.New("duplicate node name")
	// ErrDuplicateWriter indicates two nodes declare the same output field.
	ErrDuplicateWriter = errors.New("field has multiple writers")
	// ErrFieldOverwrite indicates a write to an already populated field.
	ErrFieldOverwrite = errors.New("field already written")
	// ErrMissingOutput indicates a node completed without producing one of
	// its declared output fields.
	ErrMissingOutput = errors.New("missing output field")
	// ErrUndeclaredWrite indicates a node produced a field it did not declare.
	ErrUndeclaredWrite = errors.New("undeclared output field")
)

// NodeError identifies the failing node and carries the underlying cause.
type NodeError struct {
	Node string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// Is reports ErrNodeExecutionFailed so callers can classify failures without
// unwrapping to the node level.
func (e *NodeError) Is(target error) bool {
	return target == ErrNodeExecutionFailed
}
