package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status describes an execution's observable progress.
type Status string

// Execution statuses.
const (
	StatusPending    Status = "pending"
	StatusRunning    Status = "running"
	StatusNodeFailed Status = "node_failed"
	StatusCompleted  Status = "completed"
)

// Options bound one execution's retry, concurrency, and timing behavior.
type Options struct {
	// MaxRetries is the number of additional times a failed node is re-run.
	// Only the failed node repeats; completed nodes never re-run.
	MaxRetries int
	// Timeout bounds the whole run's wall clock. Zero means unbounded.
	Timeout time.Duration
	// Parallel runs each level's nodes concurrently.
	Parallel bool
	Logger   *slog.Logger
}

// Execution tracks a single run of a graph over one state instance.
type Execution struct {
	graph *Graph
	state *State
	opts  Options

	mu      sync.Mutex
	status  Status
	running []string
	failed  string
	failure error
}

// Start prepares an execution with state seeded from the given fields.
func (g *Graph) Start(seed map[string]any, opts Options) *Execution {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Execution{
		graph:  g,
		state:  NewState(seed),
		opts:   opts,
		status: StatusPending,
	}
}

// Execute runs the graph to completion over a state seeded with the given
// fields and returns the final state.
func (g *Graph) Execute(ctx context.Context, seed map[string]any, opts Options) (*State, error) {
	return g.Start(seed, opts).Run(ctx)
}

// Status returns the execution's current status.
func (e *Execution) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Running returns the names of the nodes in the level currently executing.
func (e *Execution) Running() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.running)
}

// Failure returns the failed node and terminal error once the execution has
// entered StatusNodeFailed.
func (e *Execution) Failure() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failed, e.failure
}

// Run drives the execution to a terminal status and returns the final state.
func (e *Execution) Run(ctx context.Context) (*State, error) {
	runCtx := ctx
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	for _, level := range e.graph.levels {
		if err := e.runLevel(runCtx, level); err != nil {
			return e.state, err
		}
	}

	e.mu.Lock()
	e.status = StatusCompleted
	e.running = nil
	e.mu.Unlock()

	e.opts.Logger.Info("workflow completed",
		"graph", e.graph.name,
		"fields", e.state.Fields(),
	)
	return e.state, nil
}

// runLevel executes one level's nodes, concurrently when Parallel is set.
// All nodes in the level settle before the next level starts.
func (e *Execution) runLevel(ctx context.Context, level []int) error {
	names := make([]string, len(level))
	for i, idx := range level {
		names[i] = e.graph.nodes[idx].Name
	}

	e.mu.Lock()
	e.status = StatusRunning
	e.running = names
	e.mu.Unlock()

	if e.opts.Parallel && len(level) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for _, idx := range level {
			node := e.graph.nodes[idx]
			g.Go(func() error {
				return e.runNode(gctx, node)
			})
		}
		if err := g.Wait(); err != nil {
			return e.fail(ctx, err)
		}
		return nil
	}

	for _, idx := range level {
		if err := e.runNode(ctx, e.graph.nodes[idx]); err != nil {
			return e.fail(ctx, err)
		}
	}
	return nil
}

// runNode verifies the node's declared inputs, runs the handler under the
// retry budget, and commits its updates as one transition. Absent inputs fail
// the node before the handler is ever invoked.
func (e *Execution) runNode(ctx context.Context, node Node) error {
	for _, field := range node.Reads {
		if _, ok := e.state.Get(field); !ok {
			return &NodeError{Node: node.Name, Err: fmt.Errorf("%w: %s", ErrMissingInput, field)}
		}
	}

	var lastErr error
	for attempt := 0; attempt <= e.opts.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}

		if attempt > 0 {
			e.opts.Logger.Warn("retrying node",
				"graph", e.graph.name,
				"node", node.Name,
				"attempt", attempt+1,
				"error", lastErr,
			)
		}

		updates, err := node.Run(ctx, e.state)
		if err != nil {
			lastErr = err
			continue
		}

		for field := range updates {
			if !slices.Contains(node.Writes, field) {
				return &NodeError{Node: node.Name, Err: fmt.Errorf("%w: %s", ErrUndeclaredWrite, field)}
			}
		}
		for _, field := range node.Writes {
			if _, ok := updates[field]; !ok {
				return &NodeError{Node: node.Name, Err: fmt.Errorf("%w: %s", ErrMissingOutput, field)}
			}
		}

		if err := e.state.apply(updates); err != nil {
			return &NodeError{Node: node.Name, Err: err}
		}

		e.opts.Logger.Info("node completed",
			"graph", e.graph.name,
			"node", node.Name,
			"attempt", attempt+1,
		)
		return nil
	}

	return &NodeError{Node: node.Name, Err: lastErr}
}

// fail records the terminal failure, converting a deadline expiry into the
// workflow timeout error. Parent cancellation passes through unchanged.
func (e *Execution) fail(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w after %v: %w", ErrWorkflowTimeout, e.opts.Timeout, err)
	}

	node := ""
	var nodeErr *NodeError
	if errors.As(err, &nodeErr) {
		node = nodeErr.Node
	}

	e.mu.Lock()
	e.status = StatusNodeFailed
	e.running = nil
	e.failed = node
	e.failure = err
	e.mu.Unlock()

	e.opts.Logger.Error("workflow failed",
		"graph", e.graph.name,
		"node", node,
		"error", err,
	)
	return err
}
