package graph

import "context"

// Handler executes one node step against a read-only view of the run state
// and returns the fields the node writes.
type Handler func(ctx context.Context, view View) (map[string]any, error)

// Node declares one workflow step: its identity, the fields it reads, the
// fields it writes, and the handler that produces them. Ordering between
// nodes is derived entirely from the declared field sets.
type Node struct {
	Name   string
	Reads  []string
	Writes []string
	Run    Handler
}
