// Package graph executes a workflow of declared nodes over shared state with
// statically resolved ordering, optional level parallelism, a bounded node
// retry budget, and an overall wall-clock limit.
package graph

import (
	"fmt"
	"slices"
)

// Graph holds a validated node set with a statically resolved execution
// order. A node that reads a field depends on the node that writes it; fields
// no node writes must arrive in the seed state.
type Graph struct {
	name   string
	nodes  []Node
	levels [][]int
}

// New validates the node set and resolves its execution levels. Nodes within
// one level have no dependency on each other and may run concurrently.
func New(name string, nodes ...Node) (*Graph, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("graph %s: no nodes", name)
	}

	writers := make(map[string]int, len(nodes))
	names := make(map[string]struct{}, len(nodes))

	for i, n := range nodes {
		if n.Name == "" {
			return nil, fmt.Errorf("graph %s: node %d has no name", name, i)
		}
		if n.Run == nil {
			return nil, fmt.Errorf("graph %s: node %s has no handler", name, n.Name)
		}
		if len(n.Writes) == 0 {
			return nil, fmt.Errorf("graph %s: node %s declares no output fields", name, n.Name)
		}
		if _, dup := names[n.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, n.Name)
		}
		names[n.Name] = struct{}{}

		for _, field := range n.Writes {
			if prev, dup := writers[field]; dup {
				return nil, fmt.Errorf("%w: %s written by %s and %s",
					ErrDuplicateWriter, field, nodes[prev].Name, n.Name)
			}
			writers[field] = i
		}
	}

	levels, err := resolveLevels(name, nodes, writers)
	if err != nil {
		return nil, err
	}

	return &Graph{name: name, nodes: nodes, levels: levels}, nil
}

// Name returns the graph's name.
func (g *Graph) Name() string {
	return g.name
}

// Levels returns node names grouped by execution level, in run order.
func (g *Graph) Levels() [][]string {
	out := make([][]string, len(g.levels))
	for i, level := range g.levels {
		out[i] = make([]string, len(level))
		for j, idx := range level {
			out[i][j] = g.nodes[idx].Name
		}
	}
	return out
}

// resolveLevels orders nodes topologically, grouping independent nodes into
// shared levels. Fields read but never written resolve from the seed state at
// run time.
func resolveLevels(name string, nodes []Node, writers map[string]int) ([][]int, error) {
	indegree := make([]int, len(nodes))
	dependents := make([][]int, len(nodes))

	for i, n := range nodes {
		seen := make(map[int]struct{})
		for _, field := range n.Reads {
			w, ok := writers[field]
			if !ok || w == i {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			dependents[w] = append(dependents[w], i)
			indegree[i]++
		}
	}

	var current []int
	for i := range nodes {
		if indegree[i] == 0 {
			current = append(current, i)
		}
	}

	var levels [][]int
	resolved := 0

	for len(current) > 0 {
		slices.Sort(current)
		levels = append(levels, current)
		resolved += len(current)

		var next []int
		for _, idx := range current {
			for _, dep := range dependents[idx] {
				indegree[dep]--
				if indegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		current = next
	}

	if resolved != len(nodes) {
		return nil, fmt.Errorf("%w: graph %s", ErrCycle, name)
	}

	return levels, nil
}
