package graph

import (
	"fmt"
	"slices"
	"sync"
)

// View exposes read-only access to state fields during node execution.
type View interface {
	Get(field string) (any, bool)
	GetString(field string) (string, bool)
}

// State is the shared record of field values for one run. The executor owns
// the canonical instance; nodes read through a View and their updates land
// only through the executor's atomic apply.
type State struct {
	mu     sync.RWMutex
	fields map[string]any
}

// NewState creates a state populated with the given seed fields.
func NewState(seed map[string]any) *State {
	fields := make(map[string]any, len(seed))
	for k, v := range seed {
		fields[k] = v
	}
	return &State{fields: fields}
}

// Get returns the value of a field.
func (s *State) Get(field string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.fields[field]
	return v, ok
}

// GetString returns the value of a field as a string.
func (s *State) GetString(field string) (string, bool) {
	v, ok := s.Get(field)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Fields returns the sorted names of all populated fields.
func (s *State) Fields() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.fields))
	for k := range s.fields {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Snapshot returns an independent copy of all populated fields.
func (s *State) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}

// apply commits a node's updates as a single transition. Either every update
// lands or none does; a populated field is never overwritten.
func (s *State) apply(updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for field := range updates {
		if _, exists := s.fields[field]; exists {
			return fmt.Errorf("%w: %s", ErrFieldOverwrite, field)
		}
	}
	for field, value := range updates {
		s.fields[field] = value
	}
	return nil
}
