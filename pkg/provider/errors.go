package provider

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for model invocation.
var (
	// ErrNoProviderConfigured indicates no enabled provider is available.
	ErrNoProviderConfigured = errors.New("no provider configured")
	// ErrProviderExhausted indicates every enabled provider spent its full
	// retry budget without producing an accepted response.
	ErrProviderExhausted = errors.New("all providers exhausted")
	// ErrEmptyResponse indicates a provider returned no usable text. It is
	// retried like a transport failure.
	ErrEmptyResponse = errors.New("empty model response")
)

// AttemptError records one failed attempt against one provider.
type AttemptError struct {
	Provider string
	Attempt  int
	Err      error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s attempt %d: %v", e.Provider, e.Attempt, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

// ExhaustedError aggregates the failure reason for every attempt made while
// exhausting the enabled providers.
type ExhaustedError struct {
	Attempts []*AttemptError
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v: %s", ErrProviderExhausted, strings.Join(e.Reasons(), "; "))
}

func (e *ExhaustedError) Unwrap() error {
	return ErrProviderExhausted
}

// Reasons returns the formatted failure reason per attempt, in order.
func (e *ExhaustedError) Reasons() []string {
	reasons := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		reasons[i] = a.Error()
	}
	return reasons
}
