// Package provider implements the model invocation layer: a priority-ordered
// client over one or more language model providers with bounded per-provider
// retries, per-attempt timeouts, and fallback.
package provider

import (
	"context"
	"time"
)

// Request carries one model invocation.
type Request struct {
	// Role frames how the model should act and is sent as the system message.
	Role string
	// Input is the composed prompt, sent as the user message.
	Input string
	// MaxTokens overrides the provider's configured limit when positive.
	MaxTokens int
	// Validate, when set, runs against each response before it is accepted.
	// A validation failure is retried like a transport failure.
	Validate func(text string) error
}

// Result is the accepted outcome of an invocation.
type Result struct {
	Text     string
	Provider string
	Model    string
	Elapsed  time.Duration
	// Attempts counts every attempt made across all providers, including the
	// successful one.
	Attempts int
}

// Transport issues a single attempt against one provider endpoint.
type Transport interface {
	// Name identifies the provider in logs and failure reports.
	Name() string
	// Model returns the configured model identifier.
	Model() string
	// Invoke sends the request and returns the raw response text.
	Invoke(ctx context.Context, req Request) (string, error)
}
