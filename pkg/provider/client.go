package provider

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// System defines the public contract for model invocation. Enabled providers
// are tried in priority order; each provider receives the full retry budget
// before the client falls over to the next one.
type System interface {
	// Invoke sends the request to each enabled provider in priority order and
	// returns the first accepted response.
	Invoke(ctx context.Context, req Request) (Result, error)
	// Providers returns the enabled provider names in invocation order.
	Providers() []string
}

type client struct {
	transports []Transport
	retry      RetryConfig
	logger     *slog.Logger
}

// New creates a model client from the enabled providers in cfg, ordered by
// ascending priority rank. Disabled providers are never constructed.
func New(cfg *ProvidersConfig, retry *RetryConfig, logger *slog.Logger) System {
	type ranked struct {
		transport Transport
		priority  int
	}

	var ordered []ranked
	if cfg.Gateway.Enabled {
		ordered = append(ordered, ranked{newGateway(cfg.Gateway), cfg.Gateway.Priority})
	}
	if cfg.OpenAI.Enabled {
		ordered = append(ordered, ranked{newOpenAI(cfg.OpenAI), cfg.OpenAI.Priority})
	}

	slices.SortStableFunc(ordered, func(a, b ranked) int {
		return a.priority - b.priority
	})

	transports := make([]Transport, len(ordered))
	for i, r := range ordered {
		transports[i] = r.transport
	}

	return NewWithTransports(transports, retry, logger)
}

// NewWithTransports creates a model client over an explicit transport chain.
// Transports are tried in slice order.
func NewWithTransports(transports []Transport, retry *RetryConfig, logger *slog.Logger) System {
	return &client{
		transports: transports,
		retry:      *retry,
		logger:     logger.With("system", "provider"),
	}
}

func (c *client) Providers() []string {
	names := make([]string, len(c.transports))
	for i, t := range c.transports {
		names[i] = t.Name()
	}
	return names
}

func (c *client) Invoke(ctx context.Context, req Request) (Result, error) {
	if len(c.transports) == 0 {
		return Result{}, ErrNoProviderConfigured
	}

	start := time.Now()
	attempts := 0
	var failures []*AttemptError

	for _, transport := range c.transports {
		text, attemptFailures := c.attempt(ctx, transport, req, &attempts)
		if attemptFailures == nil {
			return Result{
				Text:     text,
				Provider: transport.Name(),
				Model:    transport.Model(),
				Elapsed:  time.Since(start),
				Attempts: attempts,
			}, nil
		}

		failures = append(failures, attemptFailures...)

		if ctx.Err() != nil {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("invocation aborted: %w", err)
	}

	return Result{}, &ExhaustedError{Attempts: failures}
}

// attempt runs the retry loop for a single provider. It returns the accepted
// response text, or the per-attempt failures once the provider's budget is
// spent or the context is cancelled.
func (c *client) attempt(ctx context.Context, transport Transport, req Request, attempts *int) (string, []*AttemptError) {
	var failures []*AttemptError
	backoff := c.retry.InitialBackoffDuration()

	for attempt := 1; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, backoff); err != nil {
				failures = append(failures, &AttemptError{
					Provider: transport.Name(),
					Attempt:  attempt,
					Err:      err,
				})
				return "", failures
			}
			backoff = nextBackoff(backoff, c.retry.BackoffFactor, c.retry.MaxBackoffDuration())
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.retry.AttemptTimeoutDuration())
		started := time.Now()
		text, err := transport.Invoke(attemptCtx, req)
		cancel()

		elapsed := time.Since(started)
		*attempts++

		if err == nil && strings.TrimSpace(text) == "" {
			err = ErrEmptyResponse
		}
		if err == nil && req.Validate != nil {
			if verr := req.Validate(text); verr != nil {
				err = fmt.Errorf("response rejected: %w", verr)
			}
		}

		if err == nil {
			c.logger.Info("provider attempt succeeded",
				"provider", transport.Name(),
				"attempt", attempt,
				"elapsed", elapsed,
			)
			return text, nil
		}

		c.logger.Warn("provider attempt failed",
			"provider", transport.Name(),
			"attempt", attempt,
			"elapsed", elapsed,
			"error", err,
		)

		failures = append(failures, &AttemptError{
			Provider: transport.Name(),
			Attempt:  attempt,
			Err:      err,
		})

		if ctx.Err() != nil {
			return "", failures
		}
	}

	return "", failures
}

// sleep waits for the backoff delay, returning early when the context is
// cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// nextBackoff grows the delay by factor, capped at limit. The resulting
// sequence never decreases.
func nextBackoff(current time.Duration, factor float64, limit time.Duration) time.Duration {
	next := time.Duration(float64(current) * factor)
	if next < current {
		next = current
	}
	if next > limit {
		next = limit
	}
	return next
}
