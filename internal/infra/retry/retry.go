// Package retry wraps data-source calls with bounded exponential-backoff
// retry, distinguishing retryable from terminal failures.
package retry

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"parishfinder/internal/errors"
)

// Policy is a retry budget: MaxRetries+1 total attempts, with the delay
// before attempt n+1 being InitialDelay*2^n plus 0-30% uniform jitter.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
}

// statusCoder is implemented by errors carrying an upstream HTTP status.
type statusCoder interface {
	StatusCode() int
}

// Controller runs operations under a retry policy. The sleep and jitter
// functions are injectable for tests; zero values use real time and
// math/rand.
type Controller struct {
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() float64 // uniform in [0,1)
}

// Option configures a Controller.
type Option func(*Controller)

// WithSleep replaces the context-aware sleep, used by tests to record
// delays instead of waiting.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Controller) { c.sleep = sleep }
}

// WithJitter replaces the jitter source.
func WithJitter(jitter func() float64) Option {
	return func(c *Controller) { c.jitter = jitter }
}

// New creates a Controller.
func New(logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		logger: logger,
		sleep:  sleepContext,
		jitter: rand.Float64,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Do invokes fn until it succeeds or the policy is exhausted, returning
// the last error. Errors carrying a status in [400,500) fail immediately:
// retrying a malformed or out-of-range request cannot change the outcome.
func Do[T any](ctx context.Context, c *Controller, policy Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == policy.MaxRetries {
			break
		}

		if isClientError(err) {
			return zero, lastErr
		}

		delay := policy.InitialDelay << attempt
		wait := delay + time.Duration(c.jitter()*0.3*float64(delay))

		c.logger.Debug("retrying after failure",
			slog.Int("attempt", attempt+1),
			slog.Int("max_retries", policy.MaxRetries),
			slog.Duration("delay", wait),
			slog.String("error", err.Error()),
		)

		if err := c.sleep(ctx, wait); err != nil {
			return zero, errors.Wrap(err, "retry wait interrupted")
		}
	}

	return zero, lastErr
}

func isClientError(err error) bool {
	var coded statusCoder
	if errors.As(err, &coded) {
		status := coded.StatusCode()

		return status >= 400 && status < 500
	}

	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
