// Package wait polls a condition until it yields a truthy value.
//
// It is what page-object workflows use to sit on a page until an
// asynchronously updated field (a power state, a retirement state) reaches
// the expected value, refreshing the page between polls.
package wait

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
)

// Config holds poll configuration.
type Config struct {
	Timeout      time.Duration
	Delay        time.Duration
	FailFunc     func() error
	Message      string
	HandleErrors bool
	Logger       logr.Logger
}

// Option is a functional option for poll configuration.
type Option func(*Config)

// WithTimeout sets the overall time budget.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithDelay sets the pause between polls.
func WithDelay(d time.Duration) Option {
	return func(c *Config) {
		c.Delay = d
	}
}

// WithFailFunc sets the refresh action run before every re-poll.
func WithFailFunc(fn func() error) Option {
	return func(c *Config) {
		c.FailFunc = fn
	}
}

// WithMessage labels the wait in logs and in TimedOutError.
func WithMessage(msg string) Option {
	return func(c *Config) {
		c.Message = msg
	}
}

// WithHandleErrors makes predicate errors count as failed polls instead of
// ending the wait.
func WithHandleErrors() Option {
	return func(c *Config) {
		c.HandleErrors = true
	}
}

// WithLogger sets the logger used for per-poll debug output.
func WithLogger(log logr.Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

// TimedOutError is returned when the budget elapsed without a truthy value.
type TimedOutError struct {
	Message   string
	LastValue any
	LastErr   error
	Elapsed   time.Duration
	Polls     int
}

func (e *TimedOutError) Error() string {
	msg := fmt.Sprintf("wait: %q timed out after %s (%d polls, last value %v)", e.Message, e.Elapsed.Round(time.Millisecond), e.Polls, e.LastValue)
	if e.LastErr != nil {
		msg += fmt.Sprintf(", last error: %v", e.LastErr)
	}
	return msg
}

func (e *TimedOutError) Unwrap() error {
	return e.LastErr
}

// For evaluates predicate until it returns a non-zero value, which is then
// returned. Between polls it sleeps Delay and calls FailFunc. Once Timeout
// has elapsed after a failed poll it returns a *TimedOutError.
func For[T comparable](ctx context.Context, predicate func() (T, error), opts ...Option) (T, error) {
	cfg := &Config{
		Timeout: 2 * time.Minute,
		Delay:   time.Second,
		Message: "condition",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	log := cfg.Logger.WithValues("wait", cfg.Message)

	var zero, last T
	var lastErr error
	start := time.Now()

	for polls := 1; ; polls++ {
		value, err := predicate()
		switch {
		case err != nil && !cfg.HandleErrors:
			return zero, fmt.Errorf("wait: %q: %w", cfg.Message, err)
		case err != nil:
			lastErr = err
			log.V(1).Info("poll errored", "poll", polls, "error", err.Error())
		case value != zero:
			log.V(1).Info("condition met", "poll", polls, "elapsed", time.Since(start))
			return value, nil
		default:
			last, lastErr = value, nil
			log.V(1).Info("condition not met", "poll", polls, "value", value)
		}

		elapsed := time.Since(start)
		if elapsed >= cfg.Timeout {
			return zero, &TimedOutError{Message: cfg.Message, LastValue: last, LastErr: lastErr, Elapsed: elapsed, Polls: polls}
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("wait: %q cancelled after %d polls: %w", cfg.Message, polls, ctx.Err())
		case <-time.After(cfg.Delay):
		}

		if cfg.FailFunc != nil {
			if err := cfg.FailFunc(); err != nil {
				return zero, fmt.Errorf("wait: %q fail func: %w", cfg.Message, err)
			}
		}
	}
}

// Until is For on a bool predicate that cannot fail.
func Until(ctx context.Context, predicate func() bool, opts ...Option) error {
	_, err := For(ctx, func() (bool, error) { return predicate(), nil }, opts...)
	return err
}
