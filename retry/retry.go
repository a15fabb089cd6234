package retry

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"

	"tagus-watch/config"
)

// Policy retries an operation a bounded number of times with a fixed delay
// between attempts. Only transient I/O failures are retried; anything else
// propagates immediately.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// FromConfig builds the policy from the retry config section.
func FromConfig(cfg config.RetryConfig) Policy {
	return Policy{
		MaxAttempts: cfg.MaxAttempts,
		Delay:       time.Duration(cfg.DelaySeconds) * time.Second,
	}
}

// Do runs op, retrying transient failures up to MaxAttempts total attempts.
// The last error is returned after the final attempt.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		if attempt == attempts {
			return err
		}
		config.WarnWithFields("transient failure, retrying", config.Fields{
			"attempt": attempt,
			"delay":   p.Delay.String(),
			"error":   err.Error(),
		})
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

type transientError struct{ err error }

func (t *transientError) Error() string { return t.err.Error() }
func (t *transientError) Unwrap() error { return t.err }

// Transient marks err as retryable regardless of its underlying type, used
// for failures like HTTP 5xx responses that carry no net error.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err belongs to the network/timeout class of
// failures worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var marked *transientError
	if errors.As(err, &marked) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
