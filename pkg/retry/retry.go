package retry

import (
	"context"
	"time"
)

// Backoff computes the delay before the next attempt.
type Backoff interface {
	Next(attempt int) time.Duration
}

// ExponentialBackoff doubles the delay after each attempt, capped at Max.
type ExponentialBackoff struct {
	Base time.Duration
	Max  time.Duration
}

// Next returns the delay after the given attempt (1-based).
func (b ExponentialBackoff) Next(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := b.Base
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	delay := base << (attempt - 1)
	if delay <= 0 || (b.Max > 0 && delay > b.Max) {
		return b.Max
	}
	return delay
}

// Policy runs an operation up to MaxAttempts times.
type Policy struct {
	MaxAttempts int
	Backoff     Backoff
}

// DefaultPolicy makes three attempts with a short exponential backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff{Base: 250 * time.Millisecond, Max: 2 * time.Second},
	}
}

// Do calls fn until it succeeds, until retryable reports false for its
// error, or until attempts run out. The last error is returned. Waiting
// stops early when ctx is done.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error, retryable func(error) bool) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt == attempts || retryable == nil || !retryable(err) {
			return err
		}
		if p.Backoff == nil {
			continue
		}
		timer := time.NewTimer(p.Backoff.Next(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}
