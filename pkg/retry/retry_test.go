package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff{Base: 10 * time.Millisecond, Max: 35 * time.Millisecond}
	cases := map[int]time.Duration{0: 10 * time.Millisecond, 1: 10 * time.Millisecond, 2: 20 * time.Millisecond, 3: 35 * time.Millisecond}
	for attempt, want := range cases {
		if got := b.Next(attempt); got != want {
			t.Fatalf("attempt %d: expected %s, got %s", attempt, want, got)
		}
	}
}

var errTransient = errors.New("transient")

func TestPolicyRetriesRetryableErrors(t *testing.T) {
	p := Policy{MaxAttempts: 3, Backoff: ExponentialBackoff{Base: time.Microsecond}}
	calls := 0
	err := p.Do(context.Background(), func(int) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	}, func(err error) bool { return errors.Is(err, errTransient) })
	if err != nil || calls != 3 {
		t.Fatalf("expected success after 3 calls, got %d calls err=%v", calls, err)
	}
}

func TestPolicyStopsOnPermanentError(t *testing.T) {
	p := Policy{MaxAttempts: 5}
	calls := 0
	permanent := errors.New("permanent")
	err := p.Do(context.Background(), func(int) error {
		calls++
		return permanent
	}, func(err error) bool { return errors.Is(err, errTransient) })
	if !errors.Is(err, permanent) || calls != 1 {
		t.Fatalf("expected a single call, got %d err=%v", calls, err)
	}
}

func TestPolicyHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := Policy{MaxAttempts: 5, Backoff: ExponentialBackoff{Base: time.Hour}}
	calls := 0
	err := p.Do(ctx, func(int) error {
		calls++
		return errTransient
	}, func(error) bool { return true })
	if !errors.Is(err, errTransient) || calls != 1 {
		t.Fatalf("expected to stop after cancel, got %d calls err=%v", calls, err)
	}
}
