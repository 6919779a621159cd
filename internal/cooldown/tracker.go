package cooldown

import (
	"math"
	"sync"
	"time"

	"github.com/goliatone/go-dispenser/pkg/domain"
)

// Decision is the outcome of an eligibility check.
type Decision struct {
	Eligible  bool
	Remaining int
	RetryAt   time.Time
}

// Err returns a *domain.CooldownError for blocked decisions, nil otherwise.
func (d Decision) Err() error {
	if d.Eligible {
		return nil
	}
	return &domain.CooldownError{Remaining: d.Remaining, RetryAt: d.RetryAt}
}

// Tracker remembers the last successful issuance per user. State lives for
// the life of the process only.
type Tracker struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func NewTracker() *Tracker {
	return &Tracker{last: make(map[string]time.Time)}
}

// CheckEligible reports whether user may receive now. A cooldown of zero
// minutes disables the gate.
func (t *Tracker) CheckEligible(user string, cooldownMinutes int, now time.Time) Decision {
	if cooldownMinutes <= 0 {
		return Decision{Eligible: true}
	}

	t.mu.Lock()
	last, ok := t.last[user]
	t.mu.Unlock()
	if !ok {
		return Decision{Eligible: true}
	}

	window := time.Duration(cooldownMinutes) * time.Minute
	elapsed := now.Sub(last)
	if elapsed >= window {
		return Decision{Eligible: true}
	}
	return Decision{
		Remaining: int(math.Ceil((window - elapsed).Minutes())),
		RetryAt:   last.Add(window),
	}
}

// Record overwrites the last issuance time for user.
func (t *Tracker) Record(user string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last[user] = now
}

// Clear forgets user so the next check is eligible.
func (t *Tracker) Clear(user string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.last, user)
}

// Len reports how many users are tracked.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.last)
}
