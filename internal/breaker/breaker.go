// Package breaker short-circuits calls to a shared dependency that keeps
// failing.  The SSH dialer puts its tunnel handshake behind a Breaker so
// that a dead jump host fails every queued session immediately instead
// of being re-dialled once per target.
package breaker

import (
	"fmt"
	"sync"
	"time"

	ircerr "ircnames/internal/errors"
)

// State is the breaker's operational state.
type State int

const (
	// StateClosed passes calls through.
	StateClosed State = iota
	// StateOpen rejects calls until the cooldown elapses.
	StateOpen
	// StateHalfOpen lets one probe through after the cooldown.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config configures a [Breaker].
type Config struct {
	// MaxFailures is the number of consecutive failures that open the
	// breaker (default 1).
	MaxFailures int
	// Cooldown is how long the breaker stays open before a probe is
	// allowed (default 30s).
	Cooldown time.Duration
	// OnStateChange runs under the lock on every transition.
	OnStateChange func(from, to State)
	// Now overrides time.Now in tests.
	Now func() time.Time
}

// Breaker tracks consecutive failures of one dependency.
type Breaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	lastErr     error
	openedAt    time.Time
	probing     bool
	maxFailures int
	cooldown    time.Duration
	onChange    func(from, to State)
	now         func() time.Time
}

// New creates a closed breaker.  A nil cfg uses the defaults.
func New(cfg *Config) *Breaker {
	if cfg == nil {
		cfg = &Config{}
	}
	b := &Breaker{
		maxFailures: cfg.MaxFailures,
		cooldown:    cfg.Cooldown,
		onChange:    cfg.OnStateChange,
		now:         cfg.Now,
	}
	if b.maxFailures <= 0 {
		b.maxFailures = 1
	}
	if b.cooldown <= 0 {
		b.cooldown = 30 * time.Second
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Do runs fn unless the breaker is open.  A rejected call returns an
// error wrapping [ircerr.ErrCircuitOpen] and the last failure.
func (b *Breaker) Do(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures returns the consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// ── internal ─────────────────────────────────────────────────────────

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		wait := b.cooldown - b.now().Sub(b.openedAt)
		if wait > 0 {
			return fmt.Errorf("%w after %d failure(s), next attempt in %v: %v",
				ircerr.ErrCircuitOpen, b.failures, wait.Truncate(time.Millisecond), b.lastErr)
		}
		b.transition(StateHalfOpen)
		b.probing = true
		return nil
	case StateHalfOpen:
		if b.probing {
			return fmt.Errorf("%w: probe in progress: %v", ircerr.ErrCircuitOpen, b.lastErr)
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probing = false
	if err == nil {
		b.failures = 0
		b.lastErr = nil
		b.transition(StateClosed)
		return
	}
	b.failures++
	b.lastErr = err
	if b.state == StateHalfOpen || b.failures >= b.maxFailures {
		b.openedAt = b.now()
		b.transition(StateOpen)
	}
}

func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.onChange != nil {
		b.onChange(from, to)
	}
}
