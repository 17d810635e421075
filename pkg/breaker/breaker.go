// Package breaker implements a per-target circuit breaker. One breaker guards
// one upstream target; breakers are never shared across targets.
package breaker

import (
	"log/slog"
	"sync"
	"time"
)

// State of the breaker state machine.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

const (
	// DefaultFailureThreshold is the consecutive-failure count that trips
	// the breaker.
	DefaultFailureThreshold = 3
	// DefaultResetTimeout is the cooldown before a half-open probe.
	DefaultResetTimeout = 60 * time.Second
)

// Breaker trips open after N consecutive failures, rejects requests for a
// cooldown period, then lets exactly one probe through half-open. All
// mutations are serialized by a single mutex.
type Breaker struct {
	name             string
	failureThreshold int
	resetTimeout     time.Duration
	logger           *slog.Logger
	now              func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold overrides the consecutive-failure trip count.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithResetTimeout overrides the open-state cooldown.
func WithResetTimeout(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.resetTimeout = d
		}
	}
}

// WithClock injects a clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

// New creates a closed breaker for one upstream target.
func New(name string, logger *slog.Logger, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: DefaultFailureThreshold,
		resetTimeout:     DefaultResetTimeout,
		logger:           logger,
		now:              time.Now,
		state:            Closed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Allow reports whether a request may be issued right now. While open it
// returns false until the cooldown elapses, then admits a single half-open
// probe; concurrent callers during the probe are rejected.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return true
	case Open:
		if b.now().Sub(b.openedAt) < b.resetTimeout {
			b.logger.Debug("breaker rejecting request", "target", b.name, "state", b.state)
			return false
		}
		b.state = HalfOpen
		b.probing = true
		b.logger.Info("breaker moving to half-open", "target", b.name)
		return true
	case HalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
	return true
}

// Success records a successful request and closes the breaker.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Closed {
		b.logger.Info("breaker closed", "target", b.name, "from", b.state)
	}
	b.state = Closed
	b.failures = 0
	b.probing = false
}

// Failure records a failed request. In half-open it re-opens immediately;
// in closed it trips once the consecutive-failure threshold is reached.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.state == HalfOpen {
		b.state = Open
		b.openedAt = b.now()
		b.probing = false
		b.logger.Warn("breaker re-opened after failed probe", "target", b.name)
		return
	}
	if b.failures >= b.failureThreshold {
		b.state = Open
		b.openedAt = b.now()
		b.logger.Warn("breaker opened", "target", b.name, "failures", b.failures)
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
