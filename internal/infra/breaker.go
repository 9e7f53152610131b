package infra

import (
	"errors"
	"sync"
	"time"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Closed → Open → Half-Open, in front of optional dependencies such as the
// part cache.

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen is returned by Execute while the breaker is open.
var ErrBreakerOpen = errors.New("circuit breaker is open")

type BreakerConfig struct {
	FailureThreshold int           // consecutive failures that trip the breaker
	OpenTimeout      time.Duration // time spent open before a probe is let through
}

// Breaker is safe for concurrent use.
type Breaker struct {
	mu       sync.Mutex
	name     string
	cfg      BreakerConfig
	state    BreakerState
	failures int
	openedAt time.Time
	now      func() time.Time
	onChange func(name string, from, to BreakerState)
}

func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	return &Breaker{name: name, cfg: cfg, now: time.Now}
}

// OnStateChange registers fn to be called (under the breaker's lock) on
// every transition.
func (b *Breaker) OnStateChange(fn func(name string, from, to BreakerState)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// Execute runs fn unless the breaker is open. Only one probe runs while
// half-open; concurrent callers get ErrBreakerOpen until it settles.
func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	switch b.current() {
	case BreakerOpen:
		b.mu.Unlock()
		return ErrBreakerOpen
	case BreakerHalfOpen:
		// Claim the probe by re-arming the open window.
		b.openedAt = b.now()
		b.set(BreakerOpen)
	}
	probing := b.state == BreakerOpen
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		if probing || b.failures >= b.cfg.FailureThreshold {
			b.openedAt = b.now()
			b.set(BreakerOpen)
		}
		return err
	}
	b.failures = 0
	b.set(BreakerClosed)
	return nil
}

// current must be called with mu held.
func (b *Breaker) current() BreakerState {
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		b.set(BreakerHalfOpen)
	}
	return b.state
}

func (b *Breaker) set(to BreakerState) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	if b.onChange != nil {
		b.onChange(b.name, from, to)
	}
}
