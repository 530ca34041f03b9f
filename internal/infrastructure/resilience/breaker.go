package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrCircuitOpen is returned without running the call while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrTooManyRequests is returned when a half-open breaker has used up its trial calls.
	ErrTooManyRequests = errors.New("too many requests")
)

// State of a Breaker.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

var stateNames = [...]string{
	StateClosed:   "closed",
	StateHalfOpen: "half-open",
	StateOpen:     "open",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Settings tunes a Breaker. Zero fields take the defaults applied by New.
type Settings struct {
	// MaxRequests bounds trial calls while half-open; that many consecutive
	// successes close the breaker. Default 1.
	MaxRequests uint32
	// Interval clears the counts periodically while closed. Default 60s.
	Interval time.Duration
	// Timeout is how long the breaker stays open. Default 60s.
	Timeout time.Duration
	// ReadyToTrip is consulted after each failure while closed. Default:
	// more than five consecutive failures.
	ReadyToTrip func(counts Counts) bool
	// OnStateChange observes every transition.
	OnStateChange func(name string, from State, to State)
	// IsSuccessful classifies call errors. Default err == nil.
	IsSuccessful func(err error) bool
}

// Counts are the call statistics of the current window. Transitions and the
// closed-state Interval reset them.
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func (c *Counts) record(ok bool) {
	if ok {
		c.TotalSuccesses++
		c.ConsecutiveSuccesses++
		c.ConsecutiveFailures = 0
		return
	}
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// Breaker is a circuit breaker safe for concurrent use.
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu     sync.Mutex
	state  State
	counts Counts
	// window increments whenever counts are reset; results from calls
	// admitted in an earlier window are dropped.
	window   uint64
	deadline time.Time
}

// New returns a closed breaker.
func New(name string, settings Settings) *Breaker {
	if settings.MaxRequests == 0 {
		settings.MaxRequests = 1
	}
	if settings.Interval <= 0 {
		settings.Interval = time.Minute
	}
	if settings.Timeout <= 0 {
		settings.Timeout = time.Minute
	}
	if settings.ReadyToTrip == nil {
		settings.ReadyToTrip = func(c Counts) bool { return c.ConsecutiveFailures > 5 }
	}
	if settings.IsSuccessful == nil {
		settings.IsSuccessful = func(err error) bool { return err == nil }
	}

	b := &Breaker{name: name, settings: settings, now: time.Now}
	b.deadline = b.now().Add(settings.Interval)
	return b
}

func (b *Breaker) Name() string {
	return b.name
}

// State reports the state, applying any pending timeout first.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance(b.now())
	return b.state
}

// Counts returns a snapshot of the current window.
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.counts
}

// Call runs req if b accepts it. A panic in req counts as a failure and is
// re-raised.
func Call[T any](b *Breaker, req func() (T, error)) (result T, err error) {
	window, err := b.admit()
	if err != nil {
		return result, err
	}

	defer func() {
		if p := recover(); p != nil {
			b.settle(window, false)
			panic(p)
		}
	}()

	result, err = req()
	b.settle(window, b.settings.IsSuccessful(err))
	return result, err
}

func (b *Breaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance(b.now())
	switch {
	case b.state == StateOpen:
		return b.window, ErrCircuitOpen
	case b.state == StateHalfOpen && b.counts.Requests >= b.settings.MaxRequests:
		return b.window, ErrTooManyRequests
	}
	b.counts.Requests++
	return b.window, nil
}

func (b *Breaker) settle(window uint64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.advance(now)
	if window != b.window {
		return
	}

	b.counts.record(ok)
	switch {
	case b.state == StateHalfOpen && !ok:
		b.transition(StateOpen, now)
	case b.state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.settings.MaxRequests:
		b.transition(StateClosed, now)
	case b.state == StateClosed && !ok && b.settings.ReadyToTrip(b.counts):
		b.transition(StateOpen, now)
	}
}

// advance applies time-driven changes: the closed-state count reset and the
// open-to-half-open timeout.
func (b *Breaker) advance(now time.Time) {
	switch b.state {
	case StateClosed:
		if now.After(b.deadline) {
			b.reset()
			b.deadline = now.Add(b.settings.Interval)
		}
	case StateOpen:
		if now.After(b.deadline) {
			b.transition(StateHalfOpen, now)
		}
	}
}

func (b *Breaker) transition(to State, now time.Time) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.reset()

	switch to {
	case StateClosed:
		b.deadline = now.Add(b.settings.Interval)
	case StateOpen:
		b.deadline = now.Add(b.settings.Timeout)
	default:
		b.deadline = time.Time{}
	}

	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}

func (b *Breaker) reset() {
	b.counts = Counts{}
	b.window++
}
