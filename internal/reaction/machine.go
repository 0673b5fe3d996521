// Package reaction implements the pre-quiz reaction-time challenge.
//
// A Machine walks through intro -> countdown -> waiting -> ready and ends in
// success or false_start. Transitions driven by time are scheduled through a
// Clock and are cancelled whenever a user action supersedes them.
package reaction

import (
	"math/rand"
	"sync"
	"time"
)

// State is a step of the challenge.
type State string

const (
	StateIntro      State = "intro"
	StateCountdown  State = "countdown"
	StateWaiting    State = "waiting"
	StateReady      State = "ready"
	StateSuccess    State = "success"
	StateFalseStart State = "false_start"
	// StateExited means the player moved on to the quiz; the machine is inert.
	StateExited State = "exited"
)

// Config holds the tunable timings of the challenge.
type Config struct {
	Countdown int
	Tick      time.Duration
	MinDelay  time.Duration
	MaxDelay  time.Duration
}

// DefaultConfig counts down from 3 in one-second ticks and fires the stimulus
// 1.5s to 4.5s after the countdown ends.
func DefaultConfig() Config {
	return Config{
		Countdown: 3,
		Tick:      time.Second,
		MinDelay:  1500 * time.Millisecond,
		MaxDelay:  4500 * time.Millisecond,
	}
}

// Snapshot is a point-in-time view of a Machine.
type Snapshot struct {
	State     State
	Countdown int
	Attempts  int
	// Reaction is set only after a successful attempt and cleared on retry.
	Reaction *time.Duration
	Best     *time.Duration
}

// Rating returns the classification of the last reaction, if any.
func (s Snapshot) Rating() (Rating, bool) {
	if s.Reaction == nil {
		return "", false
	}
	return Rate(*s.Reaction), true
}

// Option customizes a Machine.
type Option func(*Machine)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(m *Machine) { m.clock = c }
}

// WithRand sets the source for the stimulus delay.
func WithRand(r *rand.Rand) Option {
	return func(m *Machine) { m.rnd = r }
}

// WithBest seeds the best time carried over from earlier attempts in the same session.
func WithBest(d time.Duration) Option {
	return func(m *Machine) {
		best := d
		m.best = &best
	}
}

// WithObserver registers a callback invoked after every state change. It runs
// while the machine lock is held: it must not block or call back into the Machine.
func WithObserver(f func(Snapshot)) Option {
	return func(m *Machine) { m.observer = f }
}

// Machine is the reaction timer. All methods are safe for concurrent use.
type Machine struct {
	cfg      Config
	clock    Clock
	rnd      *rand.Rand
	observer func(Snapshot)

	mu        sync.Mutex
	state     State
	countdown int
	onset     time.Time
	reaction  *time.Duration
	best      *time.Duration
	attempts  int
	closed    bool

	// pending is the single outstanding scheduled transition. gen is bumped on
	// every cancel so a callback that already left the timer queue can tell it
	// was superseded.
	pending Timer
	gen     uint64
}

// New builds a Machine in the intro state.
func New(cfg Config, opts ...Option) *Machine {
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	m := &Machine{
		cfg:       cfg,
		clock:     SystemClock{},
		state:     StateIntro,
		countdown: cfg.Countdown,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rnd == nil {
		m.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return m
}

// Start leaves the intro and begins the countdown.
func (m *Machine) Start() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.state != StateIntro {
		return false
	}
	m.reaction = nil
	m.countdown = m.cfg.Countdown
	if m.countdown > 0 {
		m.state = StateCountdown
		m.scheduleLocked(m.cfg.Tick, m.tickLocked)
	} else {
		m.enterWaitingLocked()
	}
	m.emitLocked()
	return true
}

// Press is the player's reaction. Pressing while waiting is a false start;
// pressing when ready records the reaction time. Other states ignore it.
func (m *Machine) Press() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	switch m.state {
	case StateWaiting:
		m.cancelLocked()
		m.state = StateFalseStart
		m.attempts++
	case StateReady:
		elapsed := m.clock.Now().Sub(m.onset)
		if elapsed < 0 {
			elapsed = 0
		}
		m.reaction = &elapsed
		if m.best == nil || elapsed < *m.best {
			best := elapsed
			m.best = &best
		}
		m.state = StateSuccess
		m.attempts++
	default:
		return false
	}
	m.emitLocked()
	return true
}

// Retry returns to the intro after an outcome. The best time is kept.
func (m *Machine) Retry() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || (m.state != StateSuccess && m.state != StateFalseStart) {
		return false
	}
	m.cancelLocked()
	m.state = StateIntro
	m.countdown = m.cfg.Countdown
	m.reaction = nil
	m.emitLocked()
	return true
}

// Continue leaves the challenge from any state, dropping pending timers.
func (m *Machine) Continue() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.state == StateExited {
		return false
	}
	m.cancelLocked()
	m.state = StateExited
	m.emitLocked()
	return true
}

// Close tears the machine down. Pending callbacks become no-ops and every
// later call is ignored.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.cancelLocked()
	m.closed = true
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) tickLocked() {
	m.countdown--
	if m.countdown > 0 {
		m.scheduleLocked(m.cfg.Tick, m.tickLocked)
	} else {
		m.countdown = 0
		m.enterWaitingLocked()
	}
	m.emitLocked()
}

func (m *Machine) enterWaitingLocked() {
	m.state = StateWaiting
	m.scheduleLocked(m.randomDelayLocked(), m.readyLocked)
}

func (m *Machine) readyLocked() {
	m.state = StateReady
	m.onset = m.clock.Now()
	m.emitLocked()
}

func (m *Machine) randomDelayLocked() time.Duration {
	span := int64(m.cfg.MaxDelay - m.cfg.MinDelay)
	if span <= 0 {
		return m.cfg.MinDelay
	}
	return m.cfg.MinDelay + time.Duration(m.rnd.Int63n(span+1))
}

func (m *Machine) scheduleLocked(d time.Duration, fire func()) {
	m.cancelLocked()
	gen := m.gen
	m.pending = m.clock.AfterFunc(d, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed || gen != m.gen {
			return
		}
		m.pending = nil
		fire()
	})
}

func (m *Machine) cancelLocked() {
	m.gen++
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
}

func (m *Machine) emitLocked() {
	if m.observer != nil {
		m.observer(m.snapshotLocked())
	}
}

func (m *Machine) snapshotLocked() Snapshot {
	s := Snapshot{
		State:     m.state,
		Countdown: m.countdown,
		Attempts:  m.attempts,
	}
	if m.reaction != nil {
		r := *m.reaction
		s.Reaction = &r
	}
	if m.best != nil {
		b := *m.best
		s.Best = &b
	}
	return s
}
