package reaction

import (
	"math/rand"
	"sync"
	"testing"
	"time"
)

func TestCountdownWaitingReadySuccess(t *testing.T) {
	clock := newFakeClock()
	cfg := fixedDelayConfig(2 * time.Second)
	m := newTestMachine(clock, cfg)

	if !m.Start() {
		t.Fatalf("expected start from intro")
	}
	snap := m.Snapshot()
	if snap.State != StateCountdown || snap.Countdown != 3 {
		t.Fatalf("expected countdown 3, got %+v", snap)
	}

	clock.Advance(time.Second)
	if got := m.Snapshot().Countdown; got != 2 {
		t.Fatalf("expected countdown 2 after one tick, got %d", got)
	}
	clock.Advance(2 * time.Second)
	if got := m.Snapshot().State; got != StateWaiting {
		t.Fatalf("expected waiting after three ticks, got %s", got)
	}

	clock.Advance(cfg.MaxDelay)
	if got := m.Snapshot().State; got != StateReady {
		t.Fatalf("expected ready after the delay, got %s", got)
	}

	clock.Advance(250 * time.Millisecond)
	if !m.Press() {
		t.Fatalf("expected press to be accepted when ready")
	}
	snap = m.Snapshot()
	if snap.State != StateSuccess {
		t.Fatalf("expected success, got %s", snap.State)
	}
	if snap.Reaction == nil || *snap.Reaction != 250*time.Millisecond {
		t.Fatalf("expected 250ms reaction, got %v", snap.Reaction)
	}
	if rating, ok := snap.Rating(); !ok || rating != RatingVeryFast {
		t.Fatalf("expected very fast rating, got %q", rating)
	}
	if snap.Attempts != 1 {
		t.Fatalf("expected one attempt, got %d", snap.Attempts)
	}
}

func TestPressWhileWaitingIsFalseStart(t *testing.T) {
	clock := newFakeClock()
	cfg := fixedDelayConfig(time.Second)
	m := newTestMachine(clock, cfg)

	m.Start()
	clock.Advance(3 * time.Second)
	clock.Advance(999 * time.Millisecond)

	if !m.Press() {
		t.Fatalf("expected press to be handled while waiting")
	}
	if got := m.Snapshot().State; got != StateFalseStart {
		t.Fatalf("expected false start, got %s", got)
	}

	// Neither the timer queue nor a callback that escaped Stop may revive the stimulus.
	clock.Advance(10 * time.Second)
	clock.FireStopped()
	snap := m.Snapshot()
	if snap.State != StateFalseStart {
		t.Fatalf("expected false start to stick, got %s", snap.State)
	}
	if snap.Reaction != nil {
		t.Fatalf("false start must not record a reaction, got %v", *snap.Reaction)
	}
}

func TestPressAtStimulusInstantCountsAsFalseStart(t *testing.T) {
	clock := newFakeClock()
	cfg := fixedDelayConfig(time.Second)
	m := newTestMachine(clock, cfg)

	m.Start()
	clock.Advance(3 * time.Second)
	clock.Set(clock.Now().Add(time.Second)) // delay elapsed, callback not yet run
	m.Press()
	clock.Advance(0)

	if got := m.Snapshot().State; got != StateFalseStart {
		t.Fatalf("user action must win over the concurrent stimulus, got %s", got)
	}
}

func TestBestTimeKeepsMinimum(t *testing.T) {
	cases := []struct {
		name  string
		times []time.Duration
		best  time.Duration
	}{
		{"improves", []time.Duration{350 * time.Millisecond, 220 * time.Millisecond}, 220 * time.Millisecond},
		{"keeps", []time.Duration{220 * time.Millisecond, 350 * time.Millisecond}, 220 * time.Millisecond},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clock := newFakeClock()
			cfg := fixedDelayConfig(2 * time.Second)
			m := newTestMachine(clock, cfg)

			for i, rt := range tc.times {
				if i > 0 && !m.Retry() {
					t.Fatalf("retry %d rejected", i)
				}
				m.Start()
				clock.Advance(time.Duration(cfg.Countdown)*cfg.Tick + cfg.MaxDelay)
				clock.Advance(rt)
				m.Press()
			}
			snap := m.Snapshot()
			if snap.Best == nil || *snap.Best != tc.best {
				t.Fatalf("expected best %v, got %v", tc.best, snap.Best)
			}
			if snap.Attempts != len(tc.times) {
				t.Fatalf("expected %d attempts, got %d", len(tc.times), snap.Attempts)
			}
		})
	}
}

func TestRetryResetsButKeepsBest(t *testing.T) {
	clock := newFakeClock()
	cfg := testConfig()
	m := newTestMachine(clock, cfg, WithBest(300*time.Millisecond))

	m.Start()
	clock.Advance(3*time.Second + cfg.MaxDelay + 400*time.Millisecond)
	m.Press()
	if !m.Retry() {
		t.Fatalf("expected retry from success")
	}
	snap := m.Snapshot()
	if snap.State != StateIntro || snap.Countdown != 3 || snap.Reaction != nil {
		t.Fatalf("expected fresh intro, got %+v", snap)
	}
	if snap.Best == nil || *snap.Best != 300*time.Millisecond {
		t.Fatalf("expected seeded best to survive, got %v", snap.Best)
	}
}

func TestIgnoredActions(t *testing.T) {
	clock := newFakeClock()
	m := newTestMachine(clock, testConfig())

	if m.Press() {
		t.Fatalf("press in intro must be ignored")
	}
	if m.Retry() {
		t.Fatalf("retry in intro must be ignored")
	}
	m.Start()
	if m.Start() {
		t.Fatalf("second start must be ignored")
	}
	if m.Press() {
		t.Fatalf("press during countdown must be ignored")
	}
	if got := m.Snapshot().State; got != StateCountdown {
		t.Fatalf("expected countdown, got %s", got)
	}
}

func TestContinueCancelsPendingTransitions(t *testing.T) {
	clock := newFakeClock()
	m := newTestMachine(clock, testConfig())

	m.Start()
	clock.Advance(3 * time.Second)
	if !m.Continue() {
		t.Fatalf("expected continue from waiting")
	}
	clock.Advance(time.Minute)
	clock.FireStopped()
	if got := m.Snapshot().State; got != StateExited {
		t.Fatalf("expected exited, got %s", got)
	}
	if clock.Pending() != 0 {
		t.Fatalf("expected no live timers, got %d", clock.Pending())
	}
}

func TestCloseMidCountdown(t *testing.T) {
	clock := newFakeClock()
	var mu sync.Mutex
	var events []State
	m := newTestMachine(clock, testConfig(), WithObserver(func(s Snapshot) {
		mu.Lock()
		events = append(events, s.State)
		mu.Unlock()
	}))

	m.Start()
	clock.Advance(time.Second)
	m.Close()
	clock.Advance(time.Minute)
	clock.FireStopped()

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("expected only start and first tick before close, got %v", events)
	}
	if m.Start() || m.Press() || m.Continue() {
		t.Fatalf("closed machine must ignore actions")
	}
}

func TestRandomDelayWithinBounds(t *testing.T) {
	clock := newFakeClock()
	cfg := testConfig()
	m := New(cfg, WithClock(clock), WithRand(rand.New(rand.NewSource(7))))
	for i := 0; i < 200; i++ {
		d := m.randomDelayLocked()
		if d < cfg.MinDelay || d > cfg.MaxDelay {
			t.Fatalf("delay %v outside [%v, %v]", d, cfg.MinDelay, cfg.MaxDelay)
		}
	}
}

func TestRateBoundaries(t *testing.T) {
	cases := map[time.Duration]Rating{
		0:                      RatingExceptional,
		199 * time.Millisecond: RatingExceptional,
		200 * time.Millisecond: RatingVeryFast,
		299 * time.Millisecond: RatingVeryFast,
		300 * time.Millisecond: RatingFast,
		400 * time.Millisecond: RatingGood,
		499 * time.Millisecond: RatingGood,
		500 * time.Millisecond: RatingCouldBeFaster,
		2 * time.Second:        RatingCouldBeFaster,
	}
	for d, want := range cases {
		if got := Rate(d); got != want {
			t.Fatalf("Rate(%v) = %q, want %q", d, got, want)
		}
	}
}

func testConfig() Config {
	return Config{
		Countdown: 3,
		Tick:      time.Second,
		MinDelay:  1500 * time.Millisecond,
		MaxDelay:  4500 * time.Millisecond,
	}
}

func fixedDelayConfig(d time.Duration) Config {
	cfg := testConfig()
	cfg.MinDelay = d
	cfg.MaxDelay = d
	return cfg
}

func newTestMachine(clock *fakeClock, cfg Config, opts ...Option) *Machine {
	opts = append([]Option{WithClock(clock), WithRand(rand.New(rand.NewSource(1)))}, opts...)
	return New(cfg, opts...)
}

// fakeClock runs scheduled callbacks only when Advance is called.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward, firing due timers in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			if target.After(c.now) {
				c.now = target
			}
			c.mu.Unlock()
			return
		}
		next.fired = true
		if next.at.After(c.now) {
			c.now = next.at
		}
		c.mu.Unlock()
		next.f()
	}
}

// FireStopped runs callbacks of stopped timers, simulating a timer that fired
// concurrently with Stop.
func (c *fakeClock) FireStopped() {
	c.mu.Lock()
	var stale []*fakeTimer
	for _, t := range c.timers {
		if t.stopped && !t.fired {
			t.fired = true
			stale = append(stale, t)
		}
	}
	c.mu.Unlock()
	for _, t := range stale {
		t.f()
	}
}

func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
