package run

import (
	"sort"
	"sync"
	"time"
)

// Timer is a handle to a scheduled callback.
// Stop is idempotent and never waits for a callback already in flight.
type Timer interface {
	Stop()
}

// Scheduler creates periodic and one-shot callbacks.
// Callbacks may run on any goroutine.
type Scheduler interface {
	// Every calls fn every d until the returned timer is stopped.
	Every(d time.Duration, fn func()) Timer

	// After calls fn once after d unless the returned timer is stopped first.
	After(d time.Duration, fn func()) Timer
}

// WallScheduler runs callbacks in real time.
type WallScheduler struct{}

// Every starts a ticker goroutine.
func (WallScheduler) Every(d time.Duration, fn func()) Timer {
	t := &wallTicker{ticker: time.NewTicker(d), done: make(chan struct{})}
	go t.loop(fn)
	return t
}

// After wraps time.AfterFunc.
func (WallScheduler) After(d time.Duration, fn func()) Timer {
	return wallTimer{time.AfterFunc(d, fn)}
}

type wallTicker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *wallTicker) loop(fn func()) {
	defer t.ticker.Stop()
	for {
		select {
		case <-t.ticker.C:
			fn()
		case <-t.done:
			return
		}
	}
}

func (t *wallTicker) Stop() {
	t.once.Do(func() { close(t.done) })
}

type wallTimer struct {
	t *time.Timer
}

func (w wallTimer) Stop() {
	w.t.Stop()
}

// ManualScheduler is a virtual clock. Nothing fires until Advance or
// RunNext is called, and callbacks run on the caller's goroutine.
// Timers due at the same instant fire in the order they were scheduled.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	s      *ManualScheduler
	id     uint64
	due    time.Duration
	period time.Duration // zero for one-shot timers
	fn     func()
	active bool
}

// NewManualScheduler returns a virtual clock at time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Every schedules fn at now+d, now+2d, ...
func (s *ManualScheduler) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		d = time.Nanosecond
	}
	return s.add(d, d, fn)
}

// After schedules fn once at now+d.
func (s *ManualScheduler) After(d time.Duration, fn func()) Timer {
	return s.add(d, 0, fn)
}

func (s *ManualScheduler) add(d, period time.Duration, fn func()) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &manualTimer{s: s, id: s.seq, due: s.now + d, period: period, fn: fn, active: true}
	s.timers = append(s.timers, t)
	return t
}

func (t *manualTimer) Stop() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	t.active = false
	t.s.prune()
}

// prune drops stopped timers. Caller holds mu.
func (s *ManualScheduler) prune() {
	kept := s.timers[:0]
	for _, t := range s.timers {
		if t.active {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = kept
}

// next returns the earliest active timer due at or before limit.
// Caller holds mu.
func (s *ManualScheduler) next(limit time.Duration) *manualTimer {
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].due != s.timers[j].due {
			return s.timers[i].due < s.timers[j].due
		}
		return s.timers[i].id < s.timers[j].id
	})
	for _, t := range s.timers {
		if t.active && t.due <= limit {
			return t
		}
	}
	return nil
}

// fire moves the clock to t.due, reschedules or retires t, and returns
// the callback to run. Caller holds mu.
func (s *ManualScheduler) fire(t *manualTimer) func() {
	s.now = t.due
	if t.period > 0 {
		s.seq++
		t.id = s.seq
		t.due += t.period
	} else {
		t.active = false
		s.prune()
	}
	return t.fn
}

// Advance moves the clock forward by d, firing every timer that falls
// due on the way. Callbacks may schedule or stop timers.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	limit := s.now + d
	s.mu.Unlock()

	fired := 0
	for {
		s.mu.Lock()
		t := s.next(limit)
		if t == nil {
			s.now = limit
			s.mu.Unlock()
			return fired
		}
		fn := s.fire(t)
		s.mu.Unlock()

		fn()
		fired++
	}
}

// RunNext jumps the clock to the earliest pending timer and fires it.
// It reports false when nothing is scheduled.
func (s *ManualScheduler) RunNext() bool {
	s.mu.Lock()
	t := s.next(1<<63 - 1)
	if t == nil {
		s.mu.Unlock()
		return false
	}
	fn := s.fire(t)
	s.mu.Unlock()

	fn()
	return true
}

// Now returns the virtual time elapsed since creation.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of active timers.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
