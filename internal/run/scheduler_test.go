package run

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManualSchedulerOrdering(t *testing.T) {
	s := NewManualScheduler()
	var order []string

	s.After(200*time.Millisecond, func() { order = append(order, "b") })
	s.After(100*time.Millisecond, func() { order = append(order, "a") })
	s.After(200*time.Millisecond, func() { order = append(order, "c") })

	if fired := s.Advance(time.Second); fired != 3 {
		t.Fatalf("Advance fired %d timers, expected 3", fired)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, expected %v", order, want)
		}
	}
	if s.Now() != time.Second {
		t.Errorf("Now() = %v, expected 1s", s.Now())
	}
}

func TestManualSchedulerEveryAndStop(t *testing.T) {
	s := NewManualScheduler()
	n := 0
	timer := s.Every(100*time.Millisecond, func() { n++ })

	s.Advance(350 * time.Millisecond)
	if n != 3 {
		t.Fatalf("fired %d times in 350ms, expected 3", n)
	}

	timer.Stop()
	timer.Stop()
	s.Advance(time.Second)
	if n != 3 {
		t.Errorf("fired after Stop: %d", n)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, expected 0", s.Pending())
	}
}

func TestManualSchedulerCallbackSchedules(t *testing.T) {
	s := NewManualScheduler()
	var at []time.Duration

	s.After(100*time.Millisecond, func() {
		at = append(at, s.Now())
		s.After(50*time.Millisecond, func() { at = append(at, s.Now()) })
	})

	s.Advance(200 * time.Millisecond)
	if len(at) != 2 || at[0] != 100*time.Millisecond || at[1] != 150*time.Millisecond {
		t.Errorf("fire times = %v, expected [100ms 150ms]", at)
	}
}

func TestManualSchedulerRunNext(t *testing.T) {
	s := NewManualScheduler()
	if s.RunNext() {
		t.Fatal("RunNext on an empty scheduler should report false")
	}

	fired := false
	s.After(time.Hour, func() { fired = true })
	if !s.RunNext() || !fired {
		t.Fatal("RunNext should fire the pending timer")
	}
	if s.Now() != time.Hour {
		t.Errorf("Now() = %v, expected 1h", s.Now())
	}
}

func TestWallSchedulerStops(t *testing.T) {
	var n atomic.Int32
	timer := WallScheduler{}.Every(time.Millisecond, func() { n.Add(1) })
	time.Sleep(20 * time.Millisecond)
	timer.Stop()

	time.Sleep(5 * time.Millisecond)
	stopped := n.Load()
	time.Sleep(20 * time.Millisecond)
	if n.Load() != stopped {
		t.Error("ticker kept firing after Stop")
	}

	var once atomic.Bool
	after := WallScheduler{}.After(50*time.Millisecond, func() { once.Store(true) })
	after.Stop()
	time.Sleep(80 * time.Millisecond)
	if once.Load() {
		t.Error("stopped one-shot timer fired")
	}
}

func TestChanSinkDropsOldest(t *testing.T) {
	s := NewChanSink(2)
	s.Snapshot(Frame{Status: Setup})
	s.Snapshot(Frame{Status: Running})
	s.Outcome(Result{Status: Win})

	first := <-s.Events()
	if f, ok := first.(Frame); !ok || f.Status != Running {
		t.Errorf("first event = %#v, expected the RUNNING frame", first)
	}
	second := <-s.Events()
	if r, ok := second.(Result); !ok || r.Status != Win {
		t.Errorf("second event = %#v, expected the WIN result", second)
	}

	s.Close()
	s.Close()
	s.Snapshot(Frame{})
	select {
	case evt := <-s.Events():
		t.Errorf("event %#v delivered after Close", evt)
	default:
	}
}

func TestMultiSinkFansOut(t *testing.T) {
	var a, b int
	m := MultiSink{
		SinkFunc{OnSnapshot: func(Frame) { a++ }},
		nil,
		SinkFunc{OnSnapshot: func(Frame) { b++ }, OnOutcome: func(Result) { b += 10 }},
	}
	m.Snapshot(Frame{})
	m.Outcome(Result{})
	if a != 1 || b != 11 {
		t.Errorf("a=%d b=%d, expected 1 and 11", a, b)
	}
}
