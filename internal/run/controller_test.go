package run

import (
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/logic-reflect/internal/puzzle"
)

const (
	testTick  = 300 * time.Millisecond
	testDelay = 500 * time.Millisecond
)

// recorder captures everything a controller pushes.
type recorder struct {
	mu      sync.Mutex
	frames  []Frame
	results []Result
}

func (r *recorder) Snapshot(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *recorder) Outcome(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *recorder) last() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func mustLevel(t *testing.T, rows ...string) *puzzle.Level {
	t.Helper()
	lvl, err := puzzle.LevelFromLayout("test", rows...)
	if err != nil {
		t.Fatalf("LevelFromLayout: %v", err)
	}
	return lvl
}

func newTestController(t *testing.T, lvl *puzzle.Level, sched Scheduler) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	c := New(lvl, Options{
		TickInterval:  testTick,
		TeleportDelay: testDelay,
		Scheduler:     sched,
		Sink:          rec,
	})
	return c, rec
}

func teleportLevel(t *testing.T) *puzzle.Level {
	t.Helper()
	lvl := mustLevel(t,
		"ST......",
		"........",
		"........",
		"........",
		"........",
		".....T..",
		"........",
		".....E..",
	)
	lvl.Teleporters = []puzzle.Teleporter{
		{PairID: 0, At: puzzle.C(1, 0), Role: puzzle.RoleIn, Exit: puzzle.Up},
		{PairID: 0, At: puzzle.C(5, 5), Role: puzzle.RoleOut, Exit: puzzle.Down},
	}
	return lvl
}

func TestPlayRunsToWin(t *testing.T) {
	sched := NewManualScheduler()
	c, rec := newTestController(t, mustLevel(t, "S.E"), sched)

	if !c.Play() {
		t.Fatal("Play() = false")
	}
	if c.Status() != Running {
		t.Fatalf("status = %v, expected RUNNING", c.Status())
	}

	sched.Advance(testTick)
	if got := c.Collector(); got.X != 1 || got.Y != 0 {
		t.Fatalf("after tick 1 collector at (%d,%d)", got.X, got.Y)
	}

	sched.Advance(testTick)
	if c.Status() != Win {
		t.Fatalf("status = %v, expected WIN", c.Status())
	}
	if len(rec.results) != 1 || rec.results[0].Status != Win || rec.results[0].Coins != 0 {
		t.Errorf("results = %+v", rec.results)
	}
	if sched.Pending() != 0 {
		t.Errorf("pending timers = %d after WIN, expected 0", sched.Pending())
	}

	// No further ticks after a terminal state
	n := rec.count()
	sched.Advance(10 * testTick)
	if rec.count() != n {
		t.Error("frames emitted after WIN")
	}
}

func TestPlayFailsOnObstacle(t *testing.T) {
	sched := NewManualScheduler()
	c, rec := newTestController(t, mustLevel(t, "S#E"), sched)

	c.Play()
	sched.Advance(testTick)

	if c.Status() != Fail {
		t.Fatalf("status = %v, expected FAIL", c.Status())
	}
	if len(rec.results) != 1 || rec.results[0].Reason != "obstacle" {
		t.Errorf("results = %+v", rec.results)
	}
	if f := rec.last(); f.Status != Fail || f.Collector.X != 0 {
		t.Errorf("last frame = %+v", f)
	}
}

func TestPlayWithoutStartIsNoop(t *testing.T) {
	sched := NewManualScheduler()
	c, rec := newTestController(t, mustLevel(t, "..E"), sched)

	if c.Play() {
		t.Error("Play() without a start should return false")
	}
	if c.Status() != Setup {
		t.Errorf("status = %v, expected SETUP", c.Status())
	}
	if rec.count() != 0 || sched.Pending() != 0 {
		t.Error("no frames or timers expected")
	}
}

func TestPlayOnlyFromSetup(t *testing.T) {
	sched := NewManualScheduler()
	c, _ := newTestController(t, mustLevel(t, "S.E"), sched)

	c.Play()
	if c.Play() {
		t.Error("second Play() while RUNNING should be a no-op")
	}
	if sched.Pending() != 1 {
		t.Errorf("pending timers = %d, expected a single ticker", sched.Pending())
	}
}

func TestTeleportSuspendsAndResumes(t *testing.T) {
	sched := NewManualScheduler()
	c, rec := newTestController(t, teleportLevel(t), sched)

	c.Play()
	sched.Advance(testTick)

	f := rec.last()
	if !f.Collector.Teleporting || f.Collector.X != 1 || f.Collector.Y != 0 {
		t.Fatalf("entry frame = %+v, expected teleporting at (1,0)", f.Collector)
	}
	if f.Collector.Direction != puzzle.Right {
		t.Errorf("entry heading = %v, expected unchanged", f.Collector.Direction)
	}

	// Ticking is suspended for the whole delay
	n := rec.count()
	sched.Advance(testDelay - time.Millisecond)
	if rec.count() != n {
		t.Fatal("collector moved during teleport suspension")
	}

	sched.Advance(time.Millisecond)
	f = rec.last()
	if f.Collector.Teleporting || f.Collector.X != 5 || f.Collector.Y != 5 {
		t.Fatalf("exit frame = %+v, expected (5,5) not teleporting", f.Collector)
	}
	if f.Collector.Direction != puzzle.Down {
		t.Errorf("exit heading = %v, expected down", f.Collector.Direction)
	}

	sched.Advance(2 * testTick)
	if c.Status() != Win {
		t.Errorf("status = %v, expected WIN", c.Status())
	}
}

func TestResetDuringTeleportCancelsResume(t *testing.T) {
	sched := NewManualScheduler()
	c, rec := newTestController(t, teleportLevel(t), sched)

	c.Play()
	sched.Advance(testTick)
	if !c.Collector().Teleporting {
		t.Fatal("expected teleport in progress")
	}

	c.Reset()
	if sched.Pending() != 0 {
		t.Errorf("pending timers = %d after Reset, expected 0", sched.Pending())
	}

	n := rec.count()
	sched.Advance(10 * testDelay)
	if rec.count() != n {
		t.Error("resume fired after Reset")
	}
	col := c.Collector()
	if c.Status() != Setup || col.X != 0 || col.Y != 0 || col.Teleporting {
		t.Errorf("status=%v collector=%+v, expected SETUP at start", c.Status(), col)
	}
}

// leakyScheduler ignores Stop so that only the generation check can
// suppress stale callbacks.
type leakyScheduler struct {
	*ManualScheduler
}

type noStop struct{}

func (noStop) Stop() {}

func (s leakyScheduler) Every(d time.Duration, fn func()) Timer {
	s.ManualScheduler.Every(d, fn)
	return noStop{}
}

func (s leakyScheduler) After(d time.Duration, fn func()) Timer {
	s.ManualScheduler.After(d, fn)
	return noStop{}
}

func TestStaleCallbacksAreSuppressed(t *testing.T) {
	manual := NewManualScheduler()
	c, _ := newTestController(t, teleportLevel(t), leakyScheduler{manual})

	c.Play()
	manual.Advance(testTick) // teleport entry, resume due at 800ms
	c.Reset()
	c.Play()

	// The old ticker and the old resume are both still scheduled. The new
	// run enters the teleporter at 600ms and must still be suspended at
	// 800ms when the stale resume fires.
	manual.Advance(testDelay + time.Millisecond)

	col := c.Collector()
	if col.X != 1 || col.Y != 0 || !col.Teleporting {
		t.Fatalf("collector = %+v, stale resume relocated the new run", col)
	}
	if c.Ticks() != 1 {
		t.Errorf("ticks = %d, expected 1", c.Ticks())
	}
	if c.Status() != Running {
		t.Errorf("status = %v, expected RUNNING", c.Status())
	}
}

func TestStaleTickAfterFailIsNoop(t *testing.T) {
	sched := NewManualScheduler()
	c, rec := newTestController(t, mustLevel(t, "S#"), sched)

	c.Play()
	gen := c.gen
	sched.Advance(testTick)
	n := rec.count()

	c.tick(gen)
	if rec.count() != n || c.Ticks() != 1 {
		t.Error("tick after FAIL mutated the run")
	}
}

func TestToggleOnlyInSetup(t *testing.T) {
	sched := NewManualScheduler()
	lvl := mustLevel(t,
		"S..",
		"..E",
	)
	lvl.Inventory = puzzle.Inventory{puzzle.ToolRotateCW: 1}
	c, _ := newTestController(t, lvl, sched)

	if c.ToggleAt(1, 0) {
		t.Error("toggle without a selection should not place")
	}
	if !c.Select(puzzle.ToolRotateCW) {
		t.Fatal("Select() = false in SETUP")
	}
	if c.ToggleAt(5, 5) {
		t.Error("toggle outside the grid should be rejected")
	}
	if !c.ToggleAt(2, 0) {
		t.Fatal("expected placement")
	}
	if c.Remaining(puzzle.ToolRotateCW) != 0 {
		t.Errorf("Remaining = %d, expected 0", c.Remaining(puzzle.ToolRotateCW))
	}

	c.Play()
	if c.ToggleAt(2, 0) {
		t.Error("toggle while RUNNING should be a no-op")
	}
	if c.Select(puzzle.ToolMirror) {
		t.Error("select while RUNNING should be a no-op")
	}

	// rotator-cw at (2,0) turns the collector down onto the end tile.
	sched.Advance(3 * testTick)
	if c.Status() != Win {
		t.Fatalf("status = %v, expected WIN", c.Status())
	}
}

func TestResetClearsToolsAndSelection(t *testing.T) {
	sched := NewManualScheduler()
	lvl := mustLevel(t, "S..E")
	lvl.Inventory = puzzle.Inventory{puzzle.ToolMirror: 1}
	c, rec := newTestController(t, lvl, sched)

	c.Select(puzzle.ToolMirror)
	c.ToggleAt(2, 0)
	c.Play()
	sched.Advance(testTick)
	c.Reset()

	if len(c.Tools()) != 0 {
		t.Error("tools not cleared")
	}
	if _, ok := c.Selected(); ok {
		t.Error("selection not cleared")
	}
	if f := rec.last(); f.Status != Setup || f.Collector.X != 0 || !f.Collector.Visible {
		t.Errorf("reset frame = %+v", f)
	}
}

func TestAdvance(t *testing.T) {
	t.Run("next level", func(t *testing.T) {
		sched := NewManualScheduler()
		c, _ := newTestController(t, mustLevel(t, "SE"), sched)
		next := mustLevel(t, "S.E")
		next.ID = "next"

		if c.Advance(next) {
			t.Error("Advance outside WIN should be a no-op")
		}
		c.Play()
		sched.Advance(testTick)
		if !c.Advance(next) {
			t.Fatal("Advance() = false after WIN")
		}
		if c.Status() != Setup || c.Level().ID != "next" {
			t.Errorf("status=%v level=%s", c.Status(), c.Level().ID)
		}
	})

	t.Run("all complete", func(t *testing.T) {
		sched := NewManualScheduler()
		c, rec := newTestController(t, mustLevel(t, "ScE"), sched)

		c.Play()
		sched.Advance(2 * testTick)
		c.Advance(nil)

		if c.Status() != AllComplete {
			t.Fatalf("status = %v, expected ALL_COMPLETE", c.Status())
		}
		last := rec.results[len(rec.results)-1]
		if last.Status != AllComplete || last.Coins != 1 {
			t.Errorf("outcome = %+v", last)
		}
		if c.Play() {
			t.Error("Play() in ALL_COMPLETE should be a no-op")
		}
	})
}

func TestNegativeDelayResumesImmediately(t *testing.T) {
	sched := NewManualScheduler()
	rec := &recorder{}
	c := New(teleportLevel(t), Options{
		TickInterval:  testTick,
		TeleportDelay: -1,
		Scheduler:     sched,
		Sink:          rec,
	})

	c.Play()
	sched.Advance(testTick)
	if col := c.Collector(); col.X != 5 || col.Y != 5 {
		t.Errorf("collector = %+v, expected relocation within the same instant", col)
	}
}
