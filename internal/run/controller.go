// Package run drives a puzzle level in real time: it owns the run state
// machine, the tick timer and the teleport suspension, and pushes frames
// and outcomes to sinks.
package run

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/logic-reflect/internal/puzzle"
)

// Default timings.
const (
	DefaultTickInterval  = 300 * time.Millisecond
	DefaultTeleportDelay = 500 * time.Millisecond
)

// Status is the run controller state.
type Status uint8

const (
	Setup Status = iota
	Running
	Win
	Fail
	AllComplete
)

// String returns the string representation of a status.
func (s Status) String() string {
	switch s {
	case Setup:
		return "SETUP"
	case Running:
		return "RUNNING"
	case Win:
		return "WIN"
	case Fail:
		return "FAIL"
	case AllComplete:
		return "ALL_COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(b []byte) error {
	for st := Setup; st <= AllComplete; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// Terminal reports whether no further ticks can happen without Reset or Advance.
func (s Status) Terminal() bool {
	return s == Win || s == Fail || s == AllComplete
}

// Options configures a Controller. Zero values select defaults.
type Options struct {
	TickInterval  time.Duration
	TeleportDelay time.Duration // negative resumes on the next scheduler turn
	Scheduler     Scheduler
	Sink          Sink
	Logger        *log.Logger
}

// Controller is the run state machine for one level at a time.
// All methods are safe for concurrent use; timer callbacks are serialized
// with them by a single mutex.
type Controller struct {
	mu sync.Mutex

	level     *puzzle.Level
	tools     *puzzle.PlacedTools
	selected  puzzle.Tool
	hasSelect bool
	st        *puzzle.SimState
	status    Status
	ticks     int

	// gen is bumped on every Play, Reset and Advance; callbacks scheduled
	// under an older generation do nothing.
	gen      uint64
	ticker   Timer
	teleport Timer

	interval time.Duration
	delay    time.Duration
	sched    Scheduler
	sink     Sink
	logger   *log.Logger
}

// New creates a controller in SETUP for level.
func New(level *puzzle.Level, opts Options) *Controller {
	c := &Controller{
		interval: opts.TickInterval,
		delay:    opts.TeleportDelay,
		sched:    opts.Scheduler,
		sink:     opts.Sink,
		logger:   opts.Logger,
	}
	if c.interval <= 0 {
		c.interval = DefaultTickInterval
	}
	if c.delay < 0 {
		c.delay = 0
	} else if c.delay == 0 {
		c.delay = DefaultTeleportDelay
	}
	if c.sched == nil {
		c.sched = WallScheduler{}
	}
	if c.sink == nil {
		c.sink = nopSink{}
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	c.load(level)
	return c
}

// load installs level in SETUP. Caller holds mu (or is New).
func (c *Controller) load(level *puzzle.Level) {
	c.level = level
	c.tools = puzzle.NewPlacedTools(level.Inventory)
	c.hasSelect = false
	c.st = puzzle.NewSimState(level)
	c.status = Setup
	c.ticks = 0
}

// Play moves SETUP to RUNNING. It is a no-op returning false when the
// controller is not in SETUP or the level has no start position.
func (c *Controller) Play() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != Setup || !c.level.HasStart() {
		return false
	}

	c.stopTimers()
	c.gen++
	c.st = puzzle.NewSimState(c.level)
	c.status = Running
	c.ticks = 0
	c.startTicker()

	c.logger.Info("run started", "level", c.level.ID, "tools", c.tools.Len(), "interval", c.interval)
	c.emit()
	return true
}

// Reset cancels any pending tick or teleport resume, clears the placed
// tools and the selection, and puts the collector back on the start pose.
// Valid from any state.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimers()
	c.gen++
	prev := c.status
	c.load(c.level)

	c.logger.Debug("run reset", "level", c.level.ID, "from", prev)
	c.emit()
}

// Advance leaves WIN for SETUP on next, or for ALL_COMPLETE when next is
// nil. It is a no-op returning false outside WIN.
func (c *Controller) Advance(next *puzzle.Level) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != Win {
		return false
	}
	c.stopTimers()
	c.gen++

	if next == nil {
		c.status = AllComplete
		c.logger.Info("all levels complete", "last", c.level.ID)
		c.emit()
		c.sink.Outcome(Result{Status: AllComplete, Coins: c.st.CollectedCoins, Ticks: c.ticks, Level: c.level.ID})
		return true
	}

	c.logger.Info("advancing", "from", c.level.ID, "to", next.ID)
	c.load(next)
	c.emit()
	return true
}

// Select sets the tool that ToggleAt places. Only honoured in SETUP.
func (c *Controller) Select(tool puzzle.Tool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != Setup || tool >= puzzle.ToolCount {
		return false
	}
	c.selected, c.hasSelect = tool, true
	return true
}

// Deselect clears the selected tool. Only honoured in SETUP.
func (c *Controller) Deselect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == Setup {
		c.hasSelect = false
	}
}

// Selected returns the selected tool, if any.
func (c *Controller) Selected() (puzzle.Tool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected, c.hasSelect
}

// ToggleAt removes the tool at (x, y), or places the selected tool there
// when stock allows. Only honoured in SETUP and inside the grid.
func (c *Controller) ToggleAt(x, y int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	at := puzzle.C(x, y)
	if c.status != Setup || !c.level.InBounds(at) {
		return false
	}
	return c.tools.ToggleAt(at, c.selected, c.hasSelect)
}

// tick runs one step. Stale callbacks (older generation) and ticks outside
// RUNNING or during a teleport are ignored.
func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.status != Running || c.st.Teleporting {
		return
	}

	result := puzzle.Step(c.level, c.tools, c.st)
	c.ticks++

	switch result.Outcome {
	case puzzle.Fail:
		c.finish(Fail, result.Reason.String())
		return
	case puzzle.Win:
		c.finish(Win, "")
		return
	}

	if result.Picked != puzzle.TileEmpty {
		c.logger.Debug("picked up", "item", result.Picked, "at", result.To, "coins", c.st.CollectedCoins)
	}

	if j := result.Teleport; j != nil {
		c.stopTicker()
		c.emit()
		c.logger.Debug("teleporting", "pair", j.PairID, "from", j.From, "to", j.To, "delay", c.delay)
		jump := *j
		c.teleport = c.sched.After(c.delay, func() { c.resume(gen, jump) })
		return
	}

	c.emit()
}

// resume finishes a teleport and restarts ticking if the run that
// scheduled it is still live.
func (c *Controller) resume(gen uint64, j puzzle.Jump) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.status != Running {
		return
	}
	c.teleport = nil
	puzzle.CompleteTeleport(c.st, j)
	c.emit()
	c.startTicker()
}

// finish enters a terminal state, pushes the final frame and then the
// outcome. Caller holds mu.
func (c *Controller) finish(status Status, reason string) {
	c.stopTimers()
	c.status = status
	c.emit()

	res := Result{Status: status, Reason: reason, Coins: c.st.CollectedCoins, Ticks: c.ticks, Level: c.level.ID}
	c.logger.Info("run finished", "level", c.level.ID, "status", status, "reason", reason, "coins", res.Coins, "ticks", c.ticks)
	c.sink.Outcome(res)
}

func (c *Controller) startTicker() {
	gen := c.gen
	c.ticker = c.sched.Every(c.interval, func() { c.tick(gen) })
}

func (c *Controller) stopTicker() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

func (c *Controller) stopTimers() {
	c.stopTicker()
	if c.teleport != nil {
		c.teleport.Stop()
		c.teleport = nil
	}
}

// emit pushes the current frame. Caller holds mu.
func (c *Controller) emit() {
	c.sink.Snapshot(c.frame())
}

func (c *Controller) frame() Frame {
	return Frame{Collector: c.st.Collector(), State: c.st.Snapshot(), Status: c.status}
}

// Status returns the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Frame returns the current collector and counters.
func (c *Controller) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame()
}

// Collector returns the current collector snapshot.
func (c *Controller) Collector() puzzle.Collector {
	return c.Frame().Collector
}

// State returns the current simulation counters.
func (c *Controller) State() puzzle.StateSnapshot {
	return c.Frame().State
}

// Tools returns a copy of the placed tools in row-major order.
func (c *Controller) Tools() []puzzle.PlacedTool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tools.List()
}

// Remaining returns how many more tools of kind can be placed.
func (c *Controller) Remaining(kind puzzle.Tool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tools.Remaining(kind)
}

// Level returns the level being played. It must be treated as read-only.
func (c *Controller) Level() *puzzle.Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// Ticks returns the number of steps taken in the current run.
func (c *Controller) Ticks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Render returns the ASCII board with the current collector.
func (c *Controller) Render() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return puzzle.RenderASCII(c.level, c.tools, c.st)
}
