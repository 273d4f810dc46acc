package puzzle

// Frame is the collector and counters after a committed tick.
type Frame struct {
	Tick      int
	Collector Collector
	State     StateSnapshot
}

// Trace is the full record of a synchronous run.
type Trace struct {
	Frames    []Frame
	Outcome   Outcome
	Reason    FailReason
	Coins     int
	Ticks     int
	Exhausted bool // maxTicks reached while still running
}

// Simulate runs a level to completion without any real-time pacing.
// Teleports are applied immediately, but both the entry frame
// (Teleporting set) and the exit frame are recorded.
// A level without a start position yields an empty trace.
func Simulate(level *Level, tools *PlacedTools, maxTicks int) Trace {
	var trace Trace
	if !level.HasStart() {
		return trace
	}

	st := NewSimState(level)
	for trace.Ticks < maxTicks {
		result := Step(level, tools, st)
		trace.Ticks++

		if result.Outcome == Fail {
			trace.Outcome, trace.Reason = Fail, result.Reason
			break
		}

		trace.Frames = append(trace.Frames, Frame{Tick: trace.Ticks, Collector: st.Collector(), State: st.Snapshot()})

		if result.Outcome == Win {
			trace.Outcome = Win
			break
		}

		if result.Teleport != nil {
			CompleteTeleport(st, *result.Teleport)
			trace.Frames = append(trace.Frames, Frame{Tick: trace.Ticks, Collector: st.Collector(), State: st.Snapshot()})
		}
	}

	trace.Coins = st.CollectedCoins
	trace.Exhausted = trace.Outcome == Running
	return trace
}

// Restore rebuilds the state a frame was recorded from, for rendering.
func (f Frame) Restore() *SimState {
	st := &SimState{
		Position:       C(f.Collector.X, f.Collector.Y),
		Direction:      f.Collector.Direction,
		CollectedCoins: f.State.CollectedCoins,
		HasKey:         f.State.HasKey,
		Collected:      make(map[Coord]struct{}, len(f.State.CollectedItems)),
		Teleporting:    f.Collector.Teleporting,
	}
	if !f.Collector.Visible {
		st.Position = Unset
	}
	for _, c := range f.State.CollectedItems {
		st.Collected[c] = struct{}{}
	}
	return st
}
