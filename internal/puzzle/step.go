package puzzle

// Outcome is the state of a run after a tick.
type Outcome uint8

const (
	Running Outcome = iota
	Win
	Fail
)

// String returns the string representation of an outcome.
func (o Outcome) String() string {
	switch o {
	case Running:
		return "running"
	case Win:
		return "win"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// FailReason explains a Fail outcome.
type FailReason uint8

const (
	FailNone FailReason = iota
	FailOutOfBounds
	FailObstacle
	FailLockedGate
)

// String returns the string representation of a fail reason.
func (r FailReason) String() string {
	switch r {
	case FailOutOfBounds:
		return "out of bounds"
	case FailObstacle:
		return "obstacle"
	case FailLockedGate:
		return "locked gate"
	default:
		return ""
	}
}

// Deflection records one heading transform applied during a tick.
type Deflection struct {
	Action Tool
	Forced bool // true for a force tile, false for a placed tool
}

// Jump is a pending teleport: the collector stands on the in cell and
// must be relocated to the out cell once the suspension elapses.
type Jump struct {
	PairID int
	From   Coord
	To     Coord
	Exit   Direction
}

// StepResult contains information about what happened during a tick.
type StepResult struct {
	Outcome     Outcome
	Reason      FailReason
	From        Coord
	To          Coord // destination cell; the collector only moves there unless the tick failed
	Picked      Tile  // TileCoin or TileKey when an item was collected, TileEmpty otherwise
	Deflections []Deflection
	Teleport    *Jump
}

// Step advances the collector by one cell. It is a pure function of its
// inputs apart from mutating st; level and tools are only read.
//
// Resolution order (each step short-circuits the ones after it):
//  1. Candidate cell = position + direction
//  2. Outside the grid: Fail, position unchanged
//  3. Obstacle: Fail
//  4. Gate without key: Fail
//  5. End: move there, heading unchanged, Win (items on the cell are not collected)
//  6. Uncollected coin or key on the cell: pick it up
//  7. In teleporter with an out partner: move onto the in cell and return a Jump
//  8. Placed tool on the cell: transform the heading
//  9. Force tile on the cell: transform the (possibly already transformed) heading
//  10. Commit position and heading
func Step(level *Level, tools *PlacedTools, st *SimState) StepResult {
	next := st.Position.Step(st.Direction)
	result := StepResult{
		From: st.Position,
		To:   next,
	}

	if !level.InBounds(next) {
		result.Outcome, result.Reason = Fail, FailOutOfBounds
		return result
	}

	tile := level.TileAt(next)
	switch {
	case tile == TileObstacle:
		result.Outcome, result.Reason = Fail, FailObstacle
		return result
	case tile == TileGate && !st.HasKey:
		result.Outcome, result.Reason = Fail, FailLockedGate
		return result
	case tile == TileEnd:
		st.Position = next
		result.Outcome = Win
		return result
	}

	if !st.IsCollected(next) {
		switch tile {
		case TileCoin:
			st.CollectedCoins++
			st.Collected[next] = struct{}{}
			result.Picked = TileCoin
		case TileKey:
			st.HasKey = true
			st.Collected[next] = struct{}{}
			result.Picked = TileKey
		}
	}

	if tp, ok := level.TeleporterAt(next); ok && tp.Role == RoleIn {
		if out, ok := level.ExitFor(tp); ok {
			st.Position = next
			st.Teleporting = true
			result.Teleport = &Jump{
				PairID: tp.PairID,
				From:   next,
				To:     out.At,
				Exit:   out.Exit,
			}
			return result
		}
	}

	dir := st.Direction
	if tool, ok := tools.At(next); ok {
		dir = tool.Apply(dir)
		result.Deflections = append(result.Deflections, Deflection{Action: tool})
	}
	if force, ok := level.ForceTileAt(next); ok {
		dir = force.Action.Apply(dir)
		result.Deflections = append(result.Deflections, Deflection{Action: force.Action, Forced: true})
	}

	st.Position = next
	st.Direction = dir
	return result
}

// CompleteTeleport relocates the collector to the out cell of j with the
// out record's exit heading.
func CompleteTeleport(st *SimState, j Jump) {
	st.Position = j.To
	st.Direction = j.Exit
	st.Teleporting = false
}
