package puzzle

import (
	"errors"
	"fmt"
)

// Teleporter is one end of a teleporter pair. Only the exit direction of
// the out record is used by the simulation.
type Teleporter struct {
	PairID int       `json:"pair"`
	At     Coord     `json:"at"`
	Role   Role      `json:"role"`
	Exit   Direction `json:"exit"`
}

// ForceTile applies its action to anything that passes over it,
// independent of the player's tools.
type ForceTile struct {
	At     Coord `json:"at"`
	Action Tool  `json:"action"`
}

// Inventory maps each tool kind to the number the player may place.
type Inventory map[Tool]int

// Clone returns a copy of the inventory.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for k, v := range inv {
		out[k] = v
	}
	return out
}

// Level is a complete board definition. It is immutable while a run is active.
type Level struct {
	ID          string
	Name        string
	Grid        [][]Tile // rows indexed by y, then x
	Start       Coord    // Unset when the level has no start tile
	StartDir    Direction
	Inventory   Inventory
	Teleporters []Teleporter
	ForceTiles  []ForceTile

	Origin    string // builtin, user or community
	CreatedBy string
}

// NewLevel creates an empty width x height level with no start.
func NewLevel(id string, width, height int) *Level {
	grid := make([][]Tile, height)
	for y := range grid {
		grid[y] = make([]Tile, width)
	}
	return &Level{
		ID:        id,
		Name:      id,
		Grid:      grid,
		Start:     Unset,
		StartDir:  Right,
		Inventory: Inventory{},
	}
}

// Width returns the number of columns.
func (l *Level) Width() int {
	if len(l.Grid) == 0 {
		return 0
	}
	return len(l.Grid[0])
}

// Height returns the number of rows.
func (l *Level) Height() int {
	return len(l.Grid)
}

// InBounds reports whether c lies inside [0,width) x [0,height).
func (l *Level) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < l.Width() && c.Y >= 0 && c.Y < l.Height()
}

// TileAt returns the tile at c. Out-of-bounds cells read as obstacles.
func (l *Level) TileAt(c Coord) Tile {
	if !l.InBounds(c) {
		return TileObstacle
	}
	return l.Grid[c.Y][c.X]
}

// Set writes a tile. A start tile also moves the start position.
func (l *Level) Set(c Coord, t Tile) {
	if !l.InBounds(c) {
		return
	}
	if t == TileStart {
		if l.HasStart() && l.Start != c {
			l.Grid[l.Start.Y][l.Start.X] = TileEmpty
		}
		l.Start = c
	} else if l.Start == c {
		l.Start = Unset
	}
	l.Grid[c.Y][c.X] = t
}

// HasStart reports whether the level defines a start position.
func (l *Level) HasStart() bool {
	return l.Start != Unset
}

// TeleporterAt returns the teleporter record at c, if any.
func (l *Level) TeleporterAt(c Coord) (Teleporter, bool) {
	for _, t := range l.Teleporters {
		if t.At == c {
			return t, true
		}
	}
	return Teleporter{}, false
}

// ExitFor returns the out record paired with the given in record.
func (l *Level) ExitFor(in Teleporter) (Teleporter, bool) {
	for _, t := range l.Teleporters {
		if t.PairID == in.PairID && t.Role == RoleOut {
			return t, true
		}
	}
	return Teleporter{}, false
}

// ForceTileAt returns the force tile at c, if any.
func (l *Level) ForceTileAt(c Coord) (ForceTile, bool) {
	for _, f := range l.ForceTiles {
		if f.At == c {
			return f, true
		}
	}
	return ForceTile{}, false
}

// TotalCoins counts the coin tiles on the board.
func (l *Level) TotalCoins() int {
	n := 0
	for _, row := range l.Grid {
		for _, t := range row {
			if t == TileCoin {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy of the level.
func (l *Level) Clone() *Level {
	out := *l
	out.Grid = make([][]Tile, len(l.Grid))
	for y, row := range l.Grid {
		out.Grid[y] = append([]Tile(nil), row...)
	}
	out.Inventory = l.Inventory.Clone()
	out.Teleporters = append([]Teleporter(nil), l.Teleporters...)
	out.ForceTiles = append([]ForceTile(nil), l.ForceTiles...)
	return &out
}

// Validation errors.
var (
	ErrEmptyGrid      = errors.New("grid must be at least 1x1")
	ErrRaggedGrid     = errors.New("grid rows must have equal length")
	ErrOutsideGrid    = errors.New("position outside grid")
	ErrBadDirection   = errors.New("invalid direction")
	ErrNegativeStock  = errors.New("inventory count must not be negative")
	ErrDuplicateCell  = errors.New("more than one record on the same cell")
	ErrUnpairedPortal = errors.New("teleporter pair is incomplete")
)

// Validate checks the structural invariants of the level. It does not
// check solvability. The simulation never calls it; level sources do.
func (l *Level) Validate() error {
	if l.Height() == 0 || l.Width() == 0 {
		return ErrEmptyGrid
	}
	w := l.Width()
	for y, row := range l.Grid {
		if len(row) != w {
			return fmt.Errorf("row %d: %w", y, ErrRaggedGrid)
		}
	}
	if l.HasStart() && !l.InBounds(l.Start) {
		return fmt.Errorf("%v: %w", l.Start, ErrOutsideGrid)
	}
	if !l.StartDir.Valid() {
		return fmt.Errorf("start direction %v: %w", l.StartDir, ErrBadDirection)
	}
	for tool, n := range l.Inventory {
		if n < 0 {
			return fmt.Errorf("%s: %w", tool, ErrNegativeStock)
		}
	}

	seen := make(map[Coord]bool)
	roles := make(map[int][2]int)
	for _, t := range l.Teleporters {
		if !l.InBounds(t.At) {
			return fmt.Errorf("teleporter %v: %w", t.At, ErrOutsideGrid)
		}
		if seen[t.At] {
			return fmt.Errorf("teleporter %v: %w", t.At, ErrDuplicateCell)
		}
		seen[t.At] = true
		if t.Role == RoleOut && !t.Exit.Valid() {
			return fmt.Errorf("teleporter %v exit %v: %w", t.At, t.Exit, ErrBadDirection)
		}
		r := roles[t.PairID]
		r[t.Role]++
		roles[t.PairID] = r
	}
	for id, r := range roles {
		if r[RoleIn] != 1 || r[RoleOut] != 1 {
			return fmt.Errorf("pair %d: %w", id, ErrUnpairedPortal)
		}
	}

	seen = make(map[Coord]bool)
	for _, f := range l.ForceTiles {
		if !l.InBounds(f.At) {
			return fmt.Errorf("force tile %v: %w", f.At, ErrOutsideGrid)
		}
		if seen[f.At] {
			return fmt.Errorf("force tile %v: %w", f.At, ErrDuplicateCell)
		}
		seen[f.At] = true
	}
	return nil
}
