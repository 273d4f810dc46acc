// Package puzzle provides the simulation core for Logic Reflect.
// This package is UI-agnostic and deterministic: it never sleeps, never
// touches the clock and performs no I/O.
package puzzle

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction is a cardinal heading expressed as a unit vector.
// Y increases downward (screen coordinates).
type Direction struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

var (
	Up    = Direction{DX: 0, DY: -1}
	Right = Direction{DX: 1, DY: 0}
	Down  = Direction{DX: 0, DY: 1}
	Left  = Direction{DX: -1, DY: 0}
)

// Directions returns the four headings in clockwise order starting at Up.
func Directions() []Direction {
	return []Direction{Up, Right, Down, Left}
}

// Valid reports whether d is one of the four cardinal headings.
func (d Direction) Valid() bool {
	if d.DX < -1 || d.DX > 1 || d.DY < -1 || d.DY > 1 {
		return false
	}
	return (d.DX == 0) != (d.DY == 0)
}

// RotateCW turns the heading a quarter turn clockwise: (dx, dy) -> (-dy, dx).
func (d Direction) RotateCW() Direction {
	return Direction{DX: -d.DY, DY: d.DX}
}

// RotateCCW turns the heading a quarter turn counter-clockwise: (dx, dy) -> (dy, -dx).
func (d Direction) RotateCCW() Direction {
	return Direction{DX: d.DY, DY: -d.DX}
}

// Reverse flips the heading: (dx, dy) -> (-dx, -dy).
func (d Direction) Reverse() Direction {
	return Direction{DX: -d.DX, DY: -d.DY}
}

// String returns the name of the heading, or the raw vector if invalid.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return fmt.Sprintf("%d,%d", d.DX, d.DY)
	}
}

// Arrow returns a single character pointing along the heading.
func (d Direction) Arrow() rune {
	switch d {
	case Up:
		return '^'
	case Right:
		return '>'
	case Down:
		return 'v'
	case Left:
		return '<'
	default:
		return '?'
	}
}

// ParseDirection accepts a heading name (up, right, down, left; or the
// initials u, r, d, l) or a "dx,dy" vector.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u", "n", "north":
		return Up, nil
	case "right", "r", "e", "east":
		return Right, nil
	case "down", "d", "s", "south":
		return Down, nil
	case "left", "l", "w", "west":
		return Left, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Direction{}, fmt.Errorf("invalid direction %q", s)
	}
	dx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Direction{}, fmt.Errorf("invalid direction %q: %w", s, err)
	}
	dy, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Direction{}, fmt.Errorf("invalid direction %q: %w", s, err)
	}
	d := Direction{DX: dx, DY: dy}
	if !d.Valid() {
		return Direction{}, fmt.Errorf("invalid direction %q: not a cardinal heading", s)
	}
	return d, nil
}

// Coord represents a cell on the grid.
// X increases to the right, Y increases downward.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Unset marks a level without a start position.
var Unset = Coord{X: -1, Y: -1}

// C is a convenience constructor for Coord.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// String returns a string representation of the coordinate.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Step returns the neighbouring cell along d.
func (c Coord) Step(d Direction) Coord {
	return Coord{X: c.X + d.DX, Y: c.Y + d.DY}
}

// less orders coordinates row-major.
func (c Coord) less(o Coord) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}
