package puzzle

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMultipleStarts is returned when a layout has more than one start tile.
var ErrMultipleStarts = errors.New("layout has more than one start tile")

// ParseLayout builds a grid from one string per row using the Tile.Rune
// legend. The start position is the single 'S' cell, or Unset if none.
func ParseLayout(rows []string) ([][]Tile, Coord, error) {
	start := Unset
	grid := make([][]Tile, len(rows))
	for y, row := range rows {
		grid[y] = make([]Tile, 0, len(row))
		for x, r := range []rune(row) {
			tile, ok := TileFromRune(r)
			if !ok {
				return nil, Unset, fmt.Errorf("row %d col %d: unknown tile %q", y, x, r)
			}
			if tile == TileStart {
				if start != Unset {
					return nil, Unset, fmt.Errorf("row %d col %d: %w", y, x, ErrMultipleStarts)
				}
				start = C(x, y)
			}
			grid[y] = append(grid[y], tile)
		}
	}
	return grid, start, nil
}

// Layout renders the grid back into rows using the Tile.Rune legend.
func (l *Level) Layout() []string {
	rows := make([]string, len(l.Grid))
	for y, row := range l.Grid {
		var sb strings.Builder
		for _, t := range row {
			sb.WriteRune(t.Rune())
		}
		rows[y] = sb.String()
	}
	return rows
}

// LevelFromLayout is a convenience constructor used by tests and tools.
// The start heading defaults to Right.
func LevelFromLayout(id string, rows ...string) (*Level, error) {
	grid, start, err := ParseLayout(rows)
	if err != nil {
		return nil, err
	}
	return &Level{
		ID:        id,
		Name:      id,
		Grid:      grid,
		Start:     start,
		StartDir:  Right,
		Inventory: Inventory{},
	}, nil
}
