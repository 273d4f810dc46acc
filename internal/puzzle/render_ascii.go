package puzzle

import (
	"fmt"
	"strings"
)

// RenderASCII creates an ASCII representation of the board.
// This is used for debugging, testing and the headless CLI.
//
// Precedence per cell: collector arrow, placed tool (R/L/M), force tile
// (lowercase r/l/m), tile legend. Collected items render as empty cells.
// st and tools may be nil.
func RenderASCII(level *Level, tools *PlacedTools, st *SimState) string {
	var sb strings.Builder

	coins := 0
	hasKey := false
	if st != nil {
		coins, hasKey = st.CollectedCoins, st.HasKey
	}
	sb.WriteString(fmt.Sprintf("%s | Coins: %d/%d | Key: %v\n", level.Name, coins, level.TotalCoins(), hasKey))
	sb.WriteString(strings.Repeat("-", level.Width()) + "\n")

	for y := 0; y < level.Height(); y++ {
		for x := 0; x < level.Width(); x++ {
			sb.WriteRune(cellRune(level, tools, st, C(x, y)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func cellRune(level *Level, tools *PlacedTools, st *SimState, c Coord) rune {
	if st != nil && st.Position == c {
		return st.Direction.Arrow()
	}
	if t, ok := tools.At(c); ok {
		return t.Glyph()
	}
	if f, ok := level.ForceTileAt(c); ok {
		return f.Action.Glyph() + ('a' - 'A')
	}
	tile := level.TileAt(c)
	if st != nil && (tile == TileCoin || tile == TileKey) && st.IsCollected(c) {
		return TileEmpty.Rune()
	}
	return tile.Rune()
}
