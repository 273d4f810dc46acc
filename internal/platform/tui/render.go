package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/logic-reflect/internal/puzzle"
)

// BoardView is everything needed to draw one board frame.
type BoardView struct {
	Level     *puzzle.Level
	Tools     []puzzle.PlacedTool
	Collector puzzle.Collector
	State     puzzle.StateSnapshot

	Cursor     puzzle.Coord
	ShowCursor bool
}

// RenderBoard draws the board with one styled glyph per cell, followed by
// a space so cells come out roughly square.
//
// Precedence per cell matches the ASCII renderer: collector, placed tool,
// force tile, tile. Collected items are drawn as empty cells.
func RenderBoard(v BoardView, theme Theme) string {
	placed := make(map[puzzle.Coord]puzzle.Tool, len(v.Tools))
	for _, t := range v.Tools {
		placed[t.At] = t.Kind
	}
	collected := make(map[puzzle.Coord]struct{}, len(v.State.CollectedItems))
	for _, c := range v.State.CollectedItems {
		collected[c] = struct{}{}
	}

	var sb strings.Builder
	for y := 0; y < v.Level.Height(); y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for x := 0; x < v.Level.Width(); x++ {
			at := puzzle.C(x, y)
			glyph, style := cell(v, theme, at, placed, collected)
			if v.ShowCursor && at == v.Cursor {
				style = theme.Cursor.Inherit(style)
			}
			sb.WriteString(style.Render(string(glyph)))
			if x < v.Level.Width()-1 {
				sb.WriteRune(' ')
			}
		}
	}
	return sb.String()
}

func cell(v BoardView, theme Theme, at puzzle.Coord, placed map[puzzle.Coord]puzzle.Tool, collected map[puzzle.Coord]struct{}) (rune, lipgloss.Style) {
	c := v.Collector
	if c.Visible && puzzle.C(c.X, c.Y) == at {
		if c.Teleporting {
			return c.Direction.Arrow(), theme.CollectorWarp
		}
		return c.Direction.Arrow(), theme.Collector
	}
	if t, ok := placed[at]; ok {
		return t.Glyph(), theme.Tool
	}
	if f, ok := v.Level.ForceTileAt(at); ok {
		return f.Action.Glyph() + ('a' - 'A'), theme.ForceTile
	}

	tile := v.Level.TileAt(at)
	if _, ok := collected[at]; ok && (tile == puzzle.TileCoin || tile == puzzle.TileKey) {
		return puzzle.TileEmpty.Rune(), theme.Empty
	}
	return tile.Rune(), tileStyle(tile, theme)
}

func tileStyle(t puzzle.Tile, theme Theme) lipgloss.Style {
	switch t {
	case puzzle.TileObstacle:
		return theme.Obstacle
	case puzzle.TileStart:
		return theme.Start
	case puzzle.TileEnd:
		return theme.End
	case puzzle.TileTeleporter:
		return theme.Teleporter
	case puzzle.TileCoin:
		return theme.Coin
	case puzzle.TileKey:
		return theme.Key
	case puzzle.TileGate:
		return theme.Gate
	default:
		return theme.Empty
	}
}

// centerText pads text on the left so it is centred in width columns.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}

// centerBlock centres every line of a multi-line block.
func centerBlock(block string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
}
