package puzzle

import (
	"fmt"
	"strings"
)

// Tile is the kind of a grid cell. A cell's kind never changes during a run;
// collected coins and keys are tracked in SimState instead.
type Tile uint8

const (
	TileEmpty Tile = iota
	TileObstacle
	TileStart
	TileEnd
	TileTeleporter
	TileCoin
	TileKey
	TileGate
)

// String returns the level-file name of the tile.
func (t Tile) String() string {
	switch t {
	case TileEmpty:
		return "empty"
	case TileObstacle:
		return "obstacle"
	case TileStart:
		return "start"
	case TileEnd:
		return "end"
	case TileTeleporter:
		return "teleporter"
	case TileCoin:
		return "coin"
	case TileKey:
		return "key"
	case TileGate:
		return "gate"
	default:
		return "unknown"
	}
}

// Rune returns the layout legend character for the tile.
func (t Tile) Rune() rune {
	switch t {
	case TileEmpty:
		return '.'
	case TileObstacle:
		return '#'
	case TileStart:
		return 'S'
	case TileEnd:
		return 'E'
	case TileTeleporter:
		return 'T'
	case TileCoin:
		return 'c'
	case TileKey:
		return 'k'
	case TileGate:
		return 'G'
	default:
		return '?'
	}
}

// TileFromRune is the inverse of Tile.Rune.
func TileFromRune(r rune) (Tile, bool) {
	switch r {
	case '.', ' ':
		return TileEmpty, true
	case '#':
		return TileObstacle, true
	case 'S':
		return TileStart, true
	case 'E':
		return TileEnd, true
	case 'T':
		return TileTeleporter, true
	case 'c':
		return TileCoin, true
	case 'k':
		return TileKey, true
	case 'G':
		return TileGate, true
	default:
		return TileEmpty, false
	}
}

// ParseTile converts a tile name to a Tile.
func ParseTile(s string) (Tile, bool) {
	switch strings.ToLower(s) {
	case "empty":
		return TileEmpty, true
	case "obstacle":
		return TileObstacle, true
	case "start":
		return TileStart, true
	case "end":
		return TileEnd, true
	case "teleporter":
		return TileTeleporter, true
	case "coin":
		return TileCoin, true
	case "key":
		return TileKey, true
	case "gate":
		return TileGate, true
	default:
		return TileEmpty, false
	}
}

// Tool is a directional transform, either placed by the player or
// authored into the level as a force tile.
type Tool uint8

const (
	ToolRotateCW Tool = iota
	ToolRotateCCW
	ToolMirror
	ToolCount // Sentinel value for iteration
)

// String returns the inventory name of the tool.
func (t Tool) String() string {
	switch t {
	case ToolRotateCW:
		return "rotator-cw"
	case ToolRotateCCW:
		return "rotator-ccw"
	case ToolMirror:
		return "mirror"
	default:
		return "unknown"
	}
}

// MarshalText encodes the inventory name.
func (t Tool) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes an inventory name.
func (t *Tool) UnmarshalText(b []byte) error {
	tool, ok := ParseTool(string(b))
	if !ok {
		return fmt.Errorf("unknown tool %q", b)
	}
	*t = tool
	return nil
}

// Glyph returns a single character for ASCII rendering.
func (t Tool) Glyph() rune {
	switch t {
	case ToolRotateCW:
		return 'R'
	case ToolRotateCCW:
		return 'L'
	case ToolMirror:
		return 'M'
	default:
		return '?'
	}
}

// Apply transforms a heading.
func (t Tool) Apply(d Direction) Direction {
	switch t {
	case ToolRotateCW:
		return d.RotateCW()
	case ToolRotateCCW:
		return d.RotateCCW()
	case ToolMirror:
		return d.Reverse()
	default:
		return d
	}
}

// ParseTool converts an inventory name (or a short alias) to a Tool.
func ParseTool(s string) (Tool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rotator-cw", "cw", "r":
		return ToolRotateCW, true
	case "rotator-ccw", "ccw", "l":
		return ToolRotateCCW, true
	case "mirror", "m":
		return ToolMirror, true
	default:
		return ToolRotateCW, false
	}
}

// AllTools returns every tool kind.
func AllTools() []Tool {
	return []Tool{ToolRotateCW, ToolRotateCCW, ToolMirror}
}

// Role tags a teleporter as the entry or the exit of its pair.
type Role uint8

const (
	RoleIn Role = iota
	RoleOut
)

// String returns "in" or "out".
func (r Role) String() string {
	if r == RoleOut {
		return "out"
	}
	return "in"
}

// MarshalText encodes "in" or "out".
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes "in" or "out".
func (r *Role) UnmarshalText(b []byte) error {
	role, ok := ParseRole(string(b))
	if !ok {
		return fmt.Errorf("unknown role %q", b)
	}
	*r = role
	return nil
}

// ParseRole converts "in"/"out" to a Role.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(s) {
	case "in":
		return RoleIn, true
	case "out":
		return RoleOut, true
	default:
		return RoleIn, false
	}
}
