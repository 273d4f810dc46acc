package puzzle

import "sort"

// PlacedTool is a player-chosen tool on a cell for the current attempt.
type PlacedTool struct {
	At   Coord `json:"at"`
	Kind Tool  `json:"kind"`
}

// PlacedTools is the player's tool placement for one attempt.
// At most one tool occupies a cell and, per kind, the number of placed
// tools never exceeds the inventory.
type PlacedTools struct {
	inv   Inventory
	cells map[Coord]Tool
}

// NewPlacedTools creates an empty placement bounded by inv.
func NewPlacedTools(inv Inventory) *PlacedTools {
	return &PlacedTools{
		inv:   inv.Clone(),
		cells: make(map[Coord]Tool),
	}
}

// ToggleAt removes whatever tool occupies at, regardless of kind.
// Otherwise, when a kind is selected and stock remains, it places one.
// Returns true if the placement changed.
func (p *PlacedTools) ToggleAt(at Coord, kind Tool, selected bool) bool {
	if _, ok := p.cells[at]; ok {
		delete(p.cells, at)
		return true
	}
	if !selected || p.Count(kind) >= p.inv[kind] {
		return false
	}
	p.cells[at] = kind
	return true
}

// At returns the tool placed on c, if any.
func (p *PlacedTools) At(c Coord) (Tool, bool) {
	if p == nil {
		return 0, false
	}
	t, ok := p.cells[c]
	return t, ok
}

// Count returns how many tools of kind are placed.
func (p *PlacedTools) Count(kind Tool) int {
	n := 0
	for _, t := range p.cells {
		if t == kind {
			n++
		}
	}
	return n
}

// Remaining returns how many tools of kind can still be placed.
func (p *PlacedTools) Remaining(kind Tool) int {
	return p.inv[kind] - p.Count(kind)
}

// Len returns the number of placed tools.
func (p *PlacedTools) Len() int {
	return len(p.cells)
}

// List returns the placed tools in row-major order.
func (p *PlacedTools) List() []PlacedTool {
	out := make([]PlacedTool, 0, len(p.cells))
	for c, t := range p.cells {
		out = append(out, PlacedTool{At: c, Kind: t})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].At.less(out[j].At)
	})
	return out
}

// Clear removes every placed tool.
func (p *PlacedTools) Clear() {
	p.cells = make(map[Coord]Tool)
}
