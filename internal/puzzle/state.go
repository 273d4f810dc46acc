package puzzle

import "sort"

// SimState is the live state of one run. It is created fresh on every
// play or reset and never persisted.
type SimState struct {
	Position       Coord
	Direction      Direction
	CollectedCoins int
	HasKey         bool
	Collected      map[Coord]struct{} // coin and key cells already picked up
	Teleporting    bool
}

// NewSimState places a fresh collector on the level's start pose.
func NewSimState(l *Level) *SimState {
	return &SimState{
		Position:  l.Start,
		Direction: l.StartDir,
		Collected: make(map[Coord]struct{}),
	}
}

// IsCollected reports whether the item on c was already picked up.
func (s *SimState) IsCollected(c Coord) bool {
	_, ok := s.Collected[c]
	return ok
}

// Collector is the renderable view of the moving entity.
type Collector struct {
	X           int       `json:"x"`
	Y           int       `json:"y"`
	Direction   Direction `json:"direction"`
	Visible     bool      `json:"visible"`
	Teleporting bool      `json:"isTeleporting"`
}

// StateSnapshot is an immutable copy of the counters of a run.
type StateSnapshot struct {
	CollectedCoins int     `json:"collectedCoins"`
	HasKey         bool    `json:"hasKey"`
	CollectedItems []Coord `json:"collectedItems"`
}

// Collector returns the collector snapshot for the current pose.
func (s *SimState) Collector() Collector {
	return Collector{
		X:           s.Position.X,
		Y:           s.Position.Y,
		Direction:   s.Direction,
		Visible:     s.Position != Unset,
		Teleporting: s.Teleporting,
	}
}

// Snapshot copies the counters. Items are sorted row-major.
func (s *SimState) Snapshot() StateSnapshot {
	items := make([]Coord, 0, len(s.Collected))
	for c := range s.Collected {
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].less(items[j])
	})
	return StateSnapshot{
		CollectedCoins: s.CollectedCoins,
		HasKey:         s.HasKey,
		CollectedItems: items,
	}
}
