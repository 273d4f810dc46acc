// Package formats provides pluggable level file format parsers.
package formats

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/logic-reflect/internal/puzzle"
)

// YAMLLevel represents the YAML structure for a level file.
type YAMLLevel struct {
	ID             string           `yaml:"id"`
	Name           string           `yaml:"name"`
	Layout         []string         `yaml:"layout"`
	StartDirection string           `yaml:"start_direction,omitempty"`
	Inventory      map[string]int   `yaml:"inventory,omitempty"`
	Teleporters    []YAMLTeleporter `yaml:"teleporters,omitempty"`
	ForceTiles     []YAMLForceTile  `yaml:"force_tiles,omitempty"`
	Origin         string           `yaml:"origin,omitempty"`
	CreatedBy      string           `yaml:"created_by,omitempty"`
}

// YAMLTeleporter is one end of a teleporter pair.
type YAMLTeleporter struct {
	Pair int    `yaml:"pair"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
	Role string `yaml:"role"`
	Exit string `yaml:"exit,omitempty"`
}

// YAMLForceTile is a level-authored deflector.
type YAMLForceTile struct {
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Action string `yaml:"action"`
}

// ParseYAML parses a YAML level file. Structural validation is left to
// the caller.
func ParseYAML(data []byte) (*puzzle.Level, error) {
	var yl YAMLLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return yl.ToLevel()
}

// ToLevel converts the YAML form into a puzzle level.
func (yl YAMLLevel) ToLevel() (*puzzle.Level, error) {
	grid, start, err := puzzle.ParseLayout(yl.Layout)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	dir := puzzle.Right
	if yl.StartDirection != "" {
		if dir, err = puzzle.ParseDirection(yl.StartDirection); err != nil {
			return nil, fmt.Errorf("start_direction: %w", err)
		}
	}

	level := &puzzle.Level{
		ID:        yl.ID,
		Name:      yl.Name,
		Grid:      grid,
		Start:     start,
		StartDir:  dir,
		Inventory: puzzle.Inventory{},
		Origin:    yl.Origin,
		CreatedBy: yl.CreatedBy,
	}
	if level.Name == "" {
		level.Name = level.ID
	}

	for name, n := range yl.Inventory {
		tool, ok := puzzle.ParseTool(name)
		if !ok {
			return nil, fmt.Errorf("inventory: unknown tool %q", name)
		}
		level.Inventory[tool] = n
	}

	for i, t := range yl.Teleporters {
		role, ok := puzzle.ParseRole(t.Role)
		if !ok {
			return nil, fmt.Errorf("teleporters[%d]: unknown role %q", i, t.Role)
		}
		tp := puzzle.Teleporter{PairID: t.Pair, At: puzzle.C(t.X, t.Y), Role: role}
		if t.Exit != "" {
			if tp.Exit, err = puzzle.ParseDirection(t.Exit); err != nil {
				return nil, fmt.Errorf("teleporters[%d].exit: %w", i, err)
			}
		}
		level.Teleporters = append(level.Teleporters, tp)
	}

	for i, f := range yl.ForceTiles {
		action, ok := puzzle.ParseTool(f.Action)
		if !ok {
			return nil, fmt.Errorf("force_tiles[%d]: unknown action %q", i, f.Action)
		}
		level.ForceTiles = append(level.ForceTiles, puzzle.ForceTile{At: puzzle.C(f.X, f.Y), Action: action})
	}

	return level, nil
}

// FromLevel converts a puzzle level into its YAML form.
func FromLevel(l *puzzle.Level) YAMLLevel {
	yl := YAMLLevel{
		ID:             l.ID,
		Name:           l.Name,
		Layout:         l.Layout(),
		StartDirection: l.StartDir.String(),
		Origin:         l.Origin,
		CreatedBy:      l.CreatedBy,
	}

	if len(l.Inventory) > 0 {
		yl.Inventory = make(map[string]int, len(l.Inventory))
		for tool, n := range l.Inventory {
			yl.Inventory[tool.String()] = n
		}
	}

	for _, t := range l.Teleporters {
		yt := YAMLTeleporter{Pair: t.PairID, X: t.At.X, Y: t.At.Y, Role: t.Role.String()}
		if t.Exit.Valid() {
			yt.Exit = t.Exit.String()
		}
		yl.Teleporters = append(yl.Teleporters, yt)
	}
	sort.SliceStable(yl.Teleporters, func(i, j int) bool {
		if yl.Teleporters[i].Pair != yl.Teleporters[j].Pair {
			return yl.Teleporters[i].Pair < yl.Teleporters[j].Pair
		}
		return yl.Teleporters[i].Role == "in" && yl.Teleporters[j].Role != "in"
	})

	for _, f := range l.ForceTiles {
		yl.ForceTiles = append(yl.ForceTiles, YAMLForceTile{X: f.At.X, Y: f.At.Y, Action: f.Action.String()})
	}

	return yl
}

// MarshalYAML encodes a level in the same format ParseYAML reads.
func MarshalYAML(l *puzzle.Level) ([]byte, error) {
	data, err := yaml.Marshal(FromLevel(l))
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}
