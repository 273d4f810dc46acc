// Package levels provides level loading functionality for Logic Reflect.
// This package depends on puzzle but puzzle does not depend on levels.
package levels

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vovakirdan/logic-reflect/internal/levels/formats"
	"github.com/vovakirdan/logic-reflect/internal/puzzle"
)

// ErrNotFound is returned when no level has the requested ID.
var ErrNotFound = errors.New("level not found")

// Parse decodes a YAML level and checks its structural invariants.
func Parse(data []byte) (*puzzle.Level, error) {
	level, err := formats.ParseYAML(data)
	if err != nil {
		return nil, err
	}
	if level.ID == "" {
		return nil, errors.New("level has no id")
	}
	if err := level.Validate(); err != nil {
		return nil, fmt.Errorf("level %s: %w", level.ID, err)
	}
	return level, nil
}

// Marshal encodes a level as YAML.
func Marshal(level *puzzle.Level) ([]byte, error) {
	return formats.MarshalYAML(level)
}

// Loader handles loading levels from a directory.
type Loader struct {
	Root string
}

// NewLoader creates a new level loader.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// LoadAll recursively scans and loads all level files.
// Invalid files are skipped. Returns levels sorted by ID for
// deterministic ordering. A missing root yields no levels.
func (l *Loader) LoadAll() ([]*puzzle.Level, error) {
	var levels []*puzzle.Level

	if _, err := os.Stat(l.Root); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	err := filepath.WalkDir(l.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !isSupportedExtension(ext) {
			return nil
		}

		level, err := l.LoadFile(path)
		if err != nil {
			// Skip invalid files
			return nil
		}

		levels = append(levels, level)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.Root, err)
	}

	sortByID(levels)
	return levels, nil
}

// LoadFile loads a single level file.
func (l *Loader) LoadFile(path string) (*puzzle.Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	level, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing file %s: %w", path, err)
	}
	if level.Origin == "" {
		level.Origin = "user"
	}
	return level, nil
}

// LoadByID loads a specific level by ID.
func (l *Loader) LoadByID(id string) (*puzzle.Level, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	return Find(levels, id)
}

// ListIDs returns all level IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(levels))
	for i, lvl := range levels {
		ids[i] = lvl.ID
	}
	return ids, nil
}

// Save writes level to <Root>/<id>.yaml, creating Root if needed.
func (l *Loader) Save(level *puzzle.Level) (string, error) {
	if err := level.Validate(); err != nil {
		return "", fmt.Errorf("level %s: %w", level.ID, err)
	}
	data, err := Marshal(level)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.Root, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", l.Root, err)
	}
	path := filepath.Join(l.Root, fileName(level.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// Find returns the level with the given ID.
func Find(levels []*puzzle.Level, id string) (*puzzle.Level, error) {
	for _, lvl := range levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func sortByID(levels []*puzzle.Level) {
	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})
}

func fileName(id string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
	return safe + ".yaml"
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}
