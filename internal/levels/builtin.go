package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/vovakirdan/logic-reflect/internal/puzzle"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Builtin returns the embedded campaign, sorted by ID. Every call returns
// fresh copies that the caller may modify.
func Builtin() ([]*puzzle.Level, error) {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("reading builtin levels: %w", err)
	}

	levels := make([]*puzzle.Level, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isSupportedExtension(path.Ext(e.Name())) {
			continue
		}
		data, err := builtinFS.ReadFile(path.Join("builtin", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading builtin level %s: %w", e.Name(), err)
		}
		level, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("builtin level %s: %w", e.Name(), err)
		}
		if level.Origin == "" {
			level.Origin = "builtin"
		}
		levels = append(levels, level)
	}

	sortByID(levels)
	return levels, nil
}

// Merge appends user levels to base, skipping any whose ID is already
// present. The order of base is preserved; extra levels follow sorted by ID.
func Merge(base, extra []*puzzle.Level) []*puzzle.Level {
	seen := make(map[string]bool, len(base))
	out := make([]*puzzle.Level, 0, len(base)+len(extra))
	for _, l := range base {
		seen[l.ID] = true
		out = append(out, l)
	}

	var added []*puzzle.Level
	for _, l := range extra {
		if seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		added = append(added, l)
	}
	sortByID(added)
	return append(out, added...)
}
