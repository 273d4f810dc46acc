package levels_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/logic-reflect/internal/levels"
	"github.com/vovakirdan/logic-reflect/internal/puzzle"
)

const portalLevel = `id: portal
name: Portal Test
layout:
  - "S.T.."
  - "....."
  - "..T.E"
start_direction: right
inventory: {rotator-cw: 1, mirror: 2}
teleporters:
  - {pair: 4, x: 2, y: 0, role: in}
  - {pair: 4, x: 2, y: 2, role: out, exit: right}
force_tiles:
  - {x: 3, y: 1, action: rotator-ccw}
created_by: tester
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParse(t *testing.T) {
	lvl, err := levels.Parse([]byte(portalLevel))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if lvl.ID != "portal" || lvl.Name != "Portal Test" {
		t.Errorf("id/name = %q/%q", lvl.ID, lvl.Name)
	}
	if lvl.Width() != 5 || lvl.Height() != 3 {
		t.Errorf("expected 5x3, got %dx%d", lvl.Width(), lvl.Height())
	}
	if lvl.Start != puzzle.C(0, 0) || lvl.StartDir != puzzle.Right {
		t.Errorf("start = %v %v", lvl.Start, lvl.StartDir)
	}
	if lvl.Inventory[puzzle.ToolRotateCW] != 1 || lvl.Inventory[puzzle.ToolMirror] != 2 {
		t.Errorf("inventory = %v", lvl.Inventory)
	}
	if len(lvl.Teleporters) != 2 {
		t.Fatalf("teleporters = %d, expected 2", len(lvl.Teleporters))
	}
	out, ok := lvl.ExitFor(lvl.Teleporters[0])
	if !ok || out.At != puzzle.C(2, 2) || out.Exit != puzzle.Right {
		t.Errorf("exit = %+v, %v", out, ok)
	}
	if f, ok := lvl.ForceTileAt(puzzle.C(3, 1)); !ok || f.Action != puzzle.ToolRotateCCW {
		t.Errorf("force tile = %+v, %v", f, ok)
	}
	if lvl.CreatedBy != "tester" {
		t.Errorf("created_by = %q", lvl.CreatedBy)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not yaml", "id: [unterminated"},
		{"no id", "layout: [\"S.E\"]"},
		{"unknown tile", "id: x\nlayout: [\"S?E\"]"},
		{"two starts", "id: x\nlayout: [\"S.S\"]"},
		{"ragged", "id: x\nlayout: [\"S.E\", \".\"]"},
		{"bad direction", "id: x\nlayout: [\"S.E\"]\nstart_direction: sideways"},
		{"unknown tool", "id: x\nlayout: [\"S.E\"]\ninventory: {hammer: 1}"},
		{"unpaired teleporter", "id: x\nlayout: [\"STE\"]\nteleporters: [{pair: 0, x: 1, y: 0, role: in}]"},
		{"force tile outside", "id: x\nlayout: [\"S.E\"]\nforce_tiles: [{x: 7, y: 0, action: mirror}]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := levels.Parse([]byte(tc.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	lvl, err := levels.Parse([]byte(portalLevel))
	if err != nil {
		t.Fatal(err)
	}

	data, err := levels.Marshal(lvl)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	back, err := levels.Parse(data)
	if err != nil {
		t.Fatalf("Parse(Marshal()) failed: %v\n%s", err, data)
	}

	if got, want := puzzle.RenderASCII(back, nil, nil), puzzle.RenderASCII(lvl, nil, nil); got != want {
		t.Errorf("board changed:\n%s\nexpected\n%s", got, want)
	}
	if len(back.Teleporters) != 2 || len(back.ForceTiles) != 1 {
		t.Errorf("teleporters=%d force=%d", len(back.Teleporters), len(back.ForceTiles))
	}
}

func TestLoaderLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "id: b\nlayout: [\"S.E\"]\n")
	writeFile(t, dir, "nested/a.yml", "id: a\nlayout: [\"SE\"]\n")
	writeFile(t, dir, "broken.yaml", "id: [nope")
	writeFile(t, dir, "notes.txt", "id: c\nlayout: [\"SE\"]\n")

	lvls, err := levels.NewLoader(dir).LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	if len(lvls) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(lvls))
	}
	if lvls[0].ID != "a" || lvls[1].ID != "b" {
		t.Errorf("levels not sorted: %s, %s", lvls[0].ID, lvls[1].ID)
	}
	if lvls[0].Origin != "user" {
		t.Errorf("origin = %q, expected user", lvls[0].Origin)
	}
}

func TestLoaderMissingRoot(t *testing.T) {
	lvls, err := levels.NewLoader(filepath.Join(t.TempDir(), "missing")).LoadAll()
	if err != nil || len(lvls) != 0 {
		t.Errorf("LoadAll on a missing root = %v, %v", lvls, err)
	}
}

func TestLoaderNotFound(t *testing.T) {
	_, err := levels.NewLoader(t.TempDir()).LoadByID("nonexistent")
	if !errors.Is(err, levels.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoaderSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "levels")
	loader := levels.NewLoader(dir)

	lvl, err := puzzle.LevelFromLayout("my level/1", "S.c", "..E")
	if err != nil {
		t.Fatal(err)
	}
	path, err := loader.Save(lvl)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Base(path) != "my_level_1.yaml" {
		t.Errorf("file name = %s", filepath.Base(path))
	}

	got, err := loader.LoadByID("my level/1")
	if err != nil {
		t.Fatalf("LoadByID failed: %v", err)
	}
	if got.TotalCoins() != 1 {
		t.Errorf("TotalCoins = %d, expected 1", got.TotalCoins())
	}

	lvl.Grid[1] = lvl.Grid[1][:1]
	if _, err := loader.Save(lvl); !errors.Is(err, puzzle.ErrRaggedGrid) {
		t.Errorf("Save of a ragged level = %v, expected ErrRaggedGrid", err)
	}
}

func TestBuiltin(t *testing.T) {
	lvls, err := levels.Builtin()
	if err != nil {
		t.Fatalf("Builtin failed: %v", err)
	}
	if len(lvls) != 20 {
		t.Fatalf("expected 20 builtin levels, got %d", len(lvls))
	}
	for i, lvl := range lvls {
		if lvl.Width() != 10 || lvl.Height() != 10 {
			t.Errorf("%s: expected 10x10, got %dx%d", lvl.ID, lvl.Width(), lvl.Height())
		}
		if !lvl.HasStart() {
			t.Errorf("%s: no start", lvl.ID)
		}
		if lvl.Origin != "builtin" {
			t.Errorf("%s: origin = %q", lvl.ID, lvl.Origin)
		}
		if i > 0 && lvls[i-1].ID >= lvl.ID {
			t.Errorf("levels not sorted: %s >= %s", lvls[i-1].ID, lvl.ID)
		}
	}

	// Copies are independent
	lvls[0].Name = "changed"
	again, _ := levels.Builtin()
	if again[0].Name == "changed" {
		t.Error("Builtin returned shared levels")
	}
}

func TestBuiltinSolutions(t *testing.T) {
	lvls, err := levels.Builtin()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		id    string
		tools []puzzle.PlacedTool
		coins int
	}{
		{"01", []puzzle.PlacedTool{{At: puzzle.C(2, 5), Kind: puzzle.ToolRotateCW}}, 1},
		{"03", []puzzle.PlacedTool{{At: puzzle.C(3, 2), Kind: puzzle.ToolMirror}}, 1},
	}

	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			lvl, err := levels.Find(lvls, tc.id)
			if err != nil {
				t.Fatal(err)
			}
			tools := puzzle.NewPlacedTools(lvl.Inventory)
			for _, p := range tc.tools {
				if !tools.ToggleAt(p.At, p.Kind, true) {
					t.Fatalf("could not place %v at %v", p.Kind, p.At)
				}
			}

			trace := puzzle.Simulate(lvl, tools, 200)
			if trace.Outcome != puzzle.Win {
				t.Fatalf("outcome = %v (%v)", trace.Outcome, trace.Reason)
			}
			if trace.Coins != tc.coins {
				t.Errorf("coins = %d, expected %d", trace.Coins, tc.coins)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	mk := func(id string) *puzzle.Level {
		l, _ := puzzle.LevelFromLayout(id, "SE")
		return l
	}
	base := []*puzzle.Level{mk("02"), mk("01")}
	extra := []*puzzle.Level{mk("zz"), mk("01"), mk("aa")}

	got := levels.Merge(base, extra)
	want := []string{"02", "01", "aa", "zz"}
	if len(got) != len(want) {
		t.Fatalf("Merge returned %d levels, expected %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Merge()[%d] = %s, expected %s", i, got[i].ID, id)
		}
	}
}
