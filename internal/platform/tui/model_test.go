package tui

import (
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/logic-reflect/internal/campaign"
	"github.com/vovakirdan/logic-reflect/internal/puzzle"
	"github.com/vovakirdan/logic-reflect/internal/run"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

type harness struct {
	t     *testing.T
	m     Model
	sched *run.ManualScheduler
	port  *campaign.Memory
	camp  *campaign.Campaign
}

func newHarness(t *testing.T, layouts ...[]string) *harness {
	t.Helper()
	var lvls []*puzzle.Level
	for i, rows := range layouts {
		l, err := puzzle.LevelFromLayout(string(rune('a'+i)), rows...)
		if err != nil {
			t.Fatal(err)
		}
		l.Inventory = puzzle.Inventory{puzzle.ToolRotateCW: 1, puzzle.ToolRotateCCW: 1, puzzle.ToolMirror: 1}
		lvls = append(lvls, l)
	}

	port := campaign.NewMemory()
	camp, err := campaign.New(lvls, port, nil)
	if err != nil {
		t.Fatal(err)
	}
	sched := run.NewManualScheduler()
	m := NewModel(Options{Campaign: camp, Scheduler: sched, Width: 60, Height: 30})
	t.Cleanup(m.Close)

	return &harness{t: t, m: m, sched: sched, port: port, camp: camp}
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	next, _ := h.m.Update(msg)
	h.m = next.(Model)
}

// drain delivers every queued controller event to the model.
func (h *harness) drain() {
	for {
		select {
		case evt := <-h.m.events.Events():
			h.send(EventMsg{Event: evt})
		default:
			return
		}
	}
}

func (h *harness) advanceTicks(n int) {
	h.sched.Advance(run.DefaultTickInterval * time.Duration(n))
	h.drain()
}

func TestRenderBoard(t *testing.T) {
	lvl, err := puzzle.LevelFromLayout("x", "S.c", "#kE")
	if err != nil {
		t.Fatal(err)
	}
	lvl.ForceTiles = []puzzle.ForceTile{{At: puzzle.C(1, 1), Action: puzzle.ToolMirror}}

	view := BoardView{
		Level:     lvl,
		Tools:     []puzzle.PlacedTool{{At: puzzle.C(1, 0), Kind: puzzle.ToolRotateCW}},
		Collector: puzzle.Collector{X: 0, Y: 0, Direction: puzzle.Right, Visible: true},
		State:     puzzle.StateSnapshot{CollectedItems: []puzzle.Coord{puzzle.C(2, 0)}},
	}

	got := stripANSI(RenderBoard(view, DefaultTheme()))
	want := "> R .\n# m E"
	if got != want {
		t.Errorf("RenderBoard =\n%q\nexpected\n%q", got, want)
	}

	// Hidden collector shows the tile underneath
	view.Collector.Visible = false
	if got := stripANSI(RenderBoard(view, DefaultTheme())); !strings.HasPrefix(got, "S R") {
		t.Errorf("hidden collector rendered: %q", got)
	}
}

func TestModelPlaceTools(t *testing.T) {
	h := newHarness(t, []string{"S..E"})

	h.send(keySpace)
	if len(h.m.ctl.Tools()) != 0 {
		t.Fatal("placed a tool without a selection")
	}
	if h.m.notice == "" {
		t.Error("expected a notice for the refused toggle")
	}

	h.send(runes("3"))
	h.send(runes("l"))
	h.send(keySpace)
	tools := h.m.ctl.Tools()
	if len(tools) != 1 || tools[0].At != puzzle.C(1, 0) || tools[0].Kind != puzzle.ToolMirror {
		t.Fatalf("tools = %+v", tools)
	}

	// Same cell again removes it
	h.send(keySpace)
	if len(h.m.ctl.Tools()) != 0 {
		t.Error("toggle did not remove the tool")
	}

	// Cursor stays inside the grid
	for i := 0; i < 10; i++ {
		h.send(runes("l"))
	}
	if h.m.cursor != puzzle.C(3, 0) {
		t.Errorf("cursor = %v, expected (3,0)", h.m.cursor)
	}
}

func TestModelWinAndAdvance(t *testing.T) {
	h := newHarness(t, []string{"S.E"}, []string{"SE"})

	h.send(keyEnter)
	if h.m.ctl.Status() != run.Running {
		t.Fatalf("status = %v, expected RUNNING", h.m.ctl.Status())
	}
	h.advanceTicks(2)
	if h.m.ctl.Status() != run.Win {
		t.Fatalf("status = %v, expected WIN", h.m.ctl.Status())
	}
	if !h.camp.Progress("a").Completed() {
		t.Error("win not recorded in the campaign")
	}
	if !strings.Contains(stripANSI(h.m.View()), "LEVEL COMPLETE") {
		t.Error("win banner missing")
	}

	h.send(runes("n"))
	if h.m.ctl.Level().ID != "b" || h.m.ctl.Status() != run.Setup {
		t.Fatalf("after next: level %s status %v", h.m.ctl.Level().ID, h.m.ctl.Status())
	}

	h.send(keyEnter)
	h.advanceTicks(1)
	h.send(runes("n"))
	h.drain()
	if h.m.ctl.Status() != run.AllComplete {
		t.Fatalf("status = %v, expected ALL_COMPLETE", h.m.ctl.Status())
	}
	if !strings.Contains(stripANSI(h.m.View()), "ALL LEVELS COMPLETE") {
		t.Error("completion banner missing")
	}

	h.send(runes("r"))
	if h.m.ctl.Status() != run.Setup || h.m.ctl.Level().ID != "b" {
		t.Errorf("reset from ALL_COMPLETE: level %s status %v", h.m.ctl.Level().ID, h.m.ctl.Status())
	}
}

func TestModelFailSubmitsInitials(t *testing.T) {
	h := newHarness(t, []string{"S#E"})

	h.send(keyEnter)
	h.advanceTicks(1)
	if h.m.ctl.Status() != run.Fail {
		t.Fatalf("status = %v, expected FAIL", h.m.ctl.Status())
	}
	if h.m.screen != screenInitials {
		t.Fatalf("screen = %v, expected the initials prompt", h.m.screen)
	}

	h.send(runes("z"))
	h.send(runes("e"))
	h.send(runes("d"))
	h.send(keyEnter)

	if h.m.screen != screenRanking {
		t.Fatalf("screen = %v, expected the ranking", h.m.screen)
	}
	entries, err := h.camp.Ranking(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Initials != "ZED" || entries[0].Score != 0 {
		t.Errorf("ranking = %+v", entries)
	}
	if h.m.ranking.highlight != 0 {
		t.Errorf("highlight = %d, expected the new entry", h.m.ranking.highlight)
	}

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	if h.m.screen != screenBoard {
		t.Errorf("screen = %v, expected the board", h.m.screen)
	}
	if runs := h.port.Runs(); len(runs) != 1 || runs[0].Status != "FAIL" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestModelLevelPicker(t *testing.T) {
	h := newHarness(t, []string{"S.E"}, []string{"S..E"})

	h.send(runes("b"))
	if h.m.screen != screenMenu {
		t.Fatalf("screen = %v, expected the level picker", h.m.screen)
	}
	h.send(runes("j"))
	h.send(keyEnter)

	if h.m.screen != screenBoard {
		t.Fatalf("screen = %v, expected the board", h.m.screen)
	}
	if h.m.ctl.Level().ID != "b" || h.camp.Current().ID != "b" {
		t.Errorf("selected level = %s / %s", h.m.ctl.Level().ID, h.camp.Current().ID)
	}
}

func TestModelQuitStopsRun(t *testing.T) {
	h := newHarness(t, []string{"S........E"})

	h.send(keyEnter)
	h.advanceTicks(1)
	next, cmd := h.m.Update(runes("q"))
	h.m = next.(Model)
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if h.m.ctl.Status() != run.Setup {
		t.Errorf("status after quit = %v, expected the run to be stopped", h.m.ctl.Status())
	}
	if h.sched.Advance(run.DefaultTickInterval*5) != 0 {
		t.Error("timers still firing after quit")
	}
}
