package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/logic-reflect/internal/campaign"
	"github.com/vovakirdan/logic-reflect/internal/puzzle"
	"github.com/vovakirdan/logic-reflect/internal/run"
)

const noticeTTL = 3 * time.Second

type screen int

const (
	screenBoard screen = iota
	screenMenu
	screenInitials
	screenRanking
)

// Options configures a player Model.
type Options struct {
	Campaign      *campaign.Campaign
	TickInterval  time.Duration
	TeleportDelay time.Duration
	RankingSize   int
	Scheduler     run.Scheduler // wall clock when nil
	Sink          run.Sink      // optional extra sink, e.g. a websocket hub
	Logger        *log.Logger
	Monochrome    bool
	Player        string // pre-fills the initials prompt
	Width         int
	Height        int
}

// Model is the Bubble Tea model for playing a campaign.
type Model struct {
	opts     Options
	camp     *campaign.Campaign
	ctl      *run.Controller
	live     *liveController
	events   *run.ChanSink
	keys     KeyMap
	help     help.Model
	theme    Theme
	screen   screen
	menu     MenuModel
	ranking  RankingModel
	initials textinput.Model
	cursor   puzzle.Coord
	last     *run.Result
	notice   string
	noticeID int
	width    int
	height   int
	quitting bool
}

// NewModel creates a player on the campaign's current level.
func NewModel(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Width == 0 {
		opts.Width = 80
	}
	if opts.Height == 0 {
		opts.Height = 24
	}

	theme := DefaultTheme()
	if opts.Monochrome {
		theme = MonochromeTheme()
	}

	ti := textinput.New()
	ti.Prompt = "Initials: "
	ti.Placeholder = "AAA"
	ti.CharLimit = 3
	ti.Width = 3

	h := help.New()
	h.Width = opts.Width

	m := Model{
		opts:     opts,
		camp:     opts.Campaign,
		live:     &liveController{},
		events:   run.NewChanSink(64),
		keys:     DefaultKeyMap(),
		help:     h,
		theme:    theme,
		initials: ti,
		width:    opts.Width,
		height:   opts.Height,
	}
	m.ctl = m.newController(m.camp.Current())
	m.live.set(m.ctl)
	return m
}

// liveController tracks the controller a program currently drives so it
// can be stopped from outside the Bubble Tea loop.
type liveController struct {
	mu  sync.Mutex
	ctl *run.Controller
}

func (l *liveController) set(ctl *run.Controller) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ctl = ctl
}

func (l *liveController) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ctl != nil {
		l.ctl.Reset()
	}
}

func (m Model) newController(level *puzzle.Level) *run.Controller {
	return run.New(level, run.Options{
		TickInterval:  m.opts.TickInterval,
		TeleportDelay: m.opts.TeleportDelay,
		Scheduler:     m.opts.Scheduler,
		Sink:          run.MultiSink{m.events, m.camp, m.opts.Sink},
		Logger:        m.opts.Logger,
	})
}

// Init starts listening for controller events.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.menu, _ = m.menu.Update(msg)
		m.ranking, _ = m.ranking.Update(msg)
		return m, nil

	case EventMsg:
		cmd := m.handleEvent(msg.Event)
		return m, tea.Batch(waitForEvent(m.events), cmd)

	case clearNoticeMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch m.screen {
		case screenMenu:
			return m.updateMenu(msg)
		case screenInitials:
			return m.updateInitials(msg)
		case screenRanking:
			return m.updateRanking(msg)
		default:
			return m.updateBoard(msg)
		}
	}

	if m.screen == screenInitials {
		var cmd tea.Cmd
		m.initials, cmd = m.initials.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleEvent reacts to outcomes. Frames need no handling since View
// reads the controller directly.
func (m *Model) handleEvent(evt run.Event) tea.Cmd {
	res, ok := evt.(run.Result)
	if !ok {
		return nil
	}
	if res.Level != m.ctl.Level().ID {
		// Outcome of a controller that was replaced
		return nil
	}
	m.last = &res

	switch res.Status {
	case run.Fail:
		m.screen = screenInitials
		m.initials.SetValue("")
		if m.opts.Player != "" {
			m.initials.SetValue(campaign.NormalizeInitials(m.opts.Player))
		}
		m.initials.CursorEnd()
		return m.initials.Focus()
	case run.Win:
		return m.setNotice(fmt.Sprintf("Collected %d coin(s) in %d ticks", res.Coins, res.Ticks))
	}
	return nil
}

// updateBoard processes keyboard input on the board screen.
func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	lvl := m.ctl.Level()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursor.Y > 0 {
			m.cursor.Y--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor.Y < lvl.Height()-1 {
			m.cursor.Y++
		}
	case key.Matches(msg, m.keys.Left):
		if m.cursor.X > 0 {
			m.cursor.X--
		}
	case key.Matches(msg, m.keys.Right):
		if m.cursor.X < lvl.Width()-1 {
			m.cursor.X++
		}

	case key.Matches(msg, m.keys.Deselect):
		m.ctl.Deselect()

	case key.Matches(msg, m.keys.Toggle):
		if !m.ctl.ToggleAt(m.cursor.X, m.cursor.Y) {
			return m, m.setNotice(m.toggleRefusal())
		}

	case key.Matches(msg, m.keys.Play):
		if !m.ctl.Play() {
			if m.ctl.Status() != run.Setup {
				return m, m.setNotice("Press r to reset first")
			}
			return m, m.setNotice("This level has no start")
		}
		m.last = nil

	case key.Matches(msg, m.keys.Reset):
		m.ctl.Reset()
		m.last = nil

	case key.Matches(msg, m.keys.Next):
		if m.ctl.Status() != run.Win {
			return m, m.setNotice("Win the level first")
		}
		m.ctl.Advance(m.camp.Next())
		m.cursor = puzzle.C(0, 0)
		m.last = nil

	case key.Matches(msg, m.keys.Levels):
		m.menu = NewMenuModel(m.camp, m.theme, m.width, m.height)
		m.screen = screenMenu

	case key.Matches(msg, m.keys.Scores):
		return m, m.openRanking(nil)

	default:
		if tool, ok := m.keys.ToolFor(msg); ok {
			if !m.ctl.Select(tool) {
				return m, m.setNotice("Tools can only be changed before playing")
			}
		}
	}

	return m, nil
}

func (m Model) toggleRefusal() string {
	if m.ctl.Status() != run.Setup {
		return "Press r to edit tools again"
	}
	tool, ok := m.ctl.Selected()
	if !ok {
		return "Select a tool with 1, 2 or 3"
	}
	return fmt.Sprintf("No %s left", tool)
}

// updateMenu forwards input to the level picker.
func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.menu, _ = m.menu.Update(msg)

	switch {
	case m.menu.IsQuitting():
		return m.quit()
	case m.menu.WantsBack():
		m.screen = screenBoard
	case m.menu.Selected() != nil:
		lvl, err := m.camp.Select(m.menu.Selected().LevelID)
		m.screen = screenBoard
		if err != nil {
			return m, m.setNotice(err.Error())
		}
		m.ctl.Reset()
		m.ctl = m.newController(lvl)
		m.live.set(m.ctl)
		m.cursor = puzzle.C(0, 0)
		m.last = nil
	}
	return m, nil
}

// updateInitials handles the ranking prompt shown after a failed run.
func (m Model) updateInitials(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "esc":
		m.initials.Blur()
		m.screen = screenBoard
		return m, nil
	case "enter":
		m.initials.Blur()
		m.screen = screenBoard
		if m.last == nil {
			return m, nil
		}
		entry, err := m.camp.SubmitFail(m.initials.Value(), m.last.Level, m.last.Coins)
		if err != nil {
			m.opts.Logger.Warn("could not submit ranking entry", "error", err)
			return m, m.setNotice("Could not save the ranking entry")
		}
		return m, m.openRanking(&entry)
	}

	var cmd tea.Cmd
	m.initials, cmd = m.initials.Update(msg)
	return m, cmd
}

// updateRanking forwards input to the ranking table.
func (m Model) updateRanking(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.ranking, cmd = m.ranking.Update(msg)

	switch {
	case m.ranking.IsQuitting():
		return m.quit()
	case m.ranking.WantsBack():
		m.screen = screenBoard
	}
	return m, cmd
}

// openRanking loads the ranking and selects entry when it made the list.
func (m *Model) openRanking(entry *campaign.RankingEntry) tea.Cmd {
	entries, err := m.camp.Ranking(m.opts.RankingSize)
	if err != nil {
		m.opts.Logger.Warn("could not load ranking", "error", err)
		return m.setNotice("Could not load the ranking")
	}

	highlight := -1
	if entry != nil {
		for i, e := range entries {
			if e.Initials == entry.Initials && e.Score == entry.Score && e.Level == entry.Level &&
				e.At.Sub(entry.At).Abs() < time.Second {
				highlight = i
				break
			}
		}
	}

	m.ranking = NewRankingModel(entries, highlight, m.width, m.height)
	m.screen = screenRanking
	return nil
}

func (m *Model) setNotice(text string) tea.Cmd {
	m.noticeID++
	m.notice = text
	return clearNoticeCmd(m.noticeID, noticeTTL)
}

// Close stops event delivery and cancels any pending tick of the current
// run. Safe to call from any goroutine, more than once.
func (m Model) Close() {
	m.events.Close()
	m.live.stop()
}

// quit stops the running controller and exits the program.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.Close()
	return m, tea.Quit
}

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenMenu:
		return m.menu.View()
	case screenRanking:
		return m.ranking.View()
	}
	return m.boardView()
}

func (m Model) boardView() string {
	lvl := m.ctl.Level()
	frame := m.ctl.Frame()
	status := frame.Status
	sep := m.theme.HUDSeparator.Render("  |  ")

	var b strings.Builder
	b.WriteString("\n")

	title := m.theme.HUDTitle.Render(fmt.Sprintf("%s  (%d/%d)", lvl.Name, m.camp.Index()+1, len(m.camp.Levels())))
	b.WriteString(centerText(title, m.width))
	b.WriteString("\n")

	hasKey := "-"
	if frame.State.HasKey {
		hasKey = "yes"
	}
	hud := strings.Join([]string{
		m.theme.HUDValue.Render(status.String()),
		m.theme.HUDValue.Render(fmt.Sprintf("Coins %d/%d", frame.State.CollectedCoins, lvl.TotalCoins())),
		m.theme.HUDValue.Render("Key " + hasKey),
		m.theme.HUDValue.Render(fmt.Sprintf("Best %d", m.camp.Progress(lvl.ID).HighScore)),
		m.theme.HUDValue.Render(fmt.Sprintf("Total %d", m.camp.TotalCoins())),
	}, sep)
	b.WriteString(centerText(hud, m.width))
	b.WriteString("\n\n")

	board := RenderBoard(BoardView{
		Level:      lvl,
		Tools:      m.ctl.Tools(),
		Collector:  frame.Collector,
		State:      frame.State,
		Cursor:     m.cursor,
		ShowCursor: status == run.Setup,
	}, m.theme)
	b.WriteString(centerBlock(m.theme.BoardBorder.Render(board), m.width))
	b.WriteString("\n")

	b.WriteString(centerText(m.inventoryLine(), m.width))
	b.WriteString("\n\n")

	b.WriteString(centerText(m.statusLine(status), m.width))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(centerText(m.theme.HUDControls.Render(m.notice), m.width))
	}
	b.WriteString("\n")

	if m.screen == screenInitials {
		b.WriteString(centerText(m.theme.OverlayText.Render("Leave your initials for the ranking"), m.width))
		b.WriteString("\n")
		b.WriteString(centerText(m.initials.View(), m.width))
		b.WriteString("\n")
		b.WriteString(centerText(m.theme.HUDControls.Render("Enter: Submit  |  Esc: Skip"), m.width))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(m.theme.HUDControls.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) inventoryLine() string {
	selected, hasSelect := m.ctl.Selected()
	parts := make([]string, 0, len(puzzle.AllTools()))
	for i, tool := range puzzle.AllTools() {
		label := fmt.Sprintf("[%d] %c %s x%d", i+1, tool.Glyph(), tool, m.ctl.Remaining(tool))
		if hasSelect && tool == selected {
			parts = append(parts, m.theme.HUDSelected.Render(label))
			continue
		}
		parts = append(parts, m.theme.HUDValue.Render(label))
	}
	return strings.Join(parts, "   ")
}

func (m Model) statusLine(status run.Status) string {
	switch status {
	case run.Running:
		return m.theme.OverlayText.Render(fmt.Sprintf("Running... tick %d", m.ctl.Ticks()))
	case run.Win:
		return m.theme.OverlayWin.Render("LEVEL COMPLETE  -  n: next level  r: replay")
	case run.Fail:
		reason := ""
		if m.last != nil && m.last.Reason != "" {
			reason = " (" + m.last.Reason + ")"
		}
		return m.theme.OverlayFail.Render("FAILED" + reason + "  -  r: try again")
	case run.AllComplete:
		return m.theme.OverlayWin.Render(fmt.Sprintf("ALL LEVELS COMPLETE  -  %d coins in total", m.camp.TotalCoins()))
	default:
		return m.theme.OverlayText.Render("Place your tools, then press enter")
	}
}

// Run starts the Bubble Tea program with a new player.
func Run(opts Options) error {
	model := NewModel(opts)
	defer model.Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
