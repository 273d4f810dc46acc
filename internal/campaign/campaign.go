// Package campaign chains levels together and keeps score: per-level high
// scores, the fail ranking and the run history, all behind a storage port.
package campaign

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/logic-reflect/internal/levels"
	"github.com/vovakirdan/logic-reflect/internal/puzzle"
	"github.com/vovakirdan/logic-reflect/internal/run"
)

// ErrUnknownLevel is returned when a level ID is not part of the campaign.
var ErrUnknownLevel = errors.New("campaign: unknown level")

// Campaign is an ordered list of levels with a cursor and score keeping.
// It implements run.Sink so that wins and finished runs are recorded as
// the controller reports them. Safe for concurrent use.
type Campaign struct {
	mu       sync.Mutex
	levels   []*puzzle.Level
	user     []*puzzle.Level
	idx      int
	progress map[string]Progress
	port     Persistence
	logger   *log.Logger
	now      func() time.Time
}

// New builds a campaign from base (usually the builtin levels) followed
// by the user levels stored behind port. A nil port keeps everything in
// memory.
func New(base []*puzzle.Level, port Persistence, logger *log.Logger) (*Campaign, error) {
	if port == nil {
		port = NewMemory()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	user, err := port.LoadLevels()
	if err != nil {
		return nil, fmt.Errorf("campaign: cannot load levels: %w", err)
	}
	progress, err := port.LoadProgress()
	if err != nil {
		return nil, fmt.Errorf("campaign: cannot load progress: %w", err)
	}
	if progress == nil {
		progress = make(map[string]Progress)
	}

	all := levels.Merge(base, user)
	if len(all) == 0 {
		return nil, errors.New("campaign: no levels")
	}

	return &Campaign{
		levels:   all,
		user:     user,
		progress: progress,
		port:     port,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Levels returns the campaign order. The levels must be treated as read-only.
func (c *Campaign) Levels() []*puzzle.Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*puzzle.Level(nil), c.levels...)
}

// Current returns the level under the cursor.
func (c *Campaign) Current() *puzzle.Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.levels[c.idx]
}

// Index returns the cursor position.
func (c *Campaign) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idx
}

// Select moves the cursor to the level with the given ID.
func (c *Campaign) Select(id string) (*puzzle.Level, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, l := range c.levels {
		if l.ID == id {
			c.idx = i
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownLevel, id)
}

// Next moves the cursor forward and returns the new level, or nil when
// the cursor is already on the last level.
func (c *Campaign) Next() *puzzle.Level {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.idx+1 >= len(c.levels) {
		return nil
	}
	c.idx++
	return c.levels[c.idx]
}

// Progress returns the stored progress for a level.
func (c *Campaign) Progress(id string) Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.progress[id]; ok {
		return p
	}
	return Progress{LevelID: id}
}

// RecordWin keeps the best coin count for the level and the time of its
// first completion.
func (c *Campaign) RecordWin(id string, coins int) (Progress, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.find(id) == nil {
		return Progress{}, fmt.Errorf("%w: %s", ErrUnknownLevel, id)
	}

	p, ok := c.progress[id]
	if !ok {
		p = Progress{LevelID: id}
	}
	if coins > p.HighScore {
		p.HighScore = coins
	}
	if p.CompletedAt.IsZero() {
		p.CompletedAt = c.now()
	}
	c.progress[id] = p

	if err := c.port.SaveProgress(p); err != nil {
		return p, fmt.Errorf("campaign: cannot save progress: %w", err)
	}
	c.logger.Debug("progress saved", "level", id, "high", p.HighScore)
	return p, nil
}

// SubmitFail adds a ranking entry for a failed run.
func (c *Campaign) SubmitFail(initials, id string, coins int) (RankingEntry, error) {
	c.mu.Lock()
	level := c.find(id)
	c.mu.Unlock()

	name := id
	if level != nil {
		name = level.Name
	}
	e := RankingEntry{
		Initials: NormalizeInitials(initials),
		Score:    coins,
		Level:    name,
		At:       c.now(),
	}
	if err := c.port.SubmitRankingEntry(e); err != nil {
		return e, fmt.Errorf("campaign: cannot submit ranking entry: %w", err)
	}
	c.logger.Info("ranking entry submitted", "initials", e.Initials, "score", e.Score, "level", e.Level)
	return e, nil
}

// Ranking returns the best entries, DefaultRankingSize when limit <= 0.
func (c *Campaign) Ranking(limit int) ([]RankingEntry, error) {
	if limit <= 0 {
		limit = DefaultRankingSize
	}
	entries, err := c.port.LoadRanking(limit)
	if err != nil {
		return nil, fmt.Errorf("campaign: cannot load ranking: %w", err)
	}
	SortRanking(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// TotalCoins sums the high scores of every level.
func (c *Campaign) TotalCoins() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, l := range c.levels {
		total += c.progress[l.ID].HighScore
	}
	return total
}

// AddLevel validates level, stores it with the other user levels and
// appends it to the campaign. An existing user level with the same ID is
// replaced; builtin IDs are rejected.
func (c *Campaign) AddLevel(level *puzzle.Level) error {
	if err := level.Validate(); err != nil {
		return fmt.Errorf("campaign: level %s: %w", level.ID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if level.Origin == "" {
		level.Origin = "user"
	}

	user := make([]*puzzle.Level, 0, len(c.user)+1)
	replaced := false
	for _, l := range c.user {
		if l.ID == level.ID {
			user = append(user, level)
			replaced = true
			continue
		}
		user = append(user, l)
	}
	if !replaced {
		if c.find(level.ID) != nil {
			return fmt.Errorf("campaign: level id %s is reserved", level.ID)
		}
		user = append(user, level)
	}

	if err := c.port.SaveLevels(user); err != nil {
		return fmt.Errorf("campaign: cannot save levels: %w", err)
	}
	c.user = user

	for i, l := range c.levels {
		if l.ID == level.ID {
			c.levels[i] = level
			return nil
		}
	}
	c.levels = append(c.levels, level)
	return nil
}

// find returns the level with the given ID. Caller holds mu.
func (c *Campaign) find(id string) *puzzle.Level {
	for _, l := range c.levels {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// Snapshot implements run.Sink.
func (c *Campaign) Snapshot(run.Frame) {}

// Outcome implements run.Sink. Wins update progress, and wins and fails
// are appended to the run history when the port keeps one. ALL_COMPLETE
// follows a win that was already recorded, so it is not a run. Storage
// errors are logged, never returned.
func (c *Campaign) Outcome(r run.Result) {
	if r.Status == run.Win {
		if _, err := c.RecordWin(r.Level, r.Coins); err != nil {
			c.logger.Warn("could not record win", "level", r.Level, "error", err)
		}
	}
	if r.Status != run.Win && r.Status != run.Fail {
		return
	}

	if rec, ok := c.port.(RunRecorder); ok {
		err := rec.RecordRun(RunRecord{
			LevelID: r.Level,
			Status:  r.Status.String(),
			Coins:   r.Coins,
			Ticks:   r.Ticks,
			At:      c.now(),
		})
		if err != nil {
			c.logger.Warn("could not record run", "level", r.Level, "error", err)
		}
	}
}

var _ run.Sink = (*Campaign)(nil)
