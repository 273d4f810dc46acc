package campaign

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vovakirdan/logic-reflect/internal/puzzle"
)

// DefaultRankingSize is the number of ranking entries shown by default.
const DefaultRankingSize = 10

// RankingEntry is one line of the fail ranking.
type RankingEntry struct {
	Initials string    `json:"initials"`
	Score    int       `json:"score"`
	Level    string    `json:"level"` // level name
	At       time.Time `json:"at"`
}

// Progress is the per-level record kept across sessions.
type Progress struct {
	LevelID     string    `json:"levelId"`
	HighScore   int       `json:"highScore"`
	CompletedAt time.Time `json:"completedAt"` // zero until the first win
}

// Completed reports whether the level has been won at least once.
func (p Progress) Completed() bool {
	return !p.CompletedAt.IsZero()
}

// RunRecord is one finished run.
type RunRecord struct {
	LevelID string
	Status  string
	Coins   int
	Ticks   int
	At      time.Time
}

// Persistence is the storage port used by a Campaign.
type Persistence interface {
	LoadLevels() ([]*puzzle.Level, error)
	SaveLevels(levels []*puzzle.Level) error
	LoadRanking(limit int) ([]RankingEntry, error)
	SubmitRankingEntry(e RankingEntry) error
	LoadProgress() (map[string]Progress, error)
	SaveProgress(p Progress) error
}

// RunRecorder is optionally implemented by a Persistence to keep a
// history of finished runs.
type RunRecorder interface {
	RecordRun(r RunRecord) error
}

// NormalizeInitials upper-cases s, keeps letters A-Z only and pads or
// truncates the result to three letters.
func NormalizeInitials(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(s) {
		if r >= 'A' && r <= 'Z' {
			sb.WriteRune(r)
			if sb.Len() == 3 {
				break
			}
		}
	}
	for sb.Len() < 3 {
		sb.WriteByte('A')
	}
	return sb.String()
}

// SortRanking orders entries by score descending, earlier entries first
// on ties.
func SortRanking(entries []RankingEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].At.Before(entries[j].At)
	})
}

// Memory is an in-process Persistence. It is used when no database is
// available and in tests.
type Memory struct {
	mu       sync.Mutex
	levels   []*puzzle.Level
	ranking  []RankingEntry
	progress map[string]Progress
	runs     []RunRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{progress: make(map[string]Progress)}
}

// LoadLevels returns copies of the saved levels.
func (m *Memory) LoadLevels() ([]*puzzle.Level, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*puzzle.Level, len(m.levels))
	for i, l := range m.levels {
		out[i] = l.Clone()
	}
	return out, nil
}

// SaveLevels replaces the saved levels.
func (m *Memory) SaveLevels(levels []*puzzle.Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.levels = make([]*puzzle.Level, len(levels))
	for i, l := range levels {
		m.levels[i] = l.Clone()
	}
	return nil
}

// LoadRanking returns the top limit entries.
func (m *Memory) LoadRanking(limit int) ([]RankingEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := append([]RankingEntry(nil), m.ranking...)
	SortRanking(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SubmitRankingEntry appends e.
func (m *Memory) SubmitRankingEntry(e RankingEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ranking = append(m.ranking, e)
	return nil
}

// LoadProgress returns a copy of all progress records.
func (m *Memory) LoadProgress() (map[string]Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Progress, len(m.progress))
	for k, v := range m.progress {
		out[k] = v
	}
	return out, nil
}

// SaveProgress stores p under its level ID.
func (m *Memory) SaveProgress(p Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress[p.LevelID] = p
	return nil
}

// RecordRun appends r.
func (m *Memory) RecordRun(r RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, r)
	return nil
}

// Runs returns the recorded runs in insertion order.
func (m *Memory) Runs() []RunRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RunRecord(nil), m.runs...)
}

var (
	_ Persistence = (*Memory)(nil)
	_ RunRecorder = (*Memory)(nil)
)
