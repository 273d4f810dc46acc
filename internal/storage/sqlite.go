// Package storage provides SQLite-based persistence for the campaign:
// user levels, per-level progress, the fail ranking and the run history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/logic-reflect/internal/campaign"
	"github.com/vovakirdan/logic-reflect/internal/levels"
	"github.com/vovakirdan/logic-reflect/internal/puzzle"
)

const timeLayout = "2006-01-02 15:04:05.000"

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// SSH sessions write concurrently; one connection serializes them
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS levels (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			body TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS progress (
			level_id TEXT PRIMARY KEY,
			high_score INTEGER NOT NULL DEFAULT 0,
			completed_at TEXT
		);

		CREATE TABLE IF NOT EXISTS ranking (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			initials TEXT NOT NULL,
			score INTEGER NOT NULL,
			level_name TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_ranking_top ON ranking(score DESC, created_at ASC);

		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level_id TEXT NOT NULL,
			status TEXT NOT NULL,
			coins INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_level_id ON runs(level_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// LoadLevels returns the stored user levels in the order they were saved.
// Rows that no longer parse are reported as an error.
func (s *Store) LoadLevels() ([]*puzzle.Level, error) {
	rows, err := s.db.Query(`SELECT id, body FROM levels ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query levels: %w", err)
	}
	defer rows.Close()

	var out []*puzzle.Level
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		l, err := levels.Parse([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("storage: level %s: %w", id, err)
		}
		out = append(out, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

// SaveLevels replaces the stored user levels.
func (s *Store) SaveLevels(lvls []*puzzle.Level) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM levels`); err != nil {
		return fmt.Errorf("storage: cannot clear levels: %w", err)
	}
	for i, l := range lvls {
		body, err := levels.Marshal(l)
		if err != nil {
			return fmt.Errorf("storage: level %s: %w", l.ID, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO levels (id, position, body) VALUES (?, ?, ?)`,
			l.ID, i, string(body),
		); err != nil {
			return fmt.Errorf("storage: cannot save level %s: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit levels: %w", err)
	}
	return nil
}

// LoadRanking returns the top entries, best score first and earlier
// entries first on ties.
func (s *Store) LoadRanking(limit int) ([]campaign.RankingEntry, error) {
	if limit <= 0 {
		limit = campaign.DefaultRankingSize
	}

	rows, err := s.db.Query(
		`SELECT initials, score, level_name, created_at
		 FROM ranking
		 ORDER BY score DESC, created_at ASC, id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query ranking: %w", err)
	}
	defer rows.Close()

	var entries []campaign.RankingEntry
	for rows.Next() {
		var e campaign.RankingEntry
		var createdAt any
		if err := rows.Scan(&e.Initials, &e.Score, &e.Level, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.At = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// SubmitRankingEntry stores a ranking entry.
func (s *Store) SubmitRankingEntry(e campaign.RankingEntry) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO ranking (initials, score, level_name, created_at) VALUES (?, ?, ?, ?)`,
		e.Initials, e.Score, e.Level, formatTime(at),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save ranking entry: %w", err)
	}
	return nil
}

// LoadProgress returns the progress of every level that has one.
func (s *Store) LoadProgress() (map[string]campaign.Progress, error) {
	rows, err := s.db.Query(`SELECT level_id, high_score, completed_at FROM progress`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query progress: %w", err)
	}
	defer rows.Close()

	out := make(map[string]campaign.Progress)
	for rows.Next() {
		var p campaign.Progress
		var completedAt any
		if err := rows.Scan(&p.LevelID, &p.HighScore, &completedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		p.CompletedAt = parseTime(completedAt)
		out[p.LevelID] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

// SaveProgress upserts the progress of one level.
func (s *Store) SaveProgress(p campaign.Progress) error {
	var completedAt any
	if p.Completed() {
		completedAt = formatTime(p.CompletedAt)
	}
	_, err := s.db.Exec(
		`INSERT INTO progress (level_id, high_score, completed_at) VALUES (?, ?, ?)
		 ON CONFLICT(level_id) DO UPDATE SET
			high_score = excluded.high_score,
			completed_at = excluded.completed_at`,
		p.LevelID, p.HighScore, completedAt,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save progress: %w", err)
	}
	return nil
}

// RecordRun appends a finished run to the history.
func (s *Store) RecordRun(r campaign.RunRecord) error {
	at := r.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (level_id, status, coins, ticks, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.LevelID, r.Status, r.Coins, r.Ticks, formatTime(at),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save run: %w", err)
	}
	return nil
}

// RecentRuns returns the latest runs, newest first.
func (s *Store) RecentRuns(limit int) ([]campaign.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT level_id, status, coins, ticks, created_at
		 FROM runs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var out []campaign.RunRecord
	for rows.Next() {
		var r campaign.RunRecord
		var createdAt any
		if err := rows.Scan(&r.LevelID, &r.Status, &r.Coins, &r.Ticks, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.At = parseTime(createdAt)
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

// LevelStats contains aggregated run statistics for a level.
type LevelStats struct {
	LevelID    string
	Runs       int
	Wins       int
	BestCoins  int
	LastPlayed time.Time
}

// AllLevelStats retrieves statistics for every level that has been played.
func (s *Store) AllLevelStats() (map[string]*LevelStats, error) {
	rows, err := s.db.Query(
		`SELECT level_id, COUNT(*),
		        SUM(CASE WHEN status = 'WIN' THEN 1 ELSE 0 END),
		        MAX(coins), MAX(created_at)
		 FROM runs
		 GROUP BY level_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get level stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*LevelStats)
	for rows.Next() {
		var st LevelStats
		var lastPlayed any
		if err := rows.Scan(&st.LevelID, &st.Runs, &st.Wins, &st.BestCoins, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.LevelID] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// ClearRanking deletes every ranking entry.
func (s *Store) ClearRanking() error {
	if _, err := s.db.Exec(`DELETE FROM ranking`); err != nil {
		return fmt.Errorf("storage: cannot clear ranking: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime handles both time.Time and string column values. NULL and
// unparsable values give the zero time.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{timeLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed
			}
		}
	case []byte:
		return parseTime(string(v))
	}
	return time.Time{}
}

var (
	_ campaign.Persistence = (*Store)(nil)
	_ campaign.RunRecorder = (*Store)(nil)
)
