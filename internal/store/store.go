// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/drill/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for sessions, attempts and the performance blob.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			mode TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			attempts INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			accuracy_sum REAL NOT NULL,
			reward_sum REAL NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			session_id INTEGER NOT NULL,
			item_key TEXT NOT NULL,
			kind TEXT NOT NULL,
			prompt TEXT NOT NULL,
			answer TEXT NOT NULL,
			correct INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			correct_words INTEGER NOT NULL,
			total_words INTEGER NOT NULL,
			tier TEXT NOT NULL,
			reward REAL NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			answered_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS performance (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			data BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_session ON attempts(session_id);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_item_key ON attempts(item_key);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// BeginSession stores a new session row and returns its id. A random UUID
// is assigned when stats.UUID is empty.
func (s *Store) BeginSession(ctx context.Context, stats model.SessionStats) (int64, string, error) {
	id := stats.UUID
	if id == "" {
		id = uuid.NewString()
	}
	started := stats.StartedAt.Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (uuid, mode, started_at, ended_at, attempts, correct, accuracy_sum, reward_sum, duration_ms)
		 VALUES (?, ?, ?, ?, 0, 0, 0, 0, 0)`,
		id, string(stats.Mode), started, started,
	)
	if err != nil {
		return 0, "", err
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return 0, "", err
	}
	return rowID, id, nil
}

// EndSession writes the final totals of a session.
func (s *Store) EndSession(ctx context.Context, sessionID int64, stats model.SessionStats) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ?, attempts = ?, correct = ?, accuracy_sum = ?, reward_sum = ?, duration_ms = ?
		 WHERE id = ?`,
		stats.EndedAt.Format(time.RFC3339Nano),
		stats.Attempts,
		stats.Correct,
		stats.AccuracySum,
		stats.RewardSum,
		stats.DurationMs,
		sessionID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %d not found", sessionID)
	}
	return nil
}

// RecordAttempt appends one answered item to the log.
func (s *Store) RecordAttempt(ctx context.Context, a model.Attempt) error {
	correct := 0
	if a.Correct {
		correct = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (session_id, item_key, kind, prompt, answer, correct, accuracy, correct_words, total_words, tier, reward, elapsed_ms, answered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.SessionID,
		a.ItemKey,
		a.Kind,
		a.Prompt,
		a.Answer,
		correct,
		a.Accuracy,
		a.CorrectWords,
		a.TotalWords,
		a.Tier,
		a.Reward,
		a.ElapsedMs,
		a.AnsweredAt.Format(time.RFC3339Nano),
	)
	return err
}

// SavePerformance overwrites the stored performance blob.
func (s *Store) SavePerformance(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO performance (id, data, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		data, time.Now().Format(time.RFC3339Nano),
	)
	return err
}

// LoadPerformance returns the stored performance blob, or nil if none was
// saved yet.
func (s *Store) LoadPerformance(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM performance WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// GetWeakItems aggregates attempts over the most recent sessions.
func (s *Store) GetWeakItems(ctx context.Context, window int, mode model.Mode) ([]model.ItemAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = '' OR mode = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT a.item_key, MAX(a.prompt), SUM(a.correct), SUM(1 - a.correct),
		SUM(a.accuracy), SUM(a.elapsed_ms)
	FROM attempts a
	JOIN recent_sessions r ON r.id = a.session_id
	GROUP BY a.item_key`

	rows, err := s.db.QueryContext(ctx, query, string(mode), string(mode), window)
	if err != nil {
		return nil, err
	}
	return scanItemAggregates(rows)
}

// ListSessions returns session aggregates filtered by stats config.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"attempts > 0"}
	args := []any{}
	if cfg.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, string(cfg.Mode))
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, attempts, correct, accuracy_sum, reward_sum, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Attempts, &agg.Correct, &agg.AccuracySum, &agg.RewardSum, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListItemAggregates aggregates attempts per item across sessions.
func (s *Store) ListItemAggregates(ctx context.Context, sessionIDs []int64) ([]model.ItemAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT item_key, MAX(prompt), SUM(correct), SUM(1 - correct),
		SUM(accuracy), SUM(elapsed_ms)
		FROM attempts
		WHERE session_id IN (%s)
		GROUP BY item_key`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanItemAggregates(rows)
}

func scanItemAggregates(rows *sql.Rows) ([]model.ItemAggregate, error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ItemAggregate
	for rows.Next() {
		var agg model.ItemAggregate
		if err := rows.Scan(&agg.ItemKey, &agg.Prompt, &agg.Correct, &agg.Incorrect, &agg.AccuracySum, &agg.ElapsedSumMs); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
