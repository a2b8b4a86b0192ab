// Package store handles SQLite persistence for the local replica.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"spelldaily/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for game records and derived stats. It is the
// synchronous, offline-safe side of the record store; the remote replica
// is best-effort on top of it.
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
		`CREATE TABLE IF NOT EXISTS games (
			user_id TEXT NOT NULL,
			puzzle_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			words_found TEXT NOT NULL,
			pangrams_found TEXT NOT NULL,
			rank TEXT NOT NULL,
			game_date TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (user_id, puzzle_id)
		);`,
		`CREATE TABLE IF NOT EXISTS stats (
			user_id TEXT PRIMARY KEY,
			games_played INTEGER NOT NULL,
			current_streak INTEGER NOT NULL,
			best_streak INTEGER NOT NULL,
			best_rank TEXT NOT NULL,
			last_played_date TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_user_date ON games(user_id, game_date);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// GetRecord returns the stored record for one (user, puzzle) attempt, or
// nil when none exists.
func (s *Store) GetRecord(ctx context.Context, userID, puzzleID string) (*model.GameRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, puzzle_id, score, words_found, pangrams_found, rank, game_date, updated_at
		 FROM games WHERE user_id = ? AND puzzle_id = ?`,
		userID, puzzleID)
	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// UpsertRecord writes the record, replacing any existing row for the same
// (user, puzzle) pair.
func (s *Store) UpsertRecord(ctx context.Context, rec model.GameRecord) error {
	words, err := json.Marshal(rec.WordsFound)
	if err != nil {
		return fmt.Errorf("failed to encode words: %w", err)
	}
	pangrams, err := json.Marshal(rec.PangramsFound)
	if err != nil {
		return fmt.Errorf("failed to encode pangrams: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (user_id, puzzle_id, score, words_found, pangrams_found, rank, game_date, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, puzzle_id) DO UPDATE SET
			score = excluded.score,
			words_found = excluded.words_found,
			pangrams_found = excluded.pangrams_found,
			rank = excluded.rank,
			game_date = excluded.game_date,
			updated_at = excluded.updated_at`,
		rec.UserID,
		rec.PuzzleID,
		rec.Score,
		string(words),
		string(pangrams),
		string(rec.Rank),
		rec.GameDate,
		rec.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// ListRecords returns all records for a user. Callers sort as needed.
func (s *Store) ListRecords(ctx context.Context, userID string) ([]model.GameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, puzzle_id, score, words_found, pangrams_found, rank, game_date, updated_at
		 FROM games WHERE user_id = ?`,
		userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.GameRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// GetStats returns the stored stats snapshot for a user, or nil when none
// exists.
func (s *Store) GetStats(ctx context.Context, userID string) (*model.UserStats, error) {
	var stats model.UserStats
	var rank string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, games_played, current_streak, best_streak, best_rank, last_played_date
		 FROM stats WHERE user_id = ?`,
		userID).Scan(&stats.UserID, &stats.GamesPlayed, &stats.CurrentStreak, &stats.BestStreak, &rank, &stats.LastPlayedDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	stats.BestRank = model.Rank(rank)
	return &stats, nil
}

// UpsertStats writes the stats snapshot, replacing any existing row.
func (s *Store) UpsertStats(ctx context.Context, stats model.UserStats) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stats (user_id, games_played, current_streak, best_streak, best_rank, last_played_date)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			games_played = excluded.games_played,
			current_streak = excluded.current_streak,
			best_streak = excluded.best_streak,
			best_rank = excluded.best_rank,
			last_played_date = excluded.last_played_date`,
		stats.UserID,
		stats.GamesPlayed,
		stats.CurrentStreak,
		stats.BestStreak,
		string(stats.BestRank),
		stats.LastPlayedDate,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.GameRecord, error) {
	var rec model.GameRecord
	var words, pangrams, rank, updatedAt string
	if err := row.Scan(&rec.UserID, &rec.PuzzleID, &rec.Score, &words, &pangrams, &rank, &rec.GameDate, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(words), &rec.WordsFound); err != nil {
		return nil, fmt.Errorf("failed to decode words: %w", err)
	}
	if err := json.Unmarshal([]byte(pangrams), &rec.PangramsFound); err != nil {
		return nil, fmt.Errorf("failed to decode pangrams: %w", err)
	}
	rec.Rank = model.Rank(rank)
	parsed, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, err
	}
	rec.UpdatedAt = parsed
	return &rec, nil
}
