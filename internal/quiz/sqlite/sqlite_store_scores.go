package sqlite

import (
	"context"
	"database/sql"
	"errors"
)

const (
	currentScoreKey = "current_score"
	highScoreKey    = "high_score"
)

func (s *SQLiteStore) CurrentScore(ctx context.Context) (int, error) {
	return s.getScore(ctx, currentScoreKey)
}

func (s *SQLiteStore) SetCurrentScore(ctx context.Context, score int) error {
	return s.setScore(ctx, currentScoreKey, score)
}

func (s *SQLiteStore) HighScore(ctx context.Context) (int, error) {
	return s.getScore(ctx, highScoreKey)
}

func (s *SQLiteStore) SetHighScore(ctx context.Context, score int) error {
	return s.setScore(ctx, highScoreKey, score)
}

// getScore treats a missing row as zero, the value before the first game.
func (s *SQLiteStore) getScore(ctx context.Context, name string) (int, error) {
	var value int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT value FROM scores WHERE name = ?`,
		name,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return value, nil
}

func (s *SQLiteStore) setScore(ctx context.Context, name string, value int) error {
	if value < 0 {
		value = 0
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO scores (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		name,
		value,
	)
	return err
}
