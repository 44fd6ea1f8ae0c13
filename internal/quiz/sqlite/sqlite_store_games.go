package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"classical-quiz/internal/quiz"
)

func (s *SQLiteStore) StartGame(ctx context.Context, game quiz.GameRecord) error {
	if game.GameID == "" {
		return errors.New("game id is required")
	}
	if game.StartedAt.IsZero() {
		game.StartedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO games (game_id, started_at_unix, finished_at_unix, final_score) VALUES (?, ?, NULL, 0)`,
		game.GameID,
		game.StartedAt.UnixNano(),
	)
	return err
}

// RecordRound keeps the first answer stored for (game_id, round); a repeated
// write for the same round is ignored.
func (s *SQLiteStore) RecordRound(ctx context.Context, round quiz.RoundRecord) error {
	if round.AnsweredAt.IsZero() {
		round.AnsweredAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var found int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM games WHERE game_id = ? LIMIT 1`, round.GameID).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.ErrGameNotFound
		}
		return err
	}

	correct := 0
	if round.Correct {
		correct = 1
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO rounds (game_id, round, answer_id, selected_id, correct, answered_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		round.GameID,
		round.Round,
		round.AnswerID,
		round.SelectedID,
		correct,
		round.AnsweredAt.UnixNano(),
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) FinishGame(ctx context.Context, gameID string, finalScore int, finishedAt time.Time) error {
	if finishedAt.IsZero() {
		finishedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(
		ctx,
		`UPDATE games SET finished_at_unix = ?, final_score = ? WHERE game_id = ?`,
		finishedAt.UnixNano(),
		finalScore,
		gameID,
	)
	if err != nil {
		return err
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		return quiz.ErrGameNotFound
	}
	return nil
}

func (s *SQLiteStore) ListGames(ctx context.Context, limit int) ([]quiz.GameRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT g.game_id, g.started_at_unix, g.finished_at_unix, g.final_score, COUNT(r.round)
		 FROM games g
		 LEFT JOIN rounds r ON r.game_id = g.game_id
		 GROUP BY g.game_id
		 ORDER BY g.started_at_unix DESC, g.game_id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]quiz.GameRecord, 0)
	for rows.Next() {
		var (
			game         quiz.GameRecord
			startedAtNs  int64
			finishedAtNs sql.NullInt64
		)
		if err := rows.Scan(&game.GameID, &startedAtNs, &finishedAtNs, &game.FinalScore, &game.Rounds); err != nil {
			return nil, err
		}
		game.StartedAt = time.Unix(0, startedAtNs).UTC()
		if finishedAtNs.Valid {
			game.FinishedAt = time.Unix(0, finishedAtNs.Int64).UTC()
		}
		games = append(games, game)
	}

	return games, rows.Err()
}
