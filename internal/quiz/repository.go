package quiz

import (
	"context"
	"errors"
	"time"
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrNoActiveQuestion  = errors.New("no active question")
	ErrInvalidCandidate  = errors.New("invalid candidate")
	ErrAnswerNotRevealed = errors.New("answer not revealed")
)

// ScoreStore persists the two score counters across sessions.
type ScoreStore interface {
	CurrentScore(ctx context.Context) (int, error)
	SetCurrentScore(ctx context.Context, score int) error
	HighScore(ctx context.Context) (int, error)
	SetHighScore(ctx context.Context, score int) error
}

type GameRecord struct {
	GameID     string    `json:"game_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	FinalScore int       `json:"final_score"`
	Rounds     int       `json:"rounds"`
}

type RoundRecord struct {
	GameID     string
	Round      int
	AnswerID   int
	SelectedID int
	Correct    bool
	AnsweredAt time.Time
}

// HistoryRepository keeps a log of played games. It is optional for the
// controller.
type HistoryRepository interface {
	StartGame(ctx context.Context, game GameRecord) error
	RecordRound(ctx context.Context, round RoundRecord) error
	FinishGame(ctx context.Context, gameID string, finalScore int, finishedAt time.Time) error
	ListGames(ctx context.Context, limit int) ([]GameRecord, error)
}
