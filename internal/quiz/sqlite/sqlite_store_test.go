package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"classical-quiz/internal/quiz"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
		_ = os.Remove(path)
		_ = os.Remove(path + "-journal")
	})
	return store
}

func TestSQLiteStoreScoresDefaultToZero(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	current, err := store.CurrentScore(ctx)
	if err != nil || current != 0 {
		t.Fatalf("CurrentScore = (%d, %v), want (0, nil)", current, err)
	}
	high, err := store.HighScore(ctx)
	if err != nil || high != 0 {
		t.Fatalf("HighScore = (%d, %v), want (0, nil)", high, err)
	}
}

func TestSQLiteStoreScoresRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := store.SetCurrentScore(ctx, 3); err != nil {
		t.Fatalf("SetCurrentScore failed: %v", err)
	}
	if err := store.SetHighScore(ctx, 5); err != nil {
		t.Fatalf("SetHighScore failed: %v", err)
	}
	if err := store.SetCurrentScore(ctx, 4); err != nil {
		t.Fatalf("SetCurrentScore overwrite failed: %v", err)
	}

	current, err := store.CurrentScore(ctx)
	if err != nil || current != 4 {
		t.Fatalf("CurrentScore = (%d, %v), want (4, nil)", current, err)
	}
	high, err := store.HighScore(ctx)
	if err != nil || high != 5 {
		t.Fatalf("HighScore = (%d, %v), want (5, nil)", high, err)
	}
}

func TestSQLiteStoreScoresSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := store.SetHighScore(ctx, 9); err != nil {
		t.Fatalf("SetHighScore failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	high, err := reopened.HighScore(ctx)
	if err != nil || high != 9 {
		t.Fatalf("HighScore after reopen = (%d, %v), want (9, nil)", high, err)
	}
}

func TestSQLiteStoreGameHistory(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := store.StartGame(ctx, quiz.GameRecord{GameID: "g1", StartedAt: base}); err != nil {
		t.Fatalf("StartGame g1 failed: %v", err)
	}
	if err := store.StartGame(ctx, quiz.GameRecord{GameID: "g2", StartedAt: base.Add(time.Hour)}); err != nil {
		t.Fatalf("StartGame g2 failed: %v", err)
	}

	rounds := []quiz.RoundRecord{
		{GameID: "g1", Round: 1, AnswerID: 3, SelectedID: 3, Correct: true, AnsweredAt: base},
		{GameID: "g1", Round: 2, AnswerID: 4, SelectedID: 1, Correct: false, AnsweredAt: base},
		// duplicate round is ignored
		{GameID: "g1", Round: 2, AnswerID: 4, SelectedID: 4, Correct: true, AnsweredAt: base},
	}
	for _, round := range rounds {
		if err := store.RecordRound(ctx, round); err != nil {
			t.Fatalf("RecordRound failed: %v", err)
		}
	}

	if err := store.FinishGame(ctx, "g1", 1, base.Add(time.Minute)); err != nil {
		t.Fatalf("FinishGame failed: %v", err)
	}

	games, err := store.ListGames(ctx, 10)
	if err != nil {
		t.Fatalf("ListGames failed: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
	if games[0].GameID != "g2" || !games[0].FinishedAt.IsZero() {
		t.Fatalf("unexpected newest game: %+v", games[0])
	}
	if games[1].GameID != "g1" || games[1].Rounds != 2 || games[1].FinalScore != 1 {
		t.Fatalf("unexpected finished game: %+v", games[1])
	}
	if !games[1].FinishedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("finished_at = %v", games[1].FinishedAt)
	}

	limited, err := store.ListGames(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("ListGames(1) = (%d games, %v)", len(limited), err)
	}
}

func TestSQLiteStoreUnknownGame(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	err := store.RecordRound(ctx, quiz.RoundRecord{GameID: "missing", Round: 1})
	if !errors.Is(err, quiz.ErrGameNotFound) {
		t.Fatalf("RecordRound error = %v, want ErrGameNotFound", err)
	}

	err = store.FinishGame(ctx, "missing", 0, time.Time{})
	if !errors.Is(err, quiz.ErrGameNotFound) {
		t.Fatalf("FinishGame error = %v, want ErrGameNotFound", err)
	}

	if err := store.StartGame(ctx, quiz.GameRecord{}); err == nil {
		t.Fatalf("expected error for empty game id")
	}
}

func TestSQLiteStoreImplementsRepositories(t *testing.T) {
	var _ quiz.ScoreStore = (*SQLiteStore)(nil)
	var _ quiz.HistoryRepository = (*SQLiteStore)(nil)
}
