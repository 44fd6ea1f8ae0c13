package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"classical-quiz/internal/mediasession"
	"classical-quiz/internal/quiz"
)

// scriptedGame asks two rounds whose answer is always candidate B.
type scriptedGame struct {
	rounds   int
	asked    int
	score    int
	high     int
	selected []int
	closed   bool
}

func (g *scriptedGame) round() quiz.Round {
	if g.asked >= g.rounds {
		return quiz.Round{State: quiz.StateGameOver, Number: g.asked, Score: g.score, HighScore: g.high}
	}
	g.asked++
	return quiz.Round{
		State:  quiz.StateQuestionActive,
		Number: g.asked,
		Candidates: []quiz.Candidate{
			{ID: 1, Letter: "A", Composer: "Bach"},
			{ID: 2, Letter: "B", Composer: "Mozart"},
			{ID: 3, Letter: "C", Composer: "Chopin"},
		},
		Score:     g.score,
		HighScore: g.high,
		Remaining: g.rounds - g.asked + 1,
	}
}

func (g *scriptedGame) NewGame(context.Context) (quiz.Round, error) {
	g.asked = 0
	g.score = 0
	return g.round(), nil
}

func (g *scriptedGame) Select(_ context.Context, index int) (quiz.Reveal, error) {
	g.selected = append(g.selected, index)
	correct := index == 1
	if correct {
		g.score++
		if g.score > g.high {
			g.high = g.score
		}
	}

	marks := []quiz.Mark{
		{Candidate: quiz.Candidate{ID: 1, Letter: "A", Composer: "Bach"}, Selected: index == 0},
		{Candidate: quiz.Candidate{ID: 2, Letter: "B", Composer: "Mozart"}, Correct: true, Selected: index == 1},
		{Candidate: quiz.Candidate{ID: 3, Letter: "C", Composer: "Chopin"}, Selected: index == 2},
	}
	return quiz.Reveal{Correct: correct, AnswerID: 2, Marks: marks, Score: g.score, HighScore: g.high}, nil
}

func (g *scriptedGame) Advance(context.Context) (quiz.Round, error) {
	return g.round(), nil
}

func (g *scriptedGame) Close() {
	g.closed = true
}

func TestRunPlaysGameToTheEnd(t *testing.T) {
	game := &scriptedGame{rounds: 2}
	input := "b\nz\n1\nn\n"
	var out bytes.Buffer

	err := Run(context.Background(), strings.NewReader(input), &out, game, Config{AnswerDelay: -1})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(game.selected) != 2 || game.selected[0] != 1 || game.selected[1] != 0 {
		t.Fatalf("selected = %v, want [1 0]", game.selected)
	}
	if !game.closed {
		t.Fatalf("expected game to be closed")
	}

	text := out.String()
	for _, want := range []string{
		"Round 1 (score 0, high score 0, 2 samples left)",
		"Who composed this piece?",
		"Correct! It was Mozart.",
		"Invalid input. Please enter a letter A-C.",
		"Wrong. It was Mozart.",
		"  [-] A. Bach",
		"  [x] B. Mozart",
		"Game over. Final score: 1 (high score 1)",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRunPlayAgain(t *testing.T) {
	game := &scriptedGame{rounds: 1}
	var out bytes.Buffer

	err := Run(context.Background(), strings.NewReader("b\nmaybe\ny\nquit\n"), &out, game, Config{AnswerDelay: -1})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if strings.Count(out.String(), "Round 1 ") != 2 {
		t.Fatalf("expected the game to restart:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Please answer yes or no.") {
		t.Fatalf("expected yes/no retry:\n%s", out.String())
	}
}

func TestRunInterruptDuringRevealQuitsCleanly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	game := &interruptedGame{scriptedGame: scriptedGame{rounds: 3}, interrupt: cancel}
	var out bytes.Buffer

	err := Run(ctx, strings.NewReader("b\n"), &out, game, Config{AnswerDelay: time.Hour})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !game.closed {
		t.Fatalf("expected game to be closed")
	}
	if game.asked != 1 {
		t.Fatalf("asked %d rounds, want 1", game.asked)
	}
	if !strings.Contains(out.String(), "Correct! It was Mozart.") {
		t.Fatalf("reveal missing from output:\n%s", out.String())
	}
}

// interruptedGame cancels the run as soon as an answer is revealed.
type interruptedGame struct {
	scriptedGame
	interrupt context.CancelFunc
}

func (g *interruptedGame) Select(ctx context.Context, index int) (quiz.Reveal, error) {
	reveal, err := g.scriptedGame.Select(ctx, index)
	g.interrupt()
	return reveal, err
}

func TestRunStopsOnEOF(t *testing.T) {
	game := &scriptedGame{rounds: 3}
	var out bytes.Buffer

	if err := Run(context.Background(), strings.NewReader(""), &out, game, Config{}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(game.selected) != 0 {
		t.Fatalf("expected no selections, got %v", game.selected)
	}
}

func TestGetAnswerHandlesTransportWords(t *testing.T) {
	var commands []mediasession.Command
	transport := func(cmd mediasession.Command) error {
		commands = append(commands, cmd)
		if cmd == mediasession.CommandPlay {
			return mediasession.ErrInactive
		}
		return nil
	}

	reader := bufio.NewReader(strings.NewReader("pause\nrestart\nplay\n c \n"))
	var out bytes.Buffer

	index, err := getAnswer(reader, &out, 4, transport)
	if err != nil || index != 2 {
		t.Fatalf("getAnswer = (%d, %v), want (2, nil)", index, err)
	}

	want := []mediasession.Command{mediasession.CommandPause, mediasession.CommandPrevious, mediasession.CommandPlay}
	if len(commands) != len(want) {
		t.Fatalf("commands = %v, want %v", commands, want)
	}
	for i := range want {
		if commands[i] != want[i] {
			t.Fatalf("commands = %v, want %v", commands, want)
		}
	}
	if !strings.Contains(out.String(), "Nothing is playing right now.") {
		t.Fatalf("expected inactive message:\n%s", out.String())
	}
}

func TestGetAnswerRemindsAfterRepeatedInvalidInput(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("x\ny\nz\nd\n"))
	var out bytes.Buffer

	index, err := getAnswer(reader, &out, 4, nil)
	if err != nil || index != 3 {
		t.Fatalf("getAnswer = (%d, %v), want (3, nil)", index, err)
	}
	if !strings.Contains(out.String(), "or play, pause, restart, quit") {
		t.Fatalf("expected reminder after %d invalid inputs:\n%s", maxAttempts, out.String())
	}
}

func TestWaitHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := wait(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("wait error = %v, want context.Canceled", err)
	}
	if err := wait(context.Background(), 0); err != nil {
		t.Fatalf("wait(0) error = %v", err)
	}
}
