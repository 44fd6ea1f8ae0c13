// Package cli plays the quiz in plain line mode, for terminals where the
// full-screen interface is unavailable or unwanted.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"classical-quiz/internal/mediasession"
	"classical-quiz/internal/quiz"
)

const (
	maxAttempts        = 3
	defaultAnswerDelay = time.Second
)

var errQuit = errors.New("quit")

// Game is the part of the quiz controller the line-mode loop drives.
type Game interface {
	NewGame(ctx context.Context) (quiz.Round, error)
	Select(ctx context.Context, index int) (quiz.Reveal, error)
	Advance(ctx context.Context) (quiz.Round, error)
	Close()
}

type Config struct {
	// AnswerDelay is how long the marked answers stay up before the next
	// round. Zero means the default of one second; negative means none.
	AnswerDelay time.Duration
	// Transport, when set, receives play/pause/toggle/restart typed at the
	// prompt.
	Transport func(mediasession.Command) error
}

func Run(ctx context.Context, in io.Reader, out io.Writer, game Game, cfg Config) error {
	delay := cfg.AnswerDelay
	if delay == 0 {
		delay = defaultAnswerDelay
	}

	reader := bufio.NewReader(in)
	defer game.Close()

	for {
		round, err := game.NewGame(ctx)
		if err != nil {
			return err
		}

		for round.State == quiz.StateQuestionActive {
			printRound(out, round)

			index, err := getAnswer(reader, out, len(round.Candidates), cfg.Transport)
			if err != nil {
				if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
					fmt.Fprintln(out)
					return nil
				}
				return err
			}

			reveal, err := game.Select(ctx, index)
			if err != nil {
				return err
			}
			printReveal(out, reveal)

			if err := wait(ctx, delay); err != nil {
				// An interrupt while the answer is shown quits like one at the prompt.
				if errors.Is(err, context.Canceled) {
					fmt.Fprintln(out)
					return nil
				}
				return err
			}

			round, err = game.Advance(ctx)
			if err != nil {
				return err
			}
		}

		fmt.Fprintf(out, "\nGame over. Final score: %d (high score %d)\n", round.Score, round.HighScore)

		again, err := promptYesNo(reader, out, "Play again? (y/n): ")
		if err != nil || !again {
			return nil
		}
	}
}

func printRound(out io.Writer, round quiz.Round) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Round %d (score %d, high score %d, %d samples left)\n",
		round.Number, round.Score, round.HighScore, round.Remaining)
	fmt.Fprintln(out, "Who composed this piece?")
	fmt.Fprintln(out)
	for _, candidate := range round.Candidates {
		fmt.Fprintf(out, "%s. %s\n", candidate.Letter, candidate.Composer)
	}
	fmt.Fprintln(out)
}

func printReveal(out io.Writer, reveal quiz.Reveal) {
	fmt.Fprintln(out)

	var answer quiz.Candidate
	for _, mark := range reveal.Marks {
		if mark.Correct {
			answer = mark.Candidate
		}
		switch {
		case mark.Correct:
			fmt.Fprintf(out, "  [x] %s. %s\n", mark.Letter, mark.Composer)
		case mark.Selected:
			fmt.Fprintf(out, "  [-] %s. %s\n", mark.Letter, mark.Composer)
		default:
			fmt.Fprintf(out, "      %s. %s\n", mark.Letter, mark.Composer)
		}
	}
	fmt.Fprintln(out)

	if reveal.Correct {
		fmt.Fprintf(out, "Correct! It was %s.\n", answer.Composer)
	} else {
		fmt.Fprintf(out, "Wrong. It was %s.\n", answer.Composer)
	}
	fmt.Fprintf(out, "Score: %d  High score: %d\n", reveal.Score, reveal.HighScore)
}

// getAnswer reads until it gets a candidate letter or number. Transport
// words are handled in place.
func getAnswer(reader *bufio.Reader, out io.Writer, candidateCount int, transport func(mediasession.Command) error) (int, error) {
	if candidateCount < 1 {
		return -1, errors.New("no candidates")
	}

	maxLetter := quiz.CandidateLetter(candidateCount - 1)
	invalid := 0

	for {
		fmt.Fprintf(out, "Your answer (A-%s): ", maxLetter)
		line, err := reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return -1, err
		}

		word := strings.ToLower(strings.TrimSpace(line))
		switch word {
		case "quit", "exit":
			return -1, errQuit
		case "play", "pause", "toggle", "restart":
			handleTransport(out, transport, word)
			continue
		}

		if index, ok := quiz.NormalizeLetter(word, candidateCount); ok {
			return index, nil
		}

		invalid++
		if invalid >= maxAttempts {
			fmt.Fprintf(out, "Enter a letter A-%s, or play, pause, restart, quit.\n", maxLetter)
			invalid = 0
			continue
		}
		fmt.Fprintf(out, "Invalid input. Please enter a letter A-%s.\n", maxLetter)
	}
}

func handleTransport(out io.Writer, transport func(mediasession.Command) error, word string) {
	if transport == nil {
		fmt.Fprintln(out, "Playback controls are unavailable.")
		return
	}
	cmd, err := mediasession.ParseCommand(word)
	if err == nil {
		err = transport(cmd)
	}
	switch {
	case err == nil:
		fmt.Fprintf(out, "(%s)\n", word)
	case errors.Is(err, mediasession.ErrInactive):
		fmt.Fprintln(out, "Nothing is playing right now.")
	default:
		fmt.Fprintf(out, "Playback error: %v\n", err)
	}
}

func promptYesNo(reader *bufio.Reader, out io.Writer, prompt string) (bool, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			if err != nil {
				return false, err
			}
			fmt.Fprintln(out, "Please answer yes or no.")
		}
	}
}

func wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
