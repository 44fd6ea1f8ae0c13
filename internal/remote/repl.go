// Package remote is a line-oriented client for a running game's control API.
package remote

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"classical-quiz/internal/mediasession"
)

const (
	DefaultServerURL   = "http://127.0.0.1:8765"
	defaultListLimit   = 10
	defaultWatchCount  = 5
	defaultHTTPTimeout = 5 * time.Second
)

type Config struct {
	ServerURL   string
	ListLimit   int
	HTTPTimeout time.Duration
}

func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	listLimit := cfg.ListLimit
	if listLimit <= 0 {
		listLimit = defaultListLimit
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	client := NewHTTPClient(serverURL, &http.Client{Timeout: timeout})
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "classical-quiz remote\nserver=%s\n\n", serverURL)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])

		switch command {
		case "help":
			printHelp(out)
		case "exit", "quit":
			return nil
		case "status":
			n, err := client.Notification(ctx)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", describeClientError(err, serverURL))
				continue
			}
			printNotification(out, n)
		case "play", "pause", "toggle", "restart":
			if err := runTransport(ctx, out, client, command, serverURL); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case "scores":
			scores, err := client.Scores(ctx)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", describeClientError(err, serverURL))
				continue
			}
			fmt.Fprintf(out, "Score: %d\nHigh score: %d\n", scores.CurrentScore, scores.HighScore)
		case "games":
			limit, parseErr := parsePositiveLimit(args, 1, listLimit)
			if parseErr != nil {
				fmt.Fprintf(out, "invalid games limit: %v\n", parseErr)
				continue
			}
			if err := runGames(ctx, out, client, limit, serverURL); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case "watch":
			count, parseErr := parsePositiveLimit(args, 1, defaultWatchCount)
			if parseErr != nil {
				fmt.Fprintf(out, "invalid watch count: %v\n", parseErr)
				continue
			}
			if err := runWatch(ctx, out, client, count, serverURL); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}
	}
}

func runTransport(ctx context.Context, out io.Writer, client *HTTPClient, command, serverURL string) error {
	n, err := client.Transport(ctx, command)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			fmt.Fprintln(out, "Nothing is playing right now.")
			return nil
		}
		return describeClientError(err, serverURL)
	}
	printNotification(out, n)
	return nil
}

func runGames(ctx context.Context, out io.Writer, client *HTTPClient, limit int, serverURL string) error {
	games, err := client.ListGames(ctx, limit)
	if err != nil {
		return describeClientError(err, serverURL)
	}

	if len(games) == 0 {
		fmt.Fprintln(out, "No games played yet.")
		return nil
	}

	fmt.Fprintln(out, "Recent games:")
	for idx, game := range games {
		status := "in progress"
		if game.Finished {
			status = fmt.Sprintf("final score %d", game.FinalScore)
		}
		fmt.Fprintf(out, "%d. %s started %s, %d rounds, %s\n",
			idx+1,
			shortID(game.GameID),
			game.StartedAt.Local().Format(time.DateTime),
			game.Rounds,
			status,
		)
	}
	return nil
}

func runWatch(ctx context.Context, out io.Writer, client *HTTPClient, count int, serverURL string) error {
	seen := 0
	err := client.Watch(ctx, func(n mediasession.Notification) bool {
		printNotification(out, n)
		seen++
		return seen < count
	})
	if err != nil {
		return describeClientError(err, serverURL)
	}
	return nil
}
