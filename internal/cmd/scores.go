package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"classical-quiz/internal/quiz/sqlite"
)

var historyLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the current and high score",
	RunE:  runScores,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently played games",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of games to list")
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(historyCmd)
}

func runScores(cmd *cobra.Command, args []string) error {
	store, err := sqlite.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening score database: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	current, err := store.CurrentScore(ctx)
	if err != nil {
		return err
	}
	high, err := store.HighScore(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Current score: %d\n", current)
	fmt.Fprintf(out, "High score:    %d\n", high)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLimit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", historyLimit)
	}

	store, err := sqlite.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening score database: %w", err)
	}
	defer store.Close()

	games, err := store.ListGames(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(games) == 0 {
		fmt.Fprintln(out, "No games played yet.")
		return nil
	}

	fmt.Fprintf(out, "%-8s  %-16s  %6s  %5s  %s\n", "GAME", "STARTED", "ROUNDS", "SCORE", "STATUS")
	for _, g := range games {
		status := "unfinished"
		if !g.FinishedAt.IsZero() {
			status = "finished in " + g.FinishedAt.Sub(g.StartedAt).Round(time.Second).String()
		}
		fmt.Fprintf(out, "%-8s  %-16s  %6d  %5d  %s\n",
			shortID(g.GameID),
			g.StartedAt.Local().Format("2006-01-02 15:04"),
			g.Rounds,
			g.FinalScore,
			status,
		)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
