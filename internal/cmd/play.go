package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"classical-quiz/internal/cli"
	"classical-quiz/internal/tui"
)

var playPlain bool

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a game",
	Long: `Start a new game. Each round plays a clip and shows the candidate composers;
answer with A-D, 1-4 or a mouse click. Space pauses the clip and r restarts it.

The full-screen interface needs a terminal. With --plain, or when input or
output is redirected, a line-based game runs instead.`,
	Annotations: map[string]string{annotationLogToFile: "true"},
	RunE:        runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playPlain, "plain", false, "line-based game instead of the full-screen interface")
	playCmd.Flags().Bool("no-audio", false, "simulate playback without a sound card")
	playCmd.Flags().String("control-addr", "", "control API address (empty disables it)")
	playCmd.Flags().Duration("answer-delay", 0, "pause after revealing the answer")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warnw("shutdown", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	controlDone := a.serveControl(ctx, cfg.Control.Addr)
	defer func() {
		cancel()
		<-controlDone
	}()

	if playPlain || !interactive() {
		return cli.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), a.controller, cli.Config{
			AnswerDelay: cfg.AnswerDelay,
			Transport:   a.session.Handle,
		})
	}

	model := tui.New(ctx, a.controller, tui.Config{
		AnswerDelay: cfg.AnswerDelay,
		Transport:   a.session,
	})
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	a.session.AddSink(tui.NotificationSink(program))

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
