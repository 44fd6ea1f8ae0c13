package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"classical-quiz/internal/remote"
)

var remoteServer string

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Control a running game from another terminal",
	Long: `Connect to the control API of a running 'classical-quiz play' and send
transport commands (play, pause, toggle, restart), read the scores and history,
or watch the now-playing notification change.

The server defaults to the configured control.addr.`,
	Annotations: map[string]string{annotationLogToFile: "true"},
	RunE:        runRemote,
}

func init() {
	remoteCmd.Flags().StringVarP(&remoteServer, "server", "s", "", "control API URL (default from control.addr)")
	rootCmd.AddCommand(remoteCmd)
}

func runRemote(cmd *cobra.Command, args []string) error {
	server := strings.TrimSpace(remoteServer)
	if server == "" && cfg.Control.Addr != "" {
		server = "http://" + cfg.Control.Addr
	}

	return remote.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), remote.Config{
		ServerURL: server,
	})
}
