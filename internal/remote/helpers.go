package remote

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"classical-quiz/internal/mediasession"
)

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  status")
	fmt.Fprintln(out, "  play | pause | toggle | restart")
	fmt.Fprintln(out, "  scores")
	fmt.Fprintln(out, "  games [limit]")
	fmt.Fprintln(out, "  watch [count]")
	fmt.Fprintln(out, "  exit")
}

func parsePositiveLimit(args []string, index int, defaultValue int) (int, error) {
	if len(args) <= index {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(args[index])
	if err != nil || value <= 0 {
		return 0, errors.New("must be a positive integer")
	}
	return value, nil
}

func describeClientError(err error, serverURL string) error {
	if errors.Is(err, ErrServiceUnavailable) {
		return fmt.Errorf("service unavailable at %s", serverURL)
	}
	return err
}

func printNotification(out io.Writer, n mediasession.Notification) {
	if !n.Visible {
		fmt.Fprintln(out, "No sample playing.")
		return
	}

	labels := make([]string, 0, len(n.Actions))
	for _, action := range n.Actions {
		labels = append(labels, action.Label)
	}
	position := (time.Duration(n.PositionMS) * time.Millisecond).Truncate(time.Second)
	fmt.Fprintf(out, "%s: %s [%s %s] actions: %s\n",
		n.Title,
		n.Text,
		n.State,
		position,
		strings.Join(labels, ", "),
	)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
