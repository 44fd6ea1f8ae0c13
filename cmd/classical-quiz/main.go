package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classical-quiz/internal/cmd"
)

// forceExitAfter bounds how long a blocked prompt may hold the process after
// an interrupt.
const forceExitAfter = 3 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
		select {
		case <-sigCh:
		case <-time.After(forceExitAfter):
		}
		os.Exit(130)
	}()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
