// Command server builds the pronunciation index and serves the homophone
// HTTP API until it receives SIGINT or SIGTERM.
//
// Exit codes: 0 = clean shutdown, 1 = error (including an unavailable index).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/homophones/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		stop()
		os.Exit(1)
	}
}
