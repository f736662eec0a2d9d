// Command gsegtree drives segment tree engines from the command line,
// either in-process (eval) or through an HTTP server (serve, remote).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		// Cobra has already printed the error.
		os.Exit(1)
	}
}
