package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"issue-fetcher/internal/observability"
)

// ErrInterrupted is the cancellation cause after SIGINT or SIGTERM.
var ErrInterrupted = errors.New("interrupted")

// GracefulShutdown returns a context cancelled with ErrInterrupted when the
// process receives SIGINT or SIGTERM.
func GracefulShutdown(parent context.Context, logger *observability.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Warn("Shutdown signal received", "signal", sig.String())
			cancel(ErrInterrupted)
		case <-ctx.Done():
		}
	}()

	return ctx, func() { cancel(context.Canceled) }
}

// Interrupted reports whether ctx was cancelled by a shutdown signal.
func Interrupted(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrInterrupted)
}
