package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ShutdownSignals stop the proxy gracefully.
var ShutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// SetupSignalHandler returns a context that is cancelled on the first
// shutdown signal. stop releases the signal registration; after it is
// called a second signal terminates the process as usual.
func SetupSignalHandler(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, ShutdownSignals...)
}

// NotifyReload calls fn for every SIGHUP until ctx is done.
func NotifyReload(ctx context.Context, fn func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP)

	go func() {
		defer signal.Stop(sigChan)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigChan:
				fn()
			}
		}
	}()
}
