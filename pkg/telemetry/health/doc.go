// Package health provides liveness and readiness endpoints for the proxy.
//
// Liveness only says the process is up. Readiness runs the registered
// component checks (the proxy listener, the fetch journal) and fails while
// the process drains connections during shutdown.
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("listener", func(ctx context.Context) error {
//	    if !srv.IsRunning() {
//	        return errors.New("listener not running")
//	    }
//	    return nil
//	})
//	mux.HandleFunc("/health", checker.LivenessHandler())
//	mux.HandleFunc("/ready", checker.ReadinessHandler())
package health
