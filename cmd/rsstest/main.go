// rsstest serves fixed RSS feeds for exercising the proxy by hand:
//
//	/         a complete feed dated now
//	/missing  the same feed without any dates
//	/timeout  the complete feed after a delay (2s by default)
//	/broken   a truncated document
//
// Usage:
//
//	rsstest 8081
//	rsstest --port 8081 --delay 5s
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"humblerss/rssproxy/pkg/cli"
	"humblerss/rssproxy/pkg/telemetry/logging"
)

var flags struct {
	port     int
	delay    time.Duration
	logLevel string
}

var rootCmd = &cobra.Command{
	Use:   "rsstest [port]",
	Short: "Serve fixture RSS feeds for proxy testing",
	Args:  cobra.MaximumNArgs(1),
	RunE:  serve,
}

func init() {
	rootCmd.Flags().IntVarP(&flags.port, "port", "p", 8081, "listen port")
	rootCmd.Flags().DurationVar(&flags.delay, "delay", 2*time.Second, "response delay of /timeout")
	rootCmd.Flags().StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func serve(cmd *cobra.Command, args []string) error {
	port := flags.port
	if len(args) == 1 {
		p, err := strconv.Atoi(args[0])
		if err != nil || p <= 0 || p > 65535 {
			return cli.NewConfigError("port", fmt.Sprintf("invalid port %q", args[0]))
		}
		port = p
	}

	logger, err := logging.New(logging.Config{Level: flags.logLevel, Format: "console"})
	if err != nil {
		return cli.WrapConfigError(err)
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(port)),
		Handler:           newRouter(flags.delay, logger.Slog()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("RSS test server listening", "address", srv.Addr, "timeout_delay", flags.delay)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return cli.NewCommandError("rsstest", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return cli.NewCommandError("rsstest", err)
	}
	logger.Info("RSS test server stopped")
	return nil
}
