package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"humblerss/rssproxy/pkg/cli"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "rssproxy",
	Short: "RSS proxy server",
	Long: `rssproxy fetches RSS feeds on behalf of its clients and returns them as JSON.

Clients send "GET /?url=<percent-encoded feed URL> HTTP/1.1". The proxy fetches
the feed over HTTP/1.1 and answers with its channel and items as JSON.
Unreachable or slow upstreams are answered with status 434.

Without a subcommand rssproxy starts the server, exactly like "rssproxy run".`,
	Version:       versionString(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServer,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (JSON or YAML)")
	addServerFlags(rootCmd)
}
