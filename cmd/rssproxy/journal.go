package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"humblerss/rssproxy/pkg/cli"
	"humblerss/rssproxy/pkg/config"
	"humblerss/rssproxy/pkg/journal"
	"humblerss/rssproxy/pkg/journal/retention"
	"humblerss/rssproxy/pkg/journal/storage"
)

var journalFlags struct {
	limit   int
	since   time.Duration
	host    string
	outcome string
	format  string
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the fetch journal",
	Long: `Inspect and maintain the fetch journal.

The journal records every upstream fetch: target, status, outcome, size and
duration. It is written by the running proxy when journal.enabled is set and
read here from the same backend.`,
}

var journalTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show the most recent fetches",
	Long: `Show the most recent journal entries, oldest first.

Examples:
  # Last 20 fetches
  rssproxy journal tail --limit 20

  # Failed fetches to one host during the last hour
  rssproxy journal tail --host feeds.example.com --outcome timeout --since 1h

  # Export as CSV
  rssproxy journal tail --output csv > fetches.csv`,
	RunE: tailJournal,
}

var journalPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy now",
	RunE:  pruneJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTailCmd, journalPruneCmd)

	journalTailCmd.Flags().IntVarP(&journalFlags.limit, "limit", "n", 20, "number of entries")
	journalTailCmd.Flags().DurationVar(&journalFlags.since, "since", 0, "only entries newer than this (e.g. 30m, 24h)")
	journalTailCmd.Flags().StringVar(&journalFlags.host, "host", "", "filter by upstream host")
	journalTailCmd.Flags().StringVar(&journalFlags.outcome, "outcome", "", "filter by outcome (ok, timeout, connect, ...)")
	journalTailCmd.Flags().StringVarP(&journalFlags.format, "output", "o", "text", "output format: text, json, csv")
}

func openJournal() (journal.Storage, *config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, nil, cli.WrapConfigError(err)
	}
	if cfg.Journal.Backend == "memory" {
		return nil, nil, cli.NewConfigError("journal.backend", "the memory backend is not shared with a running proxy")
	}

	store, err := storage.Open(cfg.Journal, nil)
	if err != nil {
		return nil, nil, cli.NewCommandError("journal", err)
	}
	return store, cfg, nil
}

func tailJournal(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(journalFlags.format)
	if err != nil {
		return cli.NewConfigError("output", err.Error())
	}

	store, _, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := queryTail(cmd.Context(), store, time.Now())
	if err != nil {
		return cli.NewCommandError("journal tail", err)
	}

	formatter := cli.NewFormatter(format)
	if format == cli.FormatJSON {
		return formatter.FormatTo(cmd.OutOrStdout(), entries)
	}
	if len(entries) == 0 && format == cli.FormatText {
		return formatter.FormatTo(cmd.OutOrStdout(), "No entries found.")
	}
	return formatter.FormatTo(cmd.OutOrStdout(), entryTable(entries))
}

// queryTail returns the newest matching entries in chronological order.
func queryTail(ctx context.Context, store journal.Storage, now time.Time) ([]*journal.Entry, error) {
	q := &journal.Query{
		Host:    journalFlags.host,
		Outcome: journalFlags.outcome,
		Order:   journal.NewestFirst,
		Limit:   journalFlags.limit,
	}
	if journalFlags.since > 0 {
		since := now.Add(-journalFlags.since)
		q.Since = &since
	}

	entries, err := store.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*journal.Entry{}
	}
	slices.Reverse(entries)
	return entries, nil
}

func entryTable(entries []*journal.Entry) *cli.Table {
	table := &cli.Table{Headers: []string{"TIME", "STATUS", "OUTCOME", "DURATION", "BYTES", "TARGET"}}
	for _, e := range entries {
		table.Append(
			e.Time.Local().Format(time.RFC3339),
			strconv.Itoa(e.Status),
			e.Outcome,
			e.Duration.Round(time.Millisecond).String(),
			strconv.Itoa(e.Bytes),
			e.Target,
		)
	}
	return table
}

func pruneJournal(cmd *cobra.Command, args []string) error {
	store, cfg, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	pruner := retention.NewPruner(store, retention.Config{
		RetentionDays: cfg.Journal.Retention.Days,
		MaxEntries:    cfg.Journal.Retention.MaxEntries,
	}, nil, nil)

	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("journal prune", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %d entries\n", deleted)
	return nil
}
