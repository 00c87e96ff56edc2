/*
Package cli provides command-line helpers shared by the rssproxy commands.

Output Formatting:

Commands that print records build a Table and hand it to a Formatter:

	table := &cli.Table{Headers: []string{"TIME", "STATUS"}}
	table.Append("2026-03-01T10:00:00Z", "200")
	if err := cli.NewFormatter(cli.FormatText).FormatTo(os.Stdout, table); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

SIGHUP is reported separately through NotifyReload so the run command can
re-read its configuration without restarting.
*/
package cli
