// Package retention prunes the fetch journal.
//
// A Pruner deletes entries older than RetentionDays and then, if the
// journal still holds more than MaxEntries, the oldest ones. A Scheduler
// runs the pruner on a standard cron expression:
//
//	pruner := retention.NewPruner(store, retention.Config{
//	    RetentionDays: 7,
//	    PruneSchedule: "0 3 * * *", // daily at 03:00
//	}, collector, logger)
//	sched := retention.NewScheduler(pruner)
//	if err := sched.Start(ctx); err != nil {
//	    return err
//	}
//	defer sched.Stop()
package retention
