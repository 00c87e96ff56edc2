package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"humblerss/rssproxy/pkg/journal"
)

// Metrics is told how many entries each pruning run removed.
type Metrics interface {
	JournalPruned(n int64)
}

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is how many days entries are kept. Zero keeps them forever.
	RetentionDays int

	// PruneSchedule is a cron expression, e.g. "0 3 * * *". Empty disables
	// the scheduler; Prune can still be called directly.
	PruneSchedule string

	// MaxEntries caps the number of entries. Zero means no cap.
	MaxEntries int64
}

// Pruner enforces retention on a journal.
type Pruner struct {
	storage journal.Storage
	config  Config
	metrics Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewPruner creates a pruner. metrics and logger may be nil.
func NewPruner(storage journal.Storage, cfg Config, metrics Metrics, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		storage: storage,
		config:  cfg,
		metrics: metrics,
		logger:  logger.With("component", "journal.retention"),
		now:     time.Now,
	}
}

// Prune deletes entries older than the retention period, then the oldest
// entries beyond MaxEntries. It returns the total number deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.RetentionDays > 0 {
		n, err := p.pruneByAge(ctx)
		if err != nil {
			return total, fmt.Errorf("prune by age failed: %w", err)
		}
		total += n
	}

	if p.config.MaxEntries > 0 {
		n, err := p.pruneByCount(ctx)
		if err != nil {
			return total, fmt.Errorf("prune by count failed: %w", err)
		}
		total += n
	}

	if p.metrics != nil && total > 0 {
		p.metrics.JournalPruned(total)
	}
	if total > 0 {
		p.logger.Info("Journal pruned",
			"deleted", total,
			"retention_days", p.config.RetentionDays,
			"max_entries", p.config.MaxEntries,
		)
	}
	return total, nil
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)

	n, err := p.storage.Delete(ctx, &journal.Query{Until: &cutoff})
	if err != nil {
		return 0, journal.NewRetentionError(p.config.RetentionDays, err)
	}
	return n, nil
}

// pruneByCount finds the newest entry that falls outside the cap and
// deletes everything up to and including its time.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &journal.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	if count <= p.config.MaxEntries {
		return 0, nil
	}

	boundary, err := p.storage.Query(ctx, &journal.Query{
		Order:  journal.NewestFirst,
		Offset: int(p.config.MaxEntries),
		Limit:  1,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to find cutoff entry: %w", err)
	}
	if len(boundary) == 0 {
		return 0, nil
	}

	cutoff := boundary[0].Time
	p.logger.Debug("Journal over capacity",
		"count", count,
		"max_entries", p.config.MaxEntries,
		"cutoff", cutoff,
	)

	n, err := p.storage.Delete(ctx, &journal.Query{Until: &cutoff})
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}
	return n, nil
}
