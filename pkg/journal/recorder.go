package journal

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"humblerss/rssproxy/pkg/fetch"
	"humblerss/rssproxy/pkg/telemetry/logging"
	"humblerss/rssproxy/pkg/uri"
)

// Metrics is told about every entry the recorder writes or drops.
// The metrics collector implements it.
type Metrics interface {
	JournalWritten(n int)
	JournalDropped()
}

// RecorderConfig configures a Recorder.
type RecorderConfig struct {
	// AsyncBuffer is the queue capacity. Entries arriving while the queue
	// is full are dropped. Default: 1000
	AsyncBuffer int

	// WriteTimeout bounds each Store call. Default: 5s
	WriteTimeout time.Duration

	// Redactor masks secrets in stored targets when set.
	Redactor *logging.Redactor

	Metrics Metrics
	Logger  *slog.Logger
}

// Recorder writes fetch results to a Storage on a background goroutine.
// It implements fetch.Observer and never blocks the fetch that reports.
type Recorder struct {
	storage Storage
	config  RecorderConfig
	entries chan *Entry
	done    chan struct{}
	closed  atomic.Bool
	once    sync.Once
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// NewRecorder starts a recorder writing to storage.
func NewRecorder(storage Storage, cfg RecorderConfig) *Recorder {
	if cfg.AsyncBuffer <= 0 {
		cfg.AsyncBuffer = 1000
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage: storage,
		config:  cfg,
		entries: make(chan *Entry, cfg.AsyncBuffer),
		done:    make(chan struct{}),
		logger:  logger.With("component", "journal.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Debug("Journal recorder started",
		"async_buffer", cfg.AsyncBuffer,
		"write_timeout", cfg.WriteTimeout,
	)
	return r
}

// EntryFromResult builds the journal entry for a fetch result.
func EntryFromResult(res fetch.Result) *Entry {
	e := &Entry{
		ID:       res.ID,
		Time:     res.Start,
		Method:   res.Method,
		Target:   res.Target,
		Host:     uri.Parse(res.Target).Host,
		Outcome:  res.Reason.Outcome(),
		Duration: res.Duration,
	}
	if res.Response != nil {
		e.Status = res.Response.StatusCode
		e.Bytes = len(res.Response.Body)
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	return e
}

// ObserveFetch implements fetch.Observer.
func (r *Recorder) ObserveFetch(res fetch.Result) {
	r.Record(EntryFromResult(res))
}

// Record enqueues e and reports whether it was accepted.
func (r *Recorder) Record(e *Entry) bool {
	if r.config.Redactor != nil {
		e.Target = r.config.Redactor.RedactURL(e.Target)
	}
	if r.closed.Load() {
		r.dropped(e, "recorder closed")
		return false
	}

	select {
	case r.entries <- e:
		return true
	default:
		r.dropped(e, "queue full")
		return false
	}
}

func (r *Recorder) dropped(e *Entry, why string) {
	if r.config.Metrics != nil {
		r.config.Metrics.JournalDropped()
	}
	r.logger.Warn("Dropping journal entry",
		"fetch_id", e.ID,
		"reason", why,
		"queue_capacity", r.config.AsyncBuffer,
	)
}

// Pending returns the number of queued entries.
func (r *Recorder) Pending() int {
	return len(r.entries)
}

// Close stops accepting entries, writes everything still queued and
// returns once the queue is empty.
func (r *Recorder) Close() error {
	r.once.Do(func() {
		r.closed.Store(true)
		close(r.done)
	})
	r.wg.Wait()
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case e := <-r.entries:
			r.write(e)

		case <-r.done:
			r.logger.Debug("Draining journal queue", "pending", len(r.entries))
			for {
				select {
				case e := <-r.entries:
					r.write(e)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(e *Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, e); err != nil {
		r.logger.Error("Failed to store journal entry",
			"fetch_id", e.ID,
			"error", err,
		)
		if r.config.Metrics != nil {
			r.config.Metrics.JournalDropped()
		}
		return
	}
	if r.config.Metrics != nil {
		r.config.Metrics.JournalWritten(1)
	}

	if d := time.Since(start); d > r.config.WriteTimeout/2 {
		r.logger.Warn("Slow journal write",
			"fetch_id", e.ID,
			"duration_ms", d.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
