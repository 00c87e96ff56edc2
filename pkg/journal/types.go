package journal

import (
	"context"
	"time"
)

// Entry is the journal record of one upstream fetch.
type Entry struct {
	// ID is the fetch id, shared with logs and spans.
	ID string `json:"id"`

	// Time is when the fetch started.
	Time time.Time `json:"time"`

	Method string `json:"method"`

	// Target is the decoded upstream URL, with secrets masked when the
	// recorder is configured to redact.
	Target string `json:"target"`

	// Host is the lowercased target host.
	Host string `json:"host"`

	// Status is the upstream status, or 434 for any failure.
	Status int `json:"status"`

	// Outcome is "ok" or the failure reason (dns, connect, timeout, ...).
	Outcome string `json:"outcome"`

	// Error is the failure cause, empty on success.
	Error string `json:"error,omitempty"`

	// Bytes is the size of the upstream body.
	Bytes int `json:"bytes"`

	Duration time.Duration `json:"duration"`
}

// Order selects the sort order of query results.
type Order string

const (
	// NewestFirst sorts by descending Time. It is the default.
	NewestFirst Order = "desc"

	// OldestFirst sorts by ascending Time.
	OldestFirst Order = "asc"
)

// Query filters journal entries. The zero value matches everything.
type Query struct {
	// Since and Until bound Time, both inclusive.
	Since *time.Time
	Until *time.Time

	Host    string
	Outcome string

	Order Order

	// Limit caps the result size. Zero selects DefaultLimit for Query and
	// means no limit for Count and Delete.
	Limit  int
	Offset int
}

// DefaultLimit is the result size of a Query without a Limit.
const DefaultLimit = 100

// Storage persists journal entries. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Store persists one entry.
	Store(ctx context.Context, entry *Entry) error

	// Query returns entries matching q, sorted by q.Order.
	Query(ctx context.Context, q *Query) ([]*Entry, error)

	// Count returns the number of entries matching q's filters.
	Count(ctx context.Context, q *Query) (int64, error)

	// Delete removes entries matching q's filters and returns how many
	// were removed.
	Delete(ctx context.Context, q *Query) (int64, error)

	// Ping reports whether the backend is usable.
	Ping(ctx context.Context) error

	Close() error
}
