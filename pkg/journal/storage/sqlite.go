package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // registers "sqlite" (pure Go)

	"humblerss/rssproxy/pkg/journal"
)

// Driver names accepted by SQLiteConfig.Driver.
const (
	DriverCGO  = "sqlite3"
	DriverPure = "sqlite"
)

// SQLiteConfig contains configuration for the SQLite backend.
type SQLiteConfig struct {
	// Driver is DriverCGO (mattn/go-sqlite3) or DriverPure (modernc.org/sqlite).
	// Default: DriverPure
	Driver string

	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int

	// WALMode enables write-ahead logging.
	WALMode bool

	// BusyTimeout is how long a connection waits on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLiteStorage implements journal.Storage on SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens (and if needed creates) the database at cfg.Path.
func NewSQLiteStorage(cfg SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverPure
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 4
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.Path == "" {
		return nil, journal.NewStorageError("sqlite", "open", errors.New("database path is empty"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn, err := sqliteDSN(cfg)
	if err != nil {
		return nil, journal.NewStorageError("sqlite", "open", err)
	}
	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, journal.NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)

	s := &SQLiteStorage{
		db:     db,
		config: cfg,
		logger: logger.With("component", "journal.storage.sqlite"),
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("SQLite journal opened",
		"driver", cfg.Driver,
		"path", cfg.Path,
		"wal_mode", cfg.WALMode,
		"max_open_conns", cfg.MaxOpenConns,
	)
	return s, nil
}

// sqliteDSN sets the busy timeout per connection; the two drivers spell
// connection pragmas differently.
func sqliteDSN(cfg SQLiteConfig) (string, error) {
	ms := cfg.BusyTimeout.Milliseconds()
	v := url.Values{}

	switch cfg.Driver {
	case DriverCGO:
		v.Set("_busy_timeout", fmt.Sprint(ms))
	case DriverPure:
		v.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", ms))
	default:
		return "", fmt.Errorf("unknown sqlite driver %q", cfg.Driver)
	}
	return "file:" + cfg.Path + "?" + v.Encode(), nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return journal.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(schema); err != nil {
		return journal.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return journal.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(getSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return journal.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return journal.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Store inserts entry. Storing an id twice keeps the first entry.
func (s *SQLiteStorage) Store(ctx context.Context, entry *journal.Entry) error {
	var errVal any
	if entry.Error != "" {
		errVal = entry.Error
	}

	_, err := s.db.ExecContext(ctx, insertEntry,
		entry.ID, entry.Time.UnixNano(), entry.Method, entry.Target, entry.Host,
		entry.Status, entry.Outcome, errVal, entry.Bytes, int64(entry.Duration),
	)
	if err != nil {
		return journal.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query returns the matching entries.
func (s *SQLiteStorage) Query(ctx context.Context, q *journal.Query) ([]*journal.Entry, error) {
	if q == nil {
		q = &journal.Query{}
	}
	where, args := buildWhereClause(q)

	stmt := "SELECT " + selectColumns + " FROM fetches" + where
	if q.Order == journal.OldestFirst {
		stmt += " ORDER BY time_ns ASC"
	} else {
		stmt += " ORDER BY time_ns DESC"
	}

	limit := q.Limit
	if limit <= 0 {
		limit = journal.DefaultLimit
	}
	stmt += " LIMIT ? OFFSET ?"
	args = append(args, limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, journal.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	entries := []*journal.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, journal.NewStorageError("sqlite", "scan", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, journal.NewStorageError("sqlite", "query", err)
	}
	return entries, nil
}

// Count returns the number of matching entries.
func (s *SQLiteStorage) Count(ctx context.Context, q *journal.Query) (int64, error) {
	where, args := buildWhereClause(q)

	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fetches"+where, args...).Scan(&n); err != nil {
		return 0, journal.NewStorageError("sqlite", "count", err)
	}
	return n, nil
}

// Delete removes the matching entries.
func (s *SQLiteStorage) Delete(ctx context.Context, q *journal.Query) (int64, error) {
	where, args := buildWhereClause(q)

	res, err := s.db.ExecContext(ctx, "DELETE FROM fetches"+where, args...)
	if err != nil {
		return 0, journal.NewStorageError("sqlite", "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, journal.NewStorageError("sqlite", "delete", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return journal.NewStorageError("sqlite", "ping", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return journal.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite journal closed")
	return nil
}

// buildWhereClause returns " WHERE ..." (or "") and its arguments.
func buildWhereClause(q *journal.Query) (string, []any) {
	if q == nil {
		return "", nil
	}

	var conditions []string
	var args []any

	if q.Since != nil {
		conditions = append(conditions, "time_ns >= ?")
		args = append(args, q.Since.UnixNano())
	}
	if q.Until != nil {
		conditions = append(conditions, "time_ns <= ?")
		args = append(args, q.Until.UnixNano())
	}
	if q.Host != "" {
		conditions = append(conditions, "host = ?")
		args = append(args, q.Host)
	}
	if q.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, q.Outcome)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanEntry(rows *sql.Rows) (*journal.Entry, error) {
	var (
		e          journal.Entry
		timeNs     int64
		durationNs int64
		errVal     sql.NullString
	)
	err := rows.Scan(&e.ID, &timeNs, &e.Method, &e.Target, &e.Host,
		&e.Status, &e.Outcome, &errVal, &e.Bytes, &durationNs)
	if err != nil {
		return nil, err
	}

	e.Time = time.Unix(0, timeNs)
	e.Duration = time.Duration(durationNs)
	if errVal.Valid {
		e.Error = errVal.String
	}
	return &e, nil
}
