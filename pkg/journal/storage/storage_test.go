package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"humblerss/rssproxy/pkg/config"
	"humblerss/rssproxy/pkg/journal"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func entry(id string, offset time.Duration, host, outcome string) *journal.Entry {
	e := &journal.Entry{
		ID:       id,
		Time:     base.Add(offset),
		Method:   "GET",
		Target:   "http://" + host + "/rss",
		Host:     host,
		Status:   200,
		Outcome:  outcome,
		Bytes:    512,
		Duration: 42 * time.Millisecond,
	}
	if outcome != "ok" {
		e.Status = 434
		e.Bytes = 0
		e.Error = "dial tcp: connection refused"
	}
	return e
}

type backend struct {
	name string
	open func(t *testing.T) journal.Storage
}

func sqliteBackend(driver string) backend {
	return backend{
		name: "sqlite/" + driver,
		open: func(t *testing.T) journal.Storage {
			s, err := NewSQLiteStorage(SQLiteConfig{
				Driver:  driver,
				Path:    filepath.Join(t.TempDir(), "journal.db"),
				WALMode: true,
			}, nil)
			if err != nil {
				if driver == DriverCGO && strings.Contains(err.Error(), "cgo") {
					t.Skipf("cgo driver unavailable: %v", err)
				}
				t.Fatalf("NewSQLiteStorage() error = %v", err)
			}
			return s
		},
	}
}

func backends() []backend {
	return []backend{
		{name: "memory", open: func(*testing.T) journal.Storage { return NewMemoryStorage() }},
		sqliteBackend(DriverPure),
		sqliteBackend(DriverCGO),
	}
}

func seed(t *testing.T, s journal.Storage) {
	t.Helper()

	ctx := context.Background()
	for _, e := range []*journal.Entry{
		entry("a", 0, "example.test", "ok"),
		entry("b", time.Minute, "example.test", "timeout"),
		entry("c", 2*time.Minute, "feeds.test", "ok"),
		entry("d", 3*time.Minute, "feeds.test", "connect"),
		entry("e", 4*time.Minute, "example.test", "ok"),
	} {
		if err := s.Store(ctx, e); err != nil {
			t.Fatalf("Store(%s) error = %v", e.ID, err)
		}
	}
}

func ids(entries []*journal.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.ID)
	}
	return b.String()
}

func TestStorage_Query(t *testing.T) {
	since := base.Add(time.Minute)
	until := base.Add(3 * time.Minute)

	tests := []struct {
		name  string
		query *journal.Query
		want  string
	}{
		{name: "all newest first", query: &journal.Query{}, want: "edcba"},
		{name: "nil query", query: nil, want: "edcba"},
		{name: "oldest first", query: &journal.Query{Order: journal.OldestFirst}, want: "abcde"},
		{name: "by host", query: &journal.Query{Host: "feeds.test"}, want: "dc"},
		{name: "by outcome", query: &journal.Query{Outcome: "ok"}, want: "eca"},
		{name: "time range inclusive", query: &journal.Query{Since: &since, Until: &until}, want: "dcb"},
		{name: "limit", query: &journal.Query{Limit: 2}, want: "ed"},
		{name: "offset", query: &journal.Query{Limit: 2, Offset: 2}, want: "cb"},
		{name: "offset past end", query: &journal.Query{Offset: 10}, want: ""},
	}

	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			defer s.Close()
			seed(t, s)

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := s.Query(context.Background(), tt.query)
					if err != nil {
						t.Fatalf("Query() error = %v", err)
					}
					if ids(got) != tt.want {
						t.Errorf("Query() = %q, want %q", ids(got), tt.want)
					}
				})
			}
		})
	}
}

func TestStorage_RoundTrip(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			defer s.Close()
			ctx := context.Background()

			want := entry("x", 90*time.Second+123*time.Nanosecond, "example.test", "timeout")
			if err := s.Store(ctx, want); err != nil {
				t.Fatalf("Store() error = %v", err)
			}

			got, err := s.Query(ctx, &journal.Query{})
			if err != nil || len(got) != 1 {
				t.Fatalf("Query() = %v, %v", got, err)
			}
			e := got[0]
			if !e.Time.Equal(want.Time) {
				t.Errorf("Time = %v, want %v", e.Time, want.Time)
			}
			e.Time = want.Time
			if *e != *want {
				t.Errorf("entry = %+v, want %+v", *e, *want)
			}
		})
	}
}

func TestStorage_CountAndDelete(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			defer s.Close()
			seed(t, s)
			ctx := context.Background()

			n, err := s.Count(ctx, &journal.Query{Outcome: "ok"})
			if err != nil || n != 3 {
				t.Fatalf("Count(ok) = %d, %v, want 3", n, err)
			}

			cutoff := base.Add(time.Minute)
			deleted, err := s.Delete(ctx, &journal.Query{Until: &cutoff})
			if err != nil || deleted != 2 {
				t.Fatalf("Delete() = %d, %v, want 2", deleted, err)
			}

			n, err = s.Count(ctx, &journal.Query{})
			if err != nil || n != 3 {
				t.Errorf("Count() after delete = %d, %v, want 3", n, err)
			}
			if err := s.Ping(ctx); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}

func TestMemoryStorage_Closed(t *testing.T) {
	s := NewMemoryStorage()
	s.Close()

	err := s.Store(context.Background(), entry("a", 0, "h", "ok"))
	if !errors.Is(err, journal.ErrClosed) {
		t.Errorf("Store() after Close error = %v, want ErrClosed", err)
	}
	var se *journal.StorageError
	if !errors.As(err, &se) || se.Backend != "memory" || se.Operation != "store" {
		t.Errorf("error = %#v, want a memory StorageError", err)
	}
	if err := s.Ping(context.Background()); err == nil {
		t.Error("Ping() after Close succeeded")
	}
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	s, err := NewSQLiteStorage(SQLiteConfig{Driver: DriverPure, Path: path}, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	if err := s.Store(ctx, entry("a", 0, "h", "ok")); err != nil {
		t.Fatal(err)
	}
	// A duplicate id is ignored.
	if err := s.Store(ctx, entry("a", time.Hour, "h", "ok")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = NewSQLiteStorage(SQLiteConfig{Driver: DriverPure, Path: path}, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	got, err := s.Query(ctx, nil)
	if err != nil || len(got) != 1 || !got[0].Time.Equal(base) {
		t.Errorf("after reopen Query() = %v, %v", got, err)
	}
}

func TestNewSQLiteStorage_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  SQLiteConfig
	}{
		{name: "empty path", cfg: SQLiteConfig{Driver: DriverPure}},
		{name: "unknown driver", cfg: SQLiteConfig{Driver: "postgres", Path: "x.db"}},
		{name: "missing directory", cfg: SQLiteConfig{Driver: DriverPure, Path: "/nonexistent/dir/x.db"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSQLiteStorage(tt.cfg, nil)
			var se *journal.StorageError
			if !errors.As(err, &se) {
				t.Errorf("error = %v, want *journal.StorageError", err)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	cfg := config.Default().Journal

	cfg.Backend = "memory"
	s, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := s.(*MemoryStorage); !ok {
		t.Errorf("Open(memory) = %T", s)
	}
	s.Close()

	cfg.Backend = "sqlite"
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "j.db")
	s, err = Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	if _, ok := s.(*SQLiteStorage); !ok {
		t.Errorf("Open(sqlite) = %T", s)
	}
	s.Close()

	cfg.Backend = "redis"
	if _, err := Open(cfg, nil); err == nil {
		t.Error("Open(redis) succeeded")
	}
}
