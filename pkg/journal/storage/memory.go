package storage

import (
	"context"
	"slices"
	"sync"

	"humblerss/rssproxy/pkg/journal"
)

// MemoryStorage keeps entries in process memory. Entries are lost on exit.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries []*journal.Entry
	closed  bool
}

// NewMemoryStorage creates an empty in-memory journal.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store appends a copy of entry.
func (s *MemoryStorage) Store(ctx context.Context, entry *journal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return journal.NewStorageError("memory", "store", journal.ErrClosed)
	}
	e := *entry
	s.entries = append(s.entries, &e)
	return nil
}

// Query returns copies of the matching entries.
func (s *MemoryStorage) Query(ctx context.Context, q *journal.Query) ([]*journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, journal.NewStorageError("memory", "query", journal.ErrClosed)
	}
	if q == nil {
		q = &journal.Query{}
	}

	results := []*journal.Entry{}
	for _, e := range s.entries {
		if matches(e, q) {
			c := *e
			results = append(results, &c)
		}
	}

	slices.SortStableFunc(results, func(a, b *journal.Entry) int {
		if q.Order == journal.OldestFirst {
			return a.Time.Compare(b.Time)
		}
		return b.Time.Compare(a.Time)
	})

	if q.Offset >= len(results) {
		return []*journal.Entry{}, nil
	}
	results = results[q.Offset:]

	limit := q.Limit
	if limit <= 0 {
		limit = journal.DefaultLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Count returns the number of matching entries.
func (s *MemoryStorage) Count(ctx context.Context, q *journal.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, journal.NewStorageError("memory", "count", journal.ErrClosed)
	}

	var n int64
	for _, e := range s.entries {
		if matches(e, q) {
			n++
		}
	}
	return n, nil
}

// Delete removes the matching entries.
func (s *MemoryStorage) Delete(ctx context.Context, q *journal.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, journal.NewStorageError("memory", "delete", journal.ErrClosed)
	}

	before := len(s.entries)
	s.entries = slices.DeleteFunc(s.entries, func(e *journal.Entry) bool {
		return matches(e, q)
	})
	return int64(before - len(s.entries)), nil
}

// Ping fails only after Close.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return journal.NewStorageError("memory", "ping", journal.ErrClosed)
	}
	return nil
}

// Close drops all entries.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.entries = nil
	return nil
}

func matches(e *journal.Entry, q *journal.Query) bool {
	if q == nil {
		return true
	}
	if q.Since != nil && e.Time.Before(*q.Since) {
		return false
	}
	if q.Until != nil && e.Time.After(*q.Until) {
		return false
	}
	if q.Host != "" && e.Host != q.Host {
		return false
	}
	if q.Outcome != "" && e.Outcome != q.Outcome {
		return false
	}
	return true
}
