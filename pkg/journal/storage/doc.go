// Package storage provides the journal backends.
//
// MemoryStorage keeps entries in a slice and is meant for tests and
// short-lived runs. SQLiteStorage persists them in a single table and
// works with either SQLite driver:
//
//   - "sqlite" is modernc.org/sqlite, pure Go, the default
//   - "sqlite3" is github.com/mattn/go-sqlite3 and needs cgo
//
// Open picks the backend from the journal section of the configuration.
package storage
