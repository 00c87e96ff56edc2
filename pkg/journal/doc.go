// Package journal keeps a record of every upstream fetch the proxy makes.
//
// A Recorder is attached to fetch clients as a fetch.Observer. It turns each
// fetch.Result into an Entry and writes it to a Storage from a background
// goroutine, so a slow disk never delays the response to the client. When
// the queue is full the entry is dropped and counted.
//
// Backends live in the storage subpackage (memory and SQLite). The
// retention subpackage prunes old entries on a cron schedule.
package journal
