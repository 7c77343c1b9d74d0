// Package sqlite provides the SQLite implementations of the store adapter
// contracts. Each store pairs a table with an in-process broadcaster so that
// observing readers are woken up after every mutation.
package sqlite

import (
	"time"

	"gentcache/internal/observability/metrics"
)

// recordQuery observes query latency, meant to be deferred with the call
// start time.
func recordQuery(operation string, start time.Time) {
	metrics.RecordDBQuery(operation, time.Since(start))
}

// nullableID maps the zero ID to NULL so SQLite assigns a fresh rowid, while
// explicitly set IDs (tests, seed paths) are kept.
func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

// nullableString maps the empty string to NULL for optional columns.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
