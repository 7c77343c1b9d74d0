package entity

import "errors"

// Sentinel errors for the caching layer. The caching repositories are a thin
// composition layer and never swallow these; callers classify them with
// errors.Is.
var (
	// ErrNetwork indicates that a remote fetch failed (connectivity,
	// timeout, non-2xx response). Retry-eligible for read streams.
	ErrNetwork = errors.New("remote fetch failed")

	// ErrMapping indicates a malformed upstream record (required field
	// missing or unparsable). Never retried: the same record would fail
	// again.
	ErrMapping = errors.New("malformed remote record")

	// ErrStorage indicates a local store read or write failure. Fatal to
	// the enclosing operation.
	ErrStorage = errors.New("local store failed")
)
