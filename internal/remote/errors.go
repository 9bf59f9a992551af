package remote

import "github.com/cockroachdb/errors"

var (
	// ErrNotFound marks a document that does not exist or was tombstoned.
	ErrNotFound = errors.New("remote: document not found")

	// ErrUnavailable marks calls rejected because the client is disconnected
	// or its circuit breaker is open. The storage layer treats it like any
	// other remote failure: log, fall back locally, queue for sync.
	ErrUnavailable = errors.New("remote: store unavailable")
)
