package catalog

import (
	"context"
	"errors"
)

// ErrNotFound means the business or its catalog does not exist upstream.
// Not retryable.
var ErrNotFound = errors.New("catalog: business not found")

// ErrTransient wraps network-level load failures. The caller may retry with
// the same arguments; the loader itself never retries.
var ErrTransient = errors.New("catalog: transient load failure")

// Loader is the port for fetching a full catalog snapshot.
// The sync package depends on this abstraction, not on HTTP directly,
// so tests can swap in an in-memory implementation.
type Loader interface {
	Load(ctx context.Context, businessID string) (*Snapshot, error)
}
