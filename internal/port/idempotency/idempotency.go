package idempotency

import (
	"context"
	"errors"
	"time"
)

// ErrConflict reports a request whose key is still being processed.
var ErrConflict = errors.New("idempotency key is already in flight")

// Record is a response captured for replay.
type Record struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// Store remembers the first response produced for an idempotency key.
type Store interface {
	// Check returns the stored record and whether the key was seen.
	Check(ctx context.Context, key string) (Record, bool, error)
	Store(ctx context.Context, key string, rec Record) error
	// Purge drops records older than the cutoff and returns how many went.
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
}
