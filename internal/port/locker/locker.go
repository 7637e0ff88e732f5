package locker

import "context"

// AdvisoryLocker serialises critical sections keyed by an int64.
// The Postgres implementation holds a session advisory lock for the duration
// of fn, so lock and unlock must happen on the same connection.
type AdvisoryLocker interface {
	WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error
}
