package wire

import (
	"context"
	"log/slog"
	"time"

	portidem "github.com/alanyang/robot-roster/internal/port/idempotency"
)

// startJanitor purges idempotency records older than ttl every interval until
// ctx is cancelled. One pass runs immediately so records left behind by a
// previous process do not wait a full interval.
func startJanitor(ctx context.Context, store portidem.Store, ttl, interval time.Duration) {
	go func() {
		purgeExpired(ctx, store, ttl, time.Now)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purgeExpired(ctx, store, ttl, time.Now)
			}
		}
	}()
}

func purgeExpired(ctx context.Context, store portidem.Store, ttl time.Duration, now func() time.Time) int64 {
	n, err := store.Purge(ctx, now().Add(-ttl))
	if err != nil {
		slog.ErrorContext(ctx, "janitor: purge idempotency records failed", "error", err)
		return 0
	}
	if n > 0 {
		slog.InfoContext(ctx, "janitor: purged idempotency records", "count", n)
	}
	return n
}
