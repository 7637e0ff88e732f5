package notifier

import (
	"context"

	"github.com/google/uuid"
)

// PoolNotifier pushes a message to every client watching a pool.
type PoolNotifier interface {
	NotifyPoolWatchers(ctx context.Context, poolID uuid.UUID, event any) error
}
