package memory

import (
	"context"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"

	portlocker "github.com/alanyang/robot-roster/internal/port/locker"
)

var _ portlocker.AdvisoryLocker = (*Locker)(nil)

// Locker is the in-process stand-in for Postgres advisory locks. One mutex
// is kept per key for the life of the process.
type Locker struct {
	locks *xsync.Map[int64, *sync.Mutex]
}

func NewLocker() *Locker {
	return &Locker{locks: xsync.NewMap[int64, *sync.Mutex]()}
}

func (l *Locker) WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error {
	mu, _ := l.locks.LoadOrStore(key, &sync.Mutex{})

	acquired := make(chan struct{})
	go func() {
		mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-ctx.Done():
		// Release the mutex once the pending Lock goes through.
		go func() {
			<-acquired
			mu.Unlock()
		}()
		return ctx.Err()
	}
	defer mu.Unlock()

	return fn(ctx)
}
