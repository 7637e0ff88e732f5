package memory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/robot-roster/internal/adapter/memory"
)

func TestLocker_SerialisesSameKey(t *testing.T) {
	l := memory.NewLocker()
	var (
		inside  atomic.Int32
		overlap atomic.Bool
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithLock(context.Background(), 42, func(context.Context) error {
				if inside.Add(1) > 1 {
					overlap.Store(true)
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.False(t, overlap.Load())
}

func TestLocker_DistinctKeysDoNotBlock(t *testing.T) {
	l := memory.NewLocker()
	ctx := context.Background()

	err := l.WithLock(ctx, 1, func(ctx context.Context) error {
		return l.WithLock(ctx, 2, func(context.Context) error { return nil })
	})
	require.NoError(t, err)
}

func TestLocker_ContextCancelledWhileWaiting(t *testing.T) {
	l := memory.NewLocker()
	release := make(chan struct{})
	held := make(chan struct{})

	go func() {
		_ = l.WithLock(context.Background(), 7, func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := l.WithLock(ctx, 7, func(context.Context) error {
		t.Error("callback must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.Eventually(t, func() bool {
		return l.WithLock(context.Background(), 7, func(context.Context) error { return nil }) == nil
	}, time.Second, 5*time.Millisecond)
}
