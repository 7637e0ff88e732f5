//go:build integration

package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// NotifyCall records a single notification delivered by CaptureNotifier.
type NotifyCall struct {
	PoolID uuid.UUID
	Event  any
}

// CaptureNotifier is a PoolNotifier test double. It records every call and
// is safe for concurrent use.
type CaptureNotifier struct {
	mu    sync.Mutex
	Calls []NotifyCall
}

func (c *CaptureNotifier) NotifyPoolWatchers(_ context.Context, poolID uuid.UUID, event any) error {
	c.mu.Lock()
	c.Calls = append(c.Calls, NotifyCall{PoolID: poolID, Event: event})
	c.mu.Unlock()
	return nil
}

// PoolNotifications returns all calls made for poolID.
func (c *CaptureNotifier) PoolNotifications(poolID uuid.UUID) []NotifyCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []NotifyCall
	for _, call := range c.Calls {
		if call.PoolID == poolID {
			out = append(out, call)
		}
	}
	return out
}

// Reset clears all recorded calls.
func (c *CaptureNotifier) Reset() {
	c.mu.Lock()
	c.Calls = nil
	c.mu.Unlock()
}
