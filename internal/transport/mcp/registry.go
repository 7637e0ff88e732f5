package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"

	portnotifier "github.com/alanyang/robot-roster/internal/port/notifier"
)

var _ portnotifier.PoolNotifier = (*SessionRegistry)(nil)

// SessionRegistry tracks which MCP sessions watch which pools.
// It implements port/notifier.PoolNotifier.
//
// [SRP] Session storage and notification dispatch only.
// [DIP] The pool service depends on the port interface, not this concrete type.
type SessionRegistry struct {
	mu        sync.RWMutex
	bySession map[string]map[uuid.UUID]struct{} // sessionID → watched pools
	byPool    map[uuid.UUID]map[string]struct{} // poolID → watching sessions

	// mcpSrv is set after the MCP server is constructed (avoids circular init dependency).
	mcpMu  sync.RWMutex
	mcpSrv *mcpserver.MCPServer
}

// NewSessionRegistry creates a registry without an MCP server reference.
// Call SetMCPServer once the mcp-go server is constructed.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		bySession: make(map[string]map[uuid.UUID]struct{}),
		byPool:    make(map[uuid.UUID]map[string]struct{}),
	}
}

// SetMCPServer injects the mcp-go server after construction.
func (r *SessionRegistry) SetMCPServer(s *mcpserver.MCPServer) {
	r.mcpMu.Lock()
	r.mcpSrv = s
	r.mcpMu.Unlock()
}

// Watch subscribes a session to a pool's evaluations. Called by the
// watch_pool MCP tool.
func (r *SessionRegistry) Watch(sessionID string, poolID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bySession[sessionID] == nil {
		r.bySession[sessionID] = make(map[uuid.UUID]struct{})
	}
	r.bySession[sessionID][poolID] = struct{}{}

	if r.byPool[poolID] == nil {
		r.byPool[poolID] = make(map[string]struct{})
	}
	r.byPool[poolID][sessionID] = struct{}{}
}

// Unregister drops a closed session and returns the pools it was watching.
func (r *SessionRegistry) Unregister(sessionID string) ([]uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pools, ok := r.bySession[sessionID]
	if !ok {
		return nil, false
	}
	delete(r.bySession, sessionID)

	out := make([]uuid.UUID, 0, len(pools))
	for poolID := range pools {
		delete(r.byPool[poolID], sessionID)
		if len(r.byPool[poolID]) == 0 {
			delete(r.byPool, poolID)
		}
		out = append(out, poolID)
	}
	return out, true
}

// Watchers returns how many sessions watch poolID.
func (r *SessionRegistry) Watchers(poolID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPool[poolID])
}

// NotifyPoolWatchers implements port/notifier.PoolNotifier. Pools nobody
// watches are a no-op.
func (r *SessionRegistry) NotifyPoolWatchers(_ context.Context, poolID uuid.UUID, event any) error {
	r.mu.RLock()
	targets := make([]string, 0, len(r.byPool[poolID]))
	for sessionID := range r.byPool[poolID] {
		targets = append(targets, sessionID)
	}
	r.mu.RUnlock()

	if len(targets) == 0 {
		return nil
	}

	r.mcpMu.RLock()
	srv := r.mcpSrv
	r.mcpMu.RUnlock()

	if srv == nil {
		return fmt.Errorf("mcp server not initialized")
	}

	params, err := toParams(event)
	if err != nil {
		return fmt.Errorf("serialize notification: %w", err)
	}

	var lastErr error
	for _, sessionID := range targets {
		if err := srv.SendNotificationToSpecificClient(sessionID, "notifications/message", params); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func toParams(event any) (map[string]any, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return map[string]any{"data": event}, nil
	}
	return params, nil
}
