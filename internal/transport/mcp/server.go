package mcp

import (
	"context"
	"log/slog"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	poolsvc "github.com/alanyang/robot-roster/internal/service/pool"
)

// Server wraps the mark3labs/mcp-go MCPServer and its StreamableHTTPServer.
// [SRP] HTTP server lifecycle only (start, stop, session close).
//
//	Tools are registered in tools.go, prompts in prompts.go, session state in registry.go.
type Server struct {
	httpSrv *mcpserver.StreamableHTTPServer
	reg     *SessionRegistry
}

// New creates the MCP transport server. reg is built before the pool
// service so the service can notify watchers through it.
func New(reg *SessionRegistry, poolSvc *poolsvc.Service) *Server {
	s := &Server{reg: reg}

	hooks := &mcpserver.Hooks{}
	hooks.OnUnregisterSession = append(hooks.OnUnregisterSession, s.onSessionClose)

	mcpSrv := mcpserver.NewMCPServer(
		"robot-roster",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithHooks(hooks),
	)

	reg.SetMCPServer(mcpSrv)

	RegisterTools(mcpSrv, reg, poolSvc)
	RegisterPrompts(mcpSrv, poolSvc)

	s.httpSrv = mcpserver.NewStreamableHTTPServer(mcpSrv)
	return s
}

// Handler returns the http.Handler serving the MCP endpoint.
func (s *Server) Handler() http.Handler {
	return s.httpSrv
}

// Registry returns the session registry (implements PoolNotifier).
func (s *Server) Registry() *SessionRegistry {
	return s.reg
}

func (s *Server) onSessionClose(ctx context.Context, session mcpserver.ClientSession) {
	pools, ok := s.reg.Unregister(session.SessionID())
	if !ok {
		return
	}
	slog.InfoContext(ctx, "mcp: session closed", "session_id", session.SessionID(), "watched_pools", len(pools))
}
