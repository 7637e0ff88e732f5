package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyang/robot-roster/internal/domain/eligibility"
	domainpool "github.com/alanyang/robot-roster/internal/domain/pool"
	poolsvc "github.com/alanyang/robot-roster/internal/service/pool"
)

// RegisterTools registers all MCP tools on the server.
// [SRP] Tool registration only.
// [OCP] Add a new tool by adding a new AddTool call; server.go never changes.
func RegisterTools(s *mcpserver.MCPServer, reg *SessionRegistry, poolSvc *poolsvc.Service) {
	s.AddTool(mcpmcp.NewTool("create_pool",
		mcpmcp.WithDescription("Create a robot pool with standing quotas and a cooldown. Returns the pool."),
		mcpmcp.WithString("name", mcpmcp.Required(), mcpmcp.Description("Human-readable pool name")),
		mcpmcp.WithString("quotas", mcpmcp.Description(`JSON quota table, e.g. {"101": 2, "202": 1}`)),
		mcpmcp.WithString("cooldown", mcpmcp.Description("Cooldown as JSON; anything but a non-negative integer means 3")),
	), createPoolHandler(poolSvc))

	s.AddTool(mcpmcp.NewTool("evaluate_pool",
		mcpmcp.WithDescription("Fold the newest assignments into a pool and return the robots eligible for the next task, recorded robots first."),
		mcpmcp.WithString("pool_id", mcpmcp.Required(), mcpmcp.Description("Pool UUID")),
		mcpmcp.WithString("batch", mcpmcp.Description("JSON array of assignments since the last call, oldest first")),
		mcpmcp.WithString("quotas", mcpmcp.Description("JSON quota table overriding the pool's standing quotas")),
		mcpmcp.WithString("cooldown", mcpmcp.Description("Cooldown as JSON; omit to use the pool's cooldown")),
	), evaluatePoolHandler(poolSvc))

	s.AddTool(mcpmcp.NewTool("preview_eligibility",
		mcpmcp.WithDescription("One-shot eligibility over a full assignment history. Nothing is stored."),
		mcpmcp.WithString("batch", mcpmcp.Required(), mcpmcp.Description("JSON array of assignments, oldest first")),
		mcpmcp.WithString("quotas", mcpmcp.Required(), mcpmcp.Description("JSON quota table")),
		mcpmcp.WithString("cooldown", mcpmcp.Description("Cooldown as JSON; omit for the default of 3")),
	), previewHandler(poolSvc))

	s.AddTool(mcpmcp.NewTool("get_pool",
		mcpmcp.WithDescription("Return a pool summary: cooldown, known robots and global assignment count."),
		mcpmcp.WithString("pool_id", mcpmcp.Required(), mcpmcp.Description("Pool UUID")),
	), getPoolHandler(poolSvc))

	s.AddTool(mcpmcp.NewTool("watch_pool",
		mcpmcp.WithDescription("Receive a notification on this session every time the pool is evaluated."),
		mcpmcp.WithString("pool_id", mcpmcp.Required(), mcpmcp.Description("Pool UUID")),
	), watchPoolHandler(reg, poolSvc))
}

// ── Tool handlers ─────────────────────────────────────────────────────────

func createPoolHandler(poolSvc *poolsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		name := mcpmcp.ParseString(req, "name", "")
		if name == "" {
			return mcpmcp.NewToolResultText("error: name is required"), nil
		}
		quotas, err := parseQuotas(mcpmcp.ParseString(req, "quotas", ""))
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: invalid quotas: %s", err)), nil
		}
		cooldown := parseCooldown(mcpmcp.ParseString(req, "cooldown", ""))

		p, err := poolSvc.Create(ctx, name, quotas, cooldown)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(p.Snapshot())
	}
}

func evaluatePoolHandler(poolSvc *poolsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		poolID, err := uuid.Parse(mcpmcp.ParseString(req, "pool_id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid pool_id"), nil
		}
		in, errText := parseInput(req)
		if errText != "" {
			return mcpmcp.NewToolResultText(errText), nil
		}

		out, err := poolSvc.Evaluate(ctx, poolID, in)
		if err != nil {
			return mcpmcp.NewToolResultText(errorText(err)), nil
		}
		return jsonResult(out)
	}
}

func previewHandler(poolSvc *poolsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		in, errText := parseInput(req)
		if errText != "" {
			return mcpmcp.NewToolResultText(errText), nil
		}

		eligible, err := poolSvc.Preview(ctx, in)
		if err != nil {
			return mcpmcp.NewToolResultText(errorText(err)), nil
		}
		return jsonResult(map[string]any{"eligible": eligible})
	}
}

func getPoolHandler(poolSvc *poolsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		poolID, err := uuid.Parse(mcpmcp.ParseString(req, "pool_id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid pool_id"), nil
		}

		p, err := poolSvc.GetByID(ctx, poolID)
		if err != nil {
			return mcpmcp.NewToolResultText(errorText(err)), nil
		}
		return jsonResult(p.Snapshot())
	}
}

func watchPoolHandler(reg *SessionRegistry, poolSvc *poolsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		poolID, err := uuid.Parse(mcpmcp.ParseString(req, "pool_id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid pool_id"), nil
		}
		session := mcpserver.ClientSessionFromContext(ctx)
		if session == nil {
			return mcpmcp.NewToolResultText("error: watch_pool needs an MCP session"), nil
		}
		if _, err := poolSvc.GetByID(ctx, poolID); err != nil {
			return mcpmcp.NewToolResultText(errorText(err)), nil
		}

		reg.Watch(session.SessionID(), poolID)
		return jsonResult(map[string]string{"watching": poolID.String()})
	}
}

// ── argument parsing ──────────────────────────────────────────────────────

func parseInput(req mcpmcp.CallToolRequest) (poolsvc.EvaluateInput, string) {
	var in poolsvc.EvaluateInput
	if raw := mcpmcp.ParseString(req, "batch", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Batch); err != nil {
			return in, fmt.Sprintf("error: invalid batch: %s", err)
		}
	}
	quotas, err := parseQuotas(mcpmcp.ParseString(req, "quotas", ""))
	if err != nil {
		return in, fmt.Sprintf("error: invalid quotas: %s", err)
	}
	in.Quotas = quotas
	in.Cooldown = parseCooldown(mcpmcp.ParseString(req, "cooldown", ""))
	return in, ""
}

func parseQuotas(raw string) (eligibility.QuotaTable, error) {
	if raw == "" {
		return nil, nil
	}
	var q eligibility.QuotaTable
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil, err
	}
	return q, nil
}

// parseCooldown reads raw as a JSON value. Text that is not JSON is kept as
// a string, which the engine replaces with the default cooldown.
func parseCooldown(raw string) eligibility.Value {
	if raw == "" {
		return eligibility.Null()
	}
	var v eligibility.Value
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return eligibility.String(raw)
	}
	return v
}

func errorText(err error) string {
	switch {
	case errors.Is(err, domainpool.ErrNotFound):
		return "error: pool not found"
	case errors.Is(err, eligibility.ErrCapacityExceeded):
		return "error: " + eligibility.ErrCapacityExceeded.Error()
	default:
		return fmt.Sprintf("error: %s", err)
	}
}

func jsonResult(v any) (*mcpmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
	}
	return mcpmcp.NewToolResultText(string(data)), nil
}
