package mcp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	poolsvc "github.com/alanyang/robot-roster/internal/service/pool"
)

// RegisterPrompts registers the dispatcher prompt.
// [SRP] Prompt registration only.
func RegisterPrompts(s *mcpserver.MCPServer, poolSvc *poolsvc.Service) {
	s.AddPrompt(
		mcpmcp.NewPrompt("dispatcher",
			mcpmcp.WithPromptDescription("Instructions for an agent that hands tasks to robots in one pool."),
			mcpmcp.WithArgument("pool_id",
				mcpmcp.ArgumentDescription("Pool UUID the agent dispatches for."),
				mcpmcp.RequiredArgument(),
			),
		),
		dispatcherPrompt(poolSvc),
	)
}

func dispatcherPrompt(poolSvc *poolsvc.Service) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, req mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		poolID, err := uuid.Parse(req.Params.Arguments["pool_id"])
		if err != nil {
			return nil, fmt.Errorf("invalid pool_id: %w", err)
		}

		p, err := poolSvc.GetByID(ctx, poolID)
		if err != nil {
			return nil, fmt.Errorf("get pool %s: %w", poolID, err)
		}

		text := fmt.Sprintf(`You dispatch tasks for robot pool %q (%s).
A robot must sit out %d assignments after its last one, and each robot has a lifetime quota.
After every task you hand out, call evaluate_pool with pool_id %s and batch set to the robot IDs
assigned since your previous call, oldest first. Give the next task to the first robot in the
returned eligible list. When the list is empty, either wait or record a blank ("_") in the batch.`,
			p.Name, p.ID, p.Cooldown, p.ID)

		return mcpmcp.NewGetPromptResult(
			fmt.Sprintf("Dispatcher for pool %s", p.Name),
			[]mcpmcp.PromptMessage{
				mcpmcp.NewPromptMessage(
					mcpmcp.RoleUser,
					mcpmcp.TextContent{
						Type: "text",
						Text: text,
					},
				),
			},
		), nil
	}
}
