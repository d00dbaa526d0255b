package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// defaultFocusBlocks is how many focus blocks plan-day schedules when
// the user does not say.
const defaultFocusBlocks = "4"

// PlanDayPrompt handles the plan-day MCP prompt.
// It guides the AI through turning the open tasks into focus blocks.
type PlanDayPrompt struct{}

// NewPlanDayPrompt creates a PlanDayPrompt.
func NewPlanDayPrompt() *PlanDayPrompt {
	return &PlanDayPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *PlanDayPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("plan-day",
		mcp.WithPromptDescription(
			"Plan the day: pick the tasks that fit today's capacity and lay them out "+
				"as 50-minute focus blocks with 10-minute breaks.",
		),
		mcp.WithArgument("project_id",
			mcp.ArgumentDescription("Project to plan. Default: the active project."),
		),
		mcp.WithArgument("blocks",
			mcp.ArgumentDescription("Number of focus blocks. Default: 4 (240 minutes)."),
		),
	)
}

// Handle processes the plan-day prompt request.
func (p *PlanDayPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	blocks := defaultFocusBlocks
	if b, ok := req.Params.Arguments["blocks"]; ok && b != "" {
		blocks = b
	}
	scope := "the active project"
	list := "Run `task_list` and `goal_list`"
	if id, ok := req.Params.Arguments["project_id"]; ok && id != "" {
		scope = fmt.Sprintf("project `%s`", id)
		list = fmt.Sprintf("Run `task_list` and `goal_list` with project_id %q", id)
	}

	return &mcp.GetPromptResult{
		Description: "Plan the day",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					fmt.Sprintf("Help me plan today for %s.\n\n", scope) +
						"1. Run `snapshot_refresh` to see my capacity and recommended tasks\n" +
						"2. " + list + " to see what is open and what is due\n" +
						"3. Run `event_upcoming` so the plan avoids my meetings\n" +
						fmt.Sprintf("4. Lay out %s focus blocks of 50 minutes with 10-minute breaks, ", blocks) +
						"highest priority and nearest due date first\n" +
						"5. Name anything that does not fit and ask whether to postpone it",
				),
			},
		},
	}, nil
}
