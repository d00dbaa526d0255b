package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/neuraldesk/internal/dashboard"
	"github.com/HendryAvila/neuraldesk/internal/domain"
)

// --- goal_add ---

// GoalAddTool handles the goal_add MCP tool.
type GoalAddTool struct {
	store *dashboard.Store
}

// NewGoalAddTool creates a GoalAddTool.
func NewGoalAddTool(store *dashboard.Store) *GoalAddTool {
	return &GoalAddTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GoalAddTool) Definition() mcp.Tool {
	return mcp.NewTool("goal_add",
		mcp.WithDescription("Add a goal measured in units, e.g. '4 chapters' or '10 workouts'."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Goal title.")),
		mcp.WithNumber("target_units", mcp.Required(), mcp.Description("Units to reach, at least 1.")),
		mcp.WithString("unit_label", mcp.Description("What a unit is. Default: units.")),
		mcp.WithString("project_id", mcp.Description("Project the goal belongs to.")),
		mcp.WithString("due_date", mcp.Description("Due date as YYYY-MM-DD or RFC 3339.")),
	)
}

// Handle processes the goal_add tool call.
func (t *GoalAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	due, err := parseDate("due_date", req.GetString("due_date", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	goal, err := t.store.AddGoal(domain.GoalInput{
		Title:       req.GetString("title", ""),
		ProjectID:   domain.ProjectRef(strings.TrimSpace(req.GetString("project_id", ""))),
		TargetUnits: intArg(req, "target_units", 0),
		UnitLabel:   req.GetString("unit_label", ""),
		DueDate:     due,
	})
	if err != nil {
		return toolError(err, "goal", "")
	}
	return mcp.NewToolResultText("Goal added:\n" + formatGoal(goal)), nil
}

// --- goal_update ---

// GoalUpdateTool handles the goal_update MCP tool.
type GoalUpdateTool struct {
	store *dashboard.Store
}

// NewGoalUpdateTool creates a GoalUpdateTool.
func NewGoalUpdateTool(store *dashboard.Store) *GoalUpdateTool {
	return &GoalUpdateTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GoalUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("goal_update",
		mcp.WithDescription(
			"Update fields of a goal. Completed units are always kept between 0 and the target.",
		),
		mcp.WithString("id", mcp.Required(), mcp.Description("Goal id.")),
		mcp.WithString("title", mcp.Description("New title.")),
		mcp.WithNumber("target_units", mcp.Description("New target, at least 1.")),
		mcp.WithNumber("completed_units", mcp.Description("New completed units.")),
		mcp.WithString("unit_label", mcp.Description("New unit label.")),
		mcp.WithString("project_id", mcp.Description("New project. Empty string removes the project.")),
		mcp.WithString("due_date", mcp.Description("New due date. Empty string clears it.")),
	)
}

// Handle processes the goal_update tool call.
func (t *GoalUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if strings.TrimSpace(id) == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	due, err := optDate(req, "due_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	goal, err := t.store.UpdateGoal(id, domain.GoalPatch{
		Title:          optString(req, "title"),
		ProjectID:      optProject(req, "project_id"),
		TargetUnits:    optInt(req, "target_units"),
		CompletedUnits: optInt(req, "completed_units"),
		UnitLabel:      optString(req, "unit_label"),
		DueDate:        due,
		ClearDueDate:   hasArg(req, "due_date") && due == nil,
	})
	if err != nil {
		return toolError(err, "goal", id)
	}
	return mcp.NewToolResultText("Goal updated:\n" + formatGoal(goal)), nil
}

// --- goal_progress ---

// GoalProgressTool handles the goal_progress MCP tool.
type GoalProgressTool struct {
	store *dashboard.Store
}

// NewGoalProgressTool creates a GoalProgressTool.
func NewGoalProgressTool(store *dashboard.Store) *GoalProgressTool {
	return &GoalProgressTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GoalProgressTool) Definition() mcp.Tool {
	return mcp.NewTool("goal_progress",
		mcp.WithDescription("Add (or with a negative delta, remove) completed units of a goal."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Goal id.")),
		mcp.WithNumber("delta", mcp.Description("Units to add. Default: 1.")),
	)
}

// Handle processes the goal_progress tool call.
func (t *GoalProgressTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	goal, err := t.store.AdjustGoalProgress(id, intArg(req, "delta", 1))
	if err != nil {
		return toolError(err, "goal", id)
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %d/%d %s.",
		goal.Title, goal.CompletedUnits, goal.TargetUnits, goal.UnitLabel)), nil
}

// --- goal_remove ---

// GoalRemoveTool handles the goal_remove MCP tool.
type GoalRemoveTool struct {
	store *dashboard.Store
}

// NewGoalRemoveTool creates a GoalRemoveTool.
func NewGoalRemoveTool(store *dashboard.Store) *GoalRemoveTool {
	return &GoalRemoveTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GoalRemoveTool) Definition() mcp.Tool {
	return mcp.NewTool("goal_remove",
		mcp.WithDescription("Delete a goal."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Goal id.")),
	)
}

// Handle processes the goal_remove tool call.
func (t *GoalRemoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if err := t.store.RemoveGoal(id); err != nil {
		return toolError(err, "goal", id)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Goal `%s` removed.", id)), nil
}

// --- goal_list ---

// GoalListTool handles the goal_list MCP tool.
type GoalListTool struct {
	store *dashboard.Store
}

// NewGoalListTool creates a GoalListTool.
func NewGoalListTool(store *dashboard.Store) *GoalListTool {
	return &GoalListTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GoalListTool) Definition() mcp.Tool {
	return mcp.NewTool("goal_list",
		mcp.WithDescription("List goals ordered by due date. Send project_id to scope the list."),
		mcp.WithString("project_id", mcp.Description("Project scope.")),
	)
}

// Handle processes the goal_list tool call.
func (t *GoalListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := dashboard.AllProjects()
	if ref := optProject(req, "project_id"); ref != nil {
		filter = dashboard.InProject(*ref)
	}

	goals := t.store.Goals(filter)
	if len(goals) == 0 {
		return mcp.NewToolResultText("No goals yet."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Goals (%d)\n\n", len(goals))
	for _, g := range goals {
		sb.WriteString(formatGoal(g) + "\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}
