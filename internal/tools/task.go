package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/neuraldesk/internal/dashboard"
	"github.com/HendryAvila/neuraldesk/internal/domain"
)

var priorityEnum = mcp.Enum(string(domain.PriorityLow), string(domain.PriorityMedium), string(domain.PriorityHigh))

var statusEnum = mcp.Enum(string(domain.StatusPending), string(domain.StatusInProgress), string(domain.StatusDone))

// --- task_add ---

// TaskAddTool handles the task_add MCP tool.
type TaskAddTool struct {
	store *dashboard.Store
}

// NewTaskAddTool creates a TaskAddTool.
func NewTaskAddTool(store *dashboard.Store) *TaskAddTool {
	return &TaskAddTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *TaskAddTool) Definition() mcp.Tool {
	return mcp.NewTool("task_add",
		mcp.WithDescription("Add a pending task to the dashboard."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title, at most 120 characters.")),
		mcp.WithString("description", mcp.Description("Optional details.")),
		mcp.WithString("project_id", mcp.Description("Project the task belongs to. Empty means no project.")),
		mcp.WithString("due_date", mcp.Description("Due date as YYYY-MM-DD or RFC 3339.")),
		mcp.WithNumber("estimate_minutes", mcp.Description("Estimated effort in minutes.")),
		mcp.WithString("priority", priorityEnum, mcp.Description("Priority. Default: medium.")),
	)
}

// Handle processes the task_add tool call.
func (t *TaskAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	due, err := parseDate("due_date", req.GetString("due_date", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task, err := t.store.AddTask(domain.TaskInput{
		Title:           req.GetString("title", ""),
		Description:     req.GetString("description", ""),
		ProjectID:       domain.ProjectRef(strings.TrimSpace(req.GetString("project_id", ""))),
		DueDate:         due,
		EstimateMinutes: optInt(req, "estimate_minutes"),
		Priority:        domain.Priority(req.GetString("priority", "")),
	})
	if err != nil {
		return toolError(err, "task", "")
	}
	return mcp.NewToolResultText("Task added:\n" + formatTask(task)), nil
}

// --- task_update ---

// TaskUpdateTool handles the task_update MCP tool.
type TaskUpdateTool struct {
	store *dashboard.Store
}

// NewTaskUpdateTool creates a TaskUpdateTool.
func NewTaskUpdateTool(store *dashboard.Store) *TaskUpdateTool {
	return &TaskUpdateTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *TaskUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("task_update",
		mcp.WithDescription("Update fields of a task. Only the fields sent are changed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id.")),
		mcp.WithString("title", mcp.Description("New title.")),
		mcp.WithString("description", mcp.Description("New description.")),
		mcp.WithString("project_id", mcp.Description("New project. Empty string removes the project.")),
		mcp.WithString("due_date", mcp.Description("New due date. Empty string clears it.")),
		mcp.WithNumber("estimate_minutes", mcp.Description("New estimate in minutes.")),
		mcp.WithString("priority", priorityEnum),
		mcp.WithString("status", statusEnum),
	)
}

// Handle processes the task_update tool call.
func (t *TaskUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if strings.TrimSpace(id) == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	due, err := optDate(req, "due_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	patch := domain.TaskPatch{
		Title:           optString(req, "title"),
		Description:     optString(req, "description"),
		ProjectID:       optProject(req, "project_id"),
		DueDate:         due,
		ClearDueDate:    hasArg(req, "due_date") && due == nil,
		EstimateMinutes: optInt(req, "estimate_minutes"),
	}
	if p := optString(req, "priority"); p != nil {
		v := domain.Priority(*p)
		patch.Priority = &v
	}
	if s := optString(req, "status"); s != nil {
		v := domain.TaskStatus(*s)
		patch.Status = &v
	}

	task, err := t.store.UpdateTask(id, patch)
	if err != nil {
		return toolError(err, "task", id)
	}
	return mcp.NewToolResultText("Task updated:\n" + formatTask(task)), nil
}

// --- task_toggle ---

// TaskToggleTool handles the task_toggle MCP tool.
type TaskToggleTool struct {
	store *dashboard.Store
}

// NewTaskToggleTool creates a TaskToggleTool.
func NewTaskToggleTool(store *dashboard.Store) *TaskToggleTool {
	return &TaskToggleTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *TaskToggleTool) Definition() mcp.Tool {
	return mcp.NewTool("task_toggle",
		mcp.WithDescription(
			"Toggle a task between done and pending, or set an explicit status. "+
				"Without a status, any task that is not done becomes done.",
		),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id.")),
		mcp.WithString("status", statusEnum, mcp.Description("Explicit target status.")),
	)
}

// Handle processes the task_toggle tool call.
func (t *TaskToggleTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	var explicit *domain.TaskStatus
	if s := req.GetString("status", ""); s != "" {
		v := domain.TaskStatus(s)
		explicit = &v
	}

	task, err := t.store.ToggleTaskStatus(id, explicit)
	if err != nil {
		return toolError(err, "task", id)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task %q is now %s.", task.Title, task.Status)), nil
}

// --- task_remove ---

// TaskRemoveTool handles the task_remove MCP tool.
type TaskRemoveTool struct {
	store *dashboard.Store
}

// NewTaskRemoveTool creates a TaskRemoveTool.
func NewTaskRemoveTool(store *dashboard.Store) *TaskRemoveTool {
	return &TaskRemoveTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *TaskRemoveTool) Definition() mcp.Tool {
	return mcp.NewTool("task_remove",
		mcp.WithDescription("Delete a task."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id.")),
	)
}

// Handle processes the task_remove tool call.
func (t *TaskRemoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if err := t.store.RemoveTask(id); err != nil {
		return toolError(err, "task", id)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task `%s` removed.", id)), nil
}

// --- task_list ---

// TaskListTool handles the task_list MCP tool.
type TaskListTool struct {
	store *dashboard.Store
}

// NewTaskListTool creates a TaskListTool.
func NewTaskListTool(store *dashboard.Store) *TaskListTool {
	return &TaskListTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *TaskListTool) Definition() mcp.Tool {
	return mcp.NewTool("task_list",
		mcp.WithDescription(
			"List tasks, open ones first, ordered by due date. "+
				"Send project_id to scope the list; an empty project_id lists tasks without a project.",
		),
		mcp.WithString("project_id", mcp.Description("Project scope.")),
	)
}

// Handle processes the task_list tool call.
func (t *TaskListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := dashboard.AllProjects()
	if ref := optProject(req, "project_id"); ref != nil {
		filter = dashboard.InProject(*ref)
	}

	tasks := t.store.Tasks(filter)
	if len(tasks) == 0 {
		return mcp.NewToolResultText("No tasks yet."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Tasks (%d)\n\n", len(tasks))
	for _, task := range tasks {
		sb.WriteString(formatTask(task) + "\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}
