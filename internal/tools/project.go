package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/neuraldesk/internal/dashboard"
	"github.com/HendryAvila/neuraldesk/internal/domain"
)

// --- project_add ---

// ProjectAddTool handles the project_add MCP tool.
type ProjectAddTool struct {
	store *dashboard.Store
}

// NewProjectAddTool creates a ProjectAddTool.
func NewProjectAddTool(store *dashboard.Store) *ProjectAddTool {
	return &ProjectAddTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ProjectAddTool) Definition() mcp.Tool {
	return mcp.NewTool("project_add",
		mcp.WithDescription("Create a project. The new project becomes the active one."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name.")),
		mcp.WithString("color", mcp.Description("Hex color like #3b82f6. Random when omitted.")),
	)
}

// Handle processes the project_add tool call.
func (t *ProjectAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := t.store.AddProject(domain.CreateProjectRequest{
		Name:  req.GetString("name", ""),
		Color: req.GetString("color", ""),
	})
	if err != nil {
		return toolError(err, "project", "")
	}
	return mcp.NewToolResultText(fmt.Sprintf("Project **%s** (`%s`, %s) created and selected.", p.Name, p.ID, p.Color)), nil
}

// --- project_rename ---

// ProjectRenameTool handles the project_rename MCP tool.
type ProjectRenameTool struct {
	store *dashboard.Store
}

// NewProjectRenameTool creates a ProjectRenameTool.
func NewProjectRenameTool(store *dashboard.Store) *ProjectRenameTool {
	return &ProjectRenameTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ProjectRenameTool) Definition() mcp.Tool {
	return mcp.NewTool("project_rename",
		mcp.WithDescription("Rename a project."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Project id.")),
		mcp.WithString("name", mcp.Required(), mcp.Description("New name.")),
	)
}

// Handle processes the project_rename tool call.
func (t *ProjectRenameTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	p, err := t.store.RenameProject(domain.RenameProjectRequest{ID: id, Name: req.GetString("name", "")})
	if err != nil {
		return toolError(err, "project", id)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Project `%s` renamed to **%s**.", p.ID, p.Name)), nil
}

// --- project_remove ---

// ProjectRemoveTool handles the project_remove MCP tool.
type ProjectRemoveTool struct {
	store *dashboard.Store
}

// NewProjectRemoveTool creates a ProjectRemoveTool.
func NewProjectRemoveTool(store *dashboard.Store) *ProjectRemoveTool {
	return &ProjectRemoveTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ProjectRemoveTool) Definition() mcp.Tool {
	return mcp.NewTool("project_remove",
		mcp.WithDescription(
			"Delete a project. Its tasks, goals and events are kept and moved out of the project.",
		),
		mcp.WithString("id", mcp.Required(), mcp.Description("Project id.")),
	)
}

// Handle processes the project_remove tool call.
func (t *ProjectRemoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if err := t.store.RemoveProject(id); err != nil {
		return toolError(err, "project", id)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Project `%s` removed. Its items now have no project.", id)), nil
}

// --- project_select ---

// ProjectSelectTool handles the project_select MCP tool.
type ProjectSelectTool struct {
	store *dashboard.Store
}

// NewProjectSelectTool creates a ProjectSelectTool.
func NewProjectSelectTool(store *dashboard.Store) *ProjectSelectTool {
	return &ProjectSelectTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ProjectSelectTool) Definition() mcp.Tool {
	return mcp.NewTool("project_select",
		mcp.WithDescription("Set the active project. Omit id or send an empty id to clear the selection."),
		mcp.WithString("id", mcp.Description("Project id.")),
	)
}

// Handle processes the project_select tool call.
func (t *ProjectSelectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if err := t.store.SetActiveProject(id); err != nil {
		return toolError(err, "project", id)
	}
	if id == "" {
		return mcp.NewToolResultText("No project selected."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Project `%s` is now active.", id)), nil
}
