// Package memtools provides MCP tool handlers for the assistant, its
// conversational memory, the live chat path and the calendar link.
//
// Each tool handler follows the same pattern as internal/tools:
// - A struct with dependencies injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
package memtools

import (
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/neuraldesk/internal/domain"
	"github.com/HendryAvila/neuraldesk/internal/session"
)

// ActiveProject resolves the project a tool acts on when the caller does
// not name one.
type ActiveProject interface {
	ActiveProject() domain.ProjectRef
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// projectArg returns the project_id argument when sent, otherwise the
// active project. An empty project_id means no project.
func projectArg(req mcp.CallToolRequest, active ActiveProject) domain.ProjectRef {
	if v, ok := req.GetArguments()["project_id"].(string); ok {
		return domain.ProjectRef(strings.TrimSpace(v))
	}
	return active.ActiveProject()
}

// formatTurns renders turns oldest first.
func formatTurns(turns []session.Turn) string {
	var sb strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&sb, "**%s** (%s):\n%s\n\n", t.Role, t.Timestamp.Format(time.DateTime), t.Content)
	}
	return strings.TrimRight(sb.String(), "\n")
}
