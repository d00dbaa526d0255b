// Package tools implements MCP tool handlers over the dashboard store.
//
// Each tool receives its dependencies via its struct and exposes
// Definition() for registration and Handle() as the mcp-go handler.
// Validation and not-found failures become tool errors the host can show
// inline; they are never returned as Go errors.
package tools

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/neuraldesk/internal/domain"
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// hasArg reports whether key was sent, even with an empty value.
func hasArg(req mcp.CallToolRequest, key string) bool {
	_, ok := req.GetArguments()[key]
	return ok
}

// intArg extracts an integer argument, returning defaultVal if the key is
// missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// optString returns a pointer to the argument, or nil when it was not sent.
func optString(req mcp.CallToolRequest, key string) *string {
	if !hasArg(req, key) {
		return nil
	}
	v := req.GetString(key, "")
	return &v
}

// optInt returns a pointer to the argument, or nil when it was not sent.
func optInt(req mcp.CallToolRequest, key string) *int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}

// optProject returns the project reference argument, or nil when it was
// not sent. An empty string means no project.
func optProject(req mcp.CallToolRequest, key string) *domain.ProjectRef {
	s := optString(req, key)
	if s == nil {
		return nil
	}
	ref := domain.ProjectRef(strings.TrimSpace(*s))
	return &ref
}

// parseDate accepts an RFC 3339 instant or a YYYY-MM-DD date. An empty
// string yields nil.
func parseDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, domain.Invalid(field, "%q is not a date (use YYYY-MM-DD or RFC 3339)", s)
}

// optDate parses a date argument, returning nil when it was not sent.
func optDate(req mcp.CallToolRequest, key string) (*time.Time, error) {
	if !hasArg(req, key) {
		return nil, nil
	}
	return parseDate(key, req.GetString(key, ""))
}

// toolError converts store failures into tool results. Unknown errors
// are returned as Go errors.
func toolError(err error, what, id string) (*mcp.CallToolResult, error) {
	switch {
	case domain.IsValidation(err):
		return mcp.NewToolResultError(err.Error()), nil
	case errors.Is(err, domain.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("%s %q not found", what, id)), nil
	default:
		return nil, err
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "no due date"
	}
	return "due " + t.Format(time.DateOnly)
}

func formatTask(t domain.Task) string {
	est := "no estimate"
	if t.EstimateMinutes != nil {
		est = fmt.Sprintf("%d min", *t.EstimateMinutes)
	}
	project := ""
	if !t.ProjectID.IsZero() {
		project = " · project " + t.ProjectID.String()
	}
	return fmt.Sprintf("- [%s] **%s** (`%s`) · %s · %s · %s%s",
		t.Status, t.Title, t.ID, t.Priority, est, formatDate(t.DueDate), project)
}

func formatGoal(g domain.Goal) string {
	return fmt.Sprintf("- **%s** (`%s`) · %d/%d %s · %s",
		g.Title, g.ID, g.CompletedUnits, g.TargetUnits, g.UnitLabel, formatDate(g.DueDate))
}
