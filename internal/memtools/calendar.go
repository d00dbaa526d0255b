package memtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/neuraldesk/internal/calendar"
	"github.com/HendryAvila/neuraldesk/internal/dashboard"
)

// CalendarSyncTool handles the calendar_sync MCP tool.
type CalendarSyncTool struct {
	store  *dashboard.Store
	client *calendar.Client
}

// NewCalendarSyncTool creates a CalendarSyncTool.
func NewCalendarSyncTool(store *dashboard.Store, client *calendar.Client) *CalendarSyncTool {
	return &CalendarSyncTool{store: store, client: client}
}

// Definition returns the MCP tool definition for calendar_sync.
func (t *CalendarSyncTool) Definition() mcp.Tool {
	return mcp.NewTool("calendar_sync",
		mcp.WithDescription(
			"Connect a calendar account and import its events, or disconnect with disconnect=true. "+
				"Without arguments, reports the connection status.",
		),
		mcp.WithString("email", mcp.Description("Account to connect and sync.")),
		mcp.WithBoolean("disconnect", mcp.Description("Remove the calendar link. Imported events stay.")),
	)
}

// Handle processes the calendar_sync tool call.
func (t *CalendarSyncTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if boolArg(req, "disconnect", false) {
		calendar.Disconnect(t.store)
		return mcp.NewToolResultText("Calendar disconnected."), nil
	}

	email := strings.TrimSpace(req.GetString("email", ""))
	if email == "" {
		status := calendar.FromRecord(t.store.State().Calendar)
		return mcp.NewToolResultText(calendar.Describe(status) + "."), nil
	}

	final, n, err := calendar.Sync(ctx, t.store, t.client, t.client.Connect(email))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", calendar.Describe(final), err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s. %d events imported.", calendar.Describe(final), n)), nil
}
