package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/neuraldesk/internal/dashboard"
	"github.com/HendryAvila/neuraldesk/internal/domain"
)

func formatPage(p domain.WorkspacePage) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s **%s** (`%s`) · %d blocks · updated %s\n",
		p.Icon, p.Title, p.ID, len(p.Blocks), p.UpdatedAt.Format(time.DateTime))
	for _, b := range p.Blocks {
		fmt.Fprintf(&sb, "  - %s: %s\n", b.Type, b.Content)
	}
	return sb.String()
}

// --- page_new ---

// PageNewTool handles the page_new MCP tool.
type PageNewTool struct {
	store *dashboard.Store
}

// NewPageNewTool creates a PageNewTool.
func NewPageNewTool(store *dashboard.Store) *PageNewTool {
	return &PageNewTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *PageNewTool) Definition() mcp.Tool {
	return mcp.NewTool("page_new",
		mcp.WithDescription("Create a workspace page with a starter heading and text block."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Page title.")),
	)
}

// Handle processes the page_new tool call.
func (t *PageNewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := t.store.NewPage(req.GetString("title", ""))
	if err != nil {
		return toolError(err, "page", "")
	}
	return mcp.NewToolResultText("Page created:\n" + formatPage(page)), nil
}

// --- page_upsert ---

// PageUpsertTool handles the page_upsert MCP tool.
type PageUpsertTool struct {
	store *dashboard.Store
}

// NewPageUpsertTool creates a PageUpsertTool.
func NewPageUpsertTool(store *dashboard.Store) *PageUpsertTool {
	return &PageUpsertTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *PageUpsertTool) Definition() mcp.Tool {
	return mcp.NewTool("page_upsert",
		mcp.WithDescription(
			"Create a page or replace the page with the same id. "+
				"The blocks sent replace every existing block.",
		),
		mcp.WithString("id", mcp.Description("Page id. A new page is created when omitted.")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Page title.")),
		mcp.WithString("icon", mcp.Description("Emoji icon.")),
		mcp.WithArray("blocks",
			mcp.Description("Ordered blocks: heading, text, checklist, divider or callout."),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":      map[string]any{"type": "string"},
					"type":    map[string]any{"type": "string"},
					"content": map[string]any{"type": "string"},
				},
				"required": []string{"type"},
			}),
		),
	)
}

// Handle processes the page_upsert tool call.
func (t *PageUpsertTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := strings.TrimSpace(req.GetString("title", ""))
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	var blocks []domain.Block
	if raw, ok := req.GetArguments()["blocks"]; ok {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("encoding blocks: %w", err)
		}
		if err := json.Unmarshal(data, &blocks); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid blocks: %v", err)), nil
		}
	}
	icon := req.GetString("icon", "")
	if icon == "" {
		icon = dashboard.DefaultPageIcon
	}

	page, err := t.store.UpsertPage(domain.WorkspacePage{
		ID:     req.GetString("id", ""),
		Title:  title,
		Icon:   icon,
		Blocks: blocks,
	})
	if err != nil {
		return toolError(err, "page", "")
	}
	return mcp.NewToolResultText("Page saved:\n" + formatPage(page)), nil
}

// --- page_delete ---

// PageDeleteTool handles the page_delete MCP tool.
type PageDeleteTool struct {
	store *dashboard.Store
}

// NewPageDeleteTool creates a PageDeleteTool.
func NewPageDeleteTool(store *dashboard.Store) *PageDeleteTool {
	return &PageDeleteTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *PageDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("page_delete",
		mcp.WithDescription("Delete a workspace page."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Page id.")),
	)
}

// Handle processes the page_delete tool call.
func (t *PageDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if err := t.store.DeletePage(id); err != nil {
		return toolError(err, "page", id)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Page `%s` deleted.", id)), nil
}

// --- event_add ---

// EventAddTool handles the event_add MCP tool.
type EventAddTool struct {
	store *dashboard.Store
}

// NewEventAddTool creates an EventAddTool.
func NewEventAddTool(store *dashboard.Store) *EventAddTool {
	return &EventAddTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *EventAddTool) Definition() mcp.Tool {
	return mcp.NewTool("event_add",
		mcp.WithDescription("Add a manual calendar event. The end time is not checked against the start."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Event title.")),
		mcp.WithString("start", mcp.Required(), mcp.Description("Start as RFC 3339.")),
		mcp.WithString("end", mcp.Required(), mcp.Description("End as RFC 3339.")),
		mcp.WithString("project_id", mcp.Description("Project the event belongs to.")),
	)
}

// Handle processes the event_add tool call.
func (t *EventAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := time.Parse(time.RFC3339, req.GetString("start", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid start: %v", err)), nil
	}
	end, err := time.Parse(time.RFC3339, req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid end: %v", err)), nil
	}

	e := t.store.AddEvent(domain.EventInput{
		Title:     req.GetString("title", ""),
		Start:     start,
		End:       end,
		ProjectID: domain.ProjectRef(strings.TrimSpace(req.GetString("project_id", ""))),
		Source:    domain.SourceManual,
	})
	return mcp.NewToolResultText(fmt.Sprintf("Event **%s** (`%s`) added: %s → %s.",
		e.Title, e.ID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))), nil
}

// --- event_upcoming ---

// EventUpcomingTool handles the event_upcoming MCP tool.
type EventUpcomingTool struct {
	store *dashboard.Store
}

// NewEventUpcomingTool creates an EventUpcomingTool.
func NewEventUpcomingTool(store *dashboard.Store) *EventUpcomingTool {
	return &EventUpcomingTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *EventUpcomingTool) Definition() mcp.Tool {
	return mcp.NewTool("event_upcoming",
		mcp.WithDescription("List events that have not ended yet, soonest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum events. Default: 6.")),
	)
}

// Handle processes the event_upcoming tool call.
func (t *EventUpcomingTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	events := t.store.UpcomingEvents(timeNow(), intArg(req, "limit", dashboard.DefaultUpcomingLimit))
	if len(events) == 0 {
		return mcp.NewToolResultText("No upcoming events."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Upcoming events (%d)\n\n", len(events))
	for _, e := range events {
		fmt.Fprintf(&sb, "- **%s** (`%s`) · %s → %s · %s\n",
			e.Title, e.ID, e.Start.Format("Mon 2 Jan 15:04"), e.End.Format("15:04"), e.Source)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// --- preferences_update ---

// PreferencesUpdateTool handles the preferences_update MCP tool.
type PreferencesUpdateTool struct {
	store *dashboard.Store
}

// NewPreferencesUpdateTool creates a PreferencesUpdateTool.
func NewPreferencesUpdateTool(store *dashboard.Store) *PreferencesUpdateTool {
	return &PreferencesUpdateTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *PreferencesUpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("preferences_update",
		mcp.WithDescription("Change display preferences. Only the fields sent are changed."),
		mcp.WithString("theme"),
		mcp.WithString("card_tone"),
		mcp.WithString("card_shadow"),
		mcp.WithString("field_shape"),
		mcp.WithString("density"),
		mcp.WithString("accent"),
	)
}

// Handle processes the preferences_update tool call.
func (t *PreferencesUpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := t.store.UpdatePreferences(domain.PreferencesPatch{
		Theme:      optString(req, "theme"),
		CardTone:   optString(req, "card_tone"),
		CardShadow: optString(req, "card_shadow"),
		FieldShape: optString(req, "field_shape"),
		Density:    optString(req, "density"),
		Accent:     optString(req, "accent"),
	})
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling preferences: %w", err)
	}
	return mcp.NewToolResultText("Preferences saved:\n```json\n" + string(data) + "\n```"), nil
}
