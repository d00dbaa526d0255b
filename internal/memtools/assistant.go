package memtools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/neuraldesk/internal/assistant"
	"github.com/HendryAvila/neuraldesk/internal/dashboard"
)

// AskTool handles the assistant_ask MCP tool.
// It renders the offline daily diagnostic for the active project.
type AskTool struct {
	store    *dashboard.Store
	engine   *assistant.Engine
	userName string
}

// NewAskTool creates an AskTool. userName addresses the user when the
// request does not carry a name.
func NewAskTool(store *dashboard.Store, engine *assistant.Engine, userName string) *AskTool {
	return &AskTool{store: store, engine: engine, userName: userName}
}

// Definition returns the MCP tool definition for assistant_ask.
func (t *AskTool) Definition() mcp.Tool {
	return mcp.NewTool("assistant_ask",
		mcp.WithDescription(
			"Get the daily diagnostic for the active project: capacity, next focus block, "+
				"recommended tasks and habits. Works offline. "+
				"Mention progress or calendar in the question for a targeted answer.",
		),
		mcp.WithString("question", mcp.Description("Optional question.")),
		mcp.WithString("user_name", mcp.Description("Name to address the user by.")),
	)
}

// Handle processes the assistant_ask tool call.
func (t *AskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reply := t.engine.Reply(t.store.State(), assistant.Request{
		Question: req.GetString("question", ""),
		UserName: req.GetString("user_name", t.userName),
	})
	return mcp.NewToolResultText(reply.Text), nil
}
