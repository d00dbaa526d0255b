package memtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/neuraldesk/internal/chat"
	"github.com/HendryAvila/neuraldesk/internal/dashboard"
	"github.com/HendryAvila/neuraldesk/internal/domain"
	"github.com/HendryAvila/neuraldesk/internal/session"
)

// --- chat_send ---

// ChatSendTool handles the chat_send MCP tool.
// It streams a reply from the language-model gateway into the transcript.
type ChatSendTool struct {
	store *dashboard.Store
	conv  *chat.Conversation
}

// NewChatSendTool creates a ChatSendTool.
func NewChatSendTool(store *dashboard.Store, conv *chat.Conversation) *ChatSendTool {
	return &ChatSendTool{store: store, conv: conv}
}

// Definition returns the MCP tool definition for chat_send.
func (t *ChatSendTool) Definition() mcp.Tool {
	return mcp.NewTool("chat_send",
		mcp.WithDescription(
			"Send a message to the live assistant and wait for the streamed reply. "+
				"The exchange is kept in the project's chat transcript. "+
				"On failure, retry by sending the same prompt again.",
		),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("Message to send.")),
		mcp.WithString("project_id", mcp.Description("Project. Defaults to the active one.")),
	)
}

// Handle processes the chat_send tool call.
func (t *ChatSendTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt := req.GetString("prompt", "")
	if strings.TrimSpace(prompt) == "" {
		return mcp.NewToolResultError("'prompt' is required"), nil
	}
	project := projectArg(req, t.store)

	var note string
	if t.conv.ObserveContext(project, t.store.Snapshot().Summary) {
		note = "_The workload changed since the last message; the transcript was restarted._\n\n"
	}

	text, err := t.conv.Send(ctx, project, prompt, nil)
	if err != nil {
		if domain.IsValidation(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		msg := fmt.Sprintf("chat failed: %v", err)
		if text != "" {
			msg += "\n\nPartial reply kept in the transcript:\n" + text
		}
		return mcp.NewToolResultError(msg), nil
	}
	return mcp.NewToolResultText(note + text), nil
}

// --- chat_history ---

// ChatHistoryTool handles the chat_history MCP tool.
type ChatHistoryTool struct {
	store *dashboard.Store
	conv  *chat.Conversation
}

// NewChatHistoryTool creates a ChatHistoryTool.
func NewChatHistoryTool(store *dashboard.Store, conv *chat.Conversation) *ChatHistoryTool {
	return &ChatHistoryTool{store: store, conv: conv}
}

// Definition returns the MCP tool definition for chat_history.
func (t *ChatHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("chat_history",
		mcp.WithDescription("Show the live chat transcript of a project."),
		mcp.WithString("project_id", mcp.Description("Project. Defaults to the active one.")),
	)
}

// Handle processes the chat_history tool call.
func (t *ChatHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := projectArg(req, t.store)
	turns := t.conv.History(project)
	if len(turns) == 0 {
		return mcp.NewToolResultText("No chat messages yet."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("## Chat · %s\n\n", session.ProjectKey(project)) + formatTurns(turns)), nil
}
