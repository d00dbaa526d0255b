package memtools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/neuraldesk/internal/assistant"
	"github.com/HendryAvila/neuraldesk/internal/session"
)

// Buffer names accepted by memory_show.
const (
	bufferMemory     = "memory"
	bufferTranscript = "transcript"
)

// --- memory_show ---

// MemoryShowTool handles the memory_show MCP tool.
type MemoryShowTool struct {
	sessions *session.Store
	active   ActiveProject
}

// NewMemoryShowTool creates a MemoryShowTool.
func NewMemoryShowTool(sessions *session.Store, active ActiveProject) *MemoryShowTool {
	return &MemoryShowTool{sessions: sessions, active: active}
}

// Definition returns the MCP tool definition for memory_show.
func (t *MemoryShowTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_show",
		mcp.WithDescription("Show the assistant memory or the chat transcript of a project."),
		mcp.WithString("project_id", mcp.Description("Project. Defaults to the active one; empty means no project.")),
		mcp.WithString("buffer",
			mcp.Enum(bufferMemory, bufferTranscript),
			mcp.Description("Which buffer to show. Default: memory."),
		),
	)
}

// Handle processes the memory_show tool call.
func (t *MemoryShowTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := session.ProjectKey(projectArg(req, t.active))

	buf := t.sessions.Memory
	name := req.GetString("buffer", bufferMemory)
	switch name {
	case bufferMemory:
	case bufferTranscript:
		buf = t.sessions.Transcript
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown buffer %q: must be memory or transcript", name)), nil
	}

	turns := buf.Load(key)
	if len(turns) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No %s turns for %s.", name, key)), nil
	}
	header := fmt.Sprintf("## %s · %s (%d/%d)\n\n", name, key, len(turns), buf.Limit())
	return mcp.NewToolResultText(header + formatTurns(turns)), nil
}

// --- memory_reset ---

// MemoryResetTool handles the memory_reset MCP tool.
type MemoryResetTool struct {
	sessions *session.Store
	engine   *assistant.Engine
	active   ActiveProject
}

// NewMemoryResetTool creates a MemoryResetTool.
func NewMemoryResetTool(sessions *session.Store, engine *assistant.Engine, active ActiveProject) *MemoryResetTool {
	return &MemoryResetTool{sessions: sessions, engine: engine, active: active}
}

// Definition returns the MCP tool definition for memory_reset.
func (t *MemoryResetTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_reset",
		mcp.WithDescription(
			"Forget the conversation of one project, or of every project with all=true. "+
				"Clears the assistant memory, the chat transcript and the reply history.",
		),
		mcp.WithString("project_id", mcp.Description("Project. Defaults to the active one.")),
		mcp.WithBoolean("all", mcp.Description("Clear every project.")),
	)
}

// Handle processes the memory_reset tool call.
func (t *MemoryResetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if boolArg(req, "all", false) {
		t.sessions.ClearAll()
		t.engine.Forget("")
		return mcp.NewToolResultText("All conversation memory cleared."), nil
	}

	key := session.ProjectKey(projectArg(req, t.active))
	t.sessions.Memory.Reset(key)
	t.sessions.Transcript.Reset(key)
	t.engine.Forget(key)
	return mcp.NewToolResultText(fmt.Sprintf("Conversation memory for %s cleared.", key)), nil
}
