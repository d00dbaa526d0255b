// Package prompts implements MCP prompt handlers for the dashboard.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// DiagnosticPrompt handles the daily-diagnostic MCP prompt.
type DiagnosticPrompt struct{}

// NewDiagnosticPrompt creates a DiagnosticPrompt.
func NewDiagnosticPrompt() *DiagnosticPrompt {
	return &DiagnosticPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *DiagnosticPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("daily-diagnostic",
		mcp.WithPromptDescription(
			"Get today's workload diagnostic for the active project: "+
				"capacity, next focus block, recommended tasks and habits.",
		),
		mcp.WithArgument("question",
			mcp.ArgumentDescription("Optional question, e.g. 'how is my progress?'"),
		),
	)
}

// Handle processes the daily-diagnostic prompt request.
func (p *DiagnosticPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	ask := "Call `assistant_ask` without a question."
	if q := req.Params.Arguments["question"]; q != "" {
		ask = fmt.Sprintf("Call `assistant_ask` with question %q.", q)
	}

	return &mcp.GetPromptResult{
		Description: "Daily diagnostic",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `snapshot_refresh` to update my workload snapshot.\n\n" +
						ask + "\n\n" +
						"Then:\n" +
						"1. Show me the diagnostic as returned, without rewriting it\n" +
						"2. If the sentiment is stretch or overloaded, suggest which task to postpone\n" +
						"3. Ask if I want to start the next focus block",
				),
			},
		},
	}, nil
}
