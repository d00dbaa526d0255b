package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/neuraldesk/internal/dashboard"
)

// SnapshotRefreshTool handles the snapshot_refresh MCP tool.
// It recomputes the workload snapshot and caches it in the dashboard.
type SnapshotRefreshTool struct {
	store *dashboard.Store
}

// NewSnapshotRefreshTool creates a SnapshotRefreshTool.
func NewSnapshotRefreshTool(store *dashboard.Store) *SnapshotRefreshTool {
	return &SnapshotRefreshTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *SnapshotRefreshTool) Definition() mcp.Tool {
	return mcp.NewTool("snapshot_refresh",
		mcp.WithDescription(
			"Recompute the workload snapshot: capacity, sentiment, recommended tasks, "+
				"focus projects, habits and the next focus block.",
		),
	)
}

// Handle processes the snapshot_refresh tool call.
func (t *SnapshotRefreshTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := t.store.RefreshSnapshot()
	st := t.store.State()

	var sb strings.Builder
	sb.WriteString("## Workload snapshot\n\n")
	fmt.Fprintf(&sb, "- **Sentiment**: %s\n", snap.Sentiment)
	fmt.Fprintf(&sb, "- **Summary**: %s\n", snap.Summary)
	fmt.Fprintf(&sb, "- **Bandwidth**: %d min (%d min pending across %d tasks)\n",
		snap.BandwidthEstimateMinutes, snap.TotalEstimateMinutes, snap.PendingCount)
	fmt.Fprintf(&sb, "- **Next block**: %s\n", snap.NextBlock)
	if snap.DailyGoal != "" {
		fmt.Fprintf(&sb, "- **Daily goal**: %s\n", snap.DailyGoal)
	}
	if len(snap.FocusChips) > 0 {
		fmt.Fprintf(&sb, "- **Chips**: %s\n", strings.Join(snap.FocusChips, " · "))
	}
	if len(snap.RecommendedTasks) > 0 {
		sb.WriteString("\n### Recommended\n\n")
		for i, id := range snap.RecommendedTasks {
			if task, ok := st.FindTask(id); ok {
				fmt.Fprintf(&sb, "%d. %s (`%s`, %s)\n", i+1, task.Title, task.ID, task.Priority)
			}
		}
	}
	if len(snap.SuggestedHabits) > 0 {
		sb.WriteString("\n### Habits\n\n")
		for _, h := range snap.SuggestedHabits {
			sb.WriteString("- " + h + "\n")
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}
