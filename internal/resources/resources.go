// Package resources implements MCP resource handlers for the dashboard.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (neuraldesk://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/neuraldesk/internal/dashboard"
)

// Resource URIs.
const (
	SnapshotURI = "neuraldesk://snapshot"
	StateURI    = "neuraldesk://state"
)

// Handler manages dashboard resource endpoints.
type Handler struct {
	store *dashboard.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store *dashboard.Store) *Handler {
	return &Handler{store: store}
}

// SnapshotResource returns the MCP resource definition for the workload snapshot.
func (h *Handler) SnapshotResource() mcp.Resource {
	return mcp.NewResource(
		SnapshotURI,
		"Workload snapshot",
		mcp.WithResourceDescription("Capacity, sentiment, recommended tasks and next focus block"),
		mcp.WithMIMEType("application/json"),
	)
}

// StateResource returns the MCP resource definition for the whole dashboard.
func (h *Handler) StateResource() mcp.Resource {
	return mcp.NewResource(
		StateURI,
		"Dashboard state",
		mcp.WithResourceDescription("Tasks, goals, projects, events, pages and preferences"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleSnapshot returns the cached snapshot, or a freshly built one
// when none is cached. Reading never mutates the dashboard.
func (h *Handler) HandleSnapshot(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, h.store.Snapshot())
}

// HandleState returns the whole dashboard state as JSON.
func (h *Handler) HandleState(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, h.store.State())
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
