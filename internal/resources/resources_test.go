package resources

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/neuraldesk/internal/dashboard"
	"github.com/HendryAvila/neuraldesk/internal/domain"
)

func readText(t *testing.T, contents []mcp.ResourceContents, err error) string {
	t.Helper()
	require.NoError(t, err)
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", tc.MIMEType)
	return tc.Text
}

func TestHandler(t *testing.T) {
	st := domain.InitialState()
	st.Tasks = []domain.Task{{ID: "t1", Title: "Write brief", Priority: domain.PriorityHigh}}
	h := NewHandler(dashboard.New(st))

	assert.Equal(t, SnapshotURI, h.SnapshotResource().URI)
	assert.Equal(t, StateURI, h.StateResource().URI)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = SnapshotURI
	contents, err := h.HandleSnapshot(context.Background(), req)
	var snap domain.AiSnapshot
	require.NoError(t, json.Unmarshal([]byte(readText(t, contents, err)), &snap))
	assert.Equal(t, domain.SentimentSteady, snap.Sentiment)
	assert.Equal(t, []string{"t1"}, snap.RecommendedTasks)

	req.Params.URI = StateURI
	contents, err = h.HandleState(context.Background(), req)
	var state domain.State
	require.NoError(t, json.Unmarshal([]byte(readText(t, contents, err)), &state))
	require.Len(t, state.Tasks, 1)
	assert.Nil(t, state.Snapshot, "reading the snapshot resource does not cache it")
}
