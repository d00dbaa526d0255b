package server

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/neuraldesk/internal/config"
	"github.com/HendryAvila/neuraldesk/internal/domain"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	return &config.Config{
		Storage:   config.StorageConfig{Backend: backend, Dir: t.TempDir()},
		Log:       config.LogConfig{Level: "info", Format: "json"},
		Assistant: config.AssistantConfig{MemoryTurns: 10},
		Chat: config.ChatConfig{
			Endpoint:        "http://127.0.0.1:0/api/chat",
			HistoryTurns:    12,
			TranscriptTurns: 50,
		},
		Calendar: config.CalendarConfig{Provider: config.CalendarSimulated},
	}
}

// rpcNames sends a list request and returns the sorted names in the
// result field named key.
func rpcNames(t *testing.T, app *App, method, key string) []string {
	t.Helper()
	s := New(app)
	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"` + method + `"}`)
	raw, err := json.Marshal(s.HandleMessage(context.Background(), msg))
	require.NoError(t, err)

	var resp struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp), string(raw))
	var items []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(resp.Result[key], &items), string(raw))

	var names []string
	for _, item := range items {
		names = append(names, item.Name)
	}
	sort.Strings(names)
	return names
}

func TestNew_RegistersEverything(t *testing.T) {
	app, err := NewApp(testConfig(t, "memory"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	tools := rpcNames(t, app, "tools/list", "tools")
	assert.Len(t, tools, 27)
	for _, name := range []string{
		"task_add", "goal_progress", "project_select", "page_upsert",
		"event_upcoming", "snapshot_refresh", "assistant_ask",
		"memory_reset", "chat_send", "calendar_sync",
	} {
		assert.Contains(t, tools, name)
	}

	assert.Equal(t, []string{"daily-diagnostic", "plan-day"}, rpcNames(t, app, "prompts/list", "prompts"))
	assert.Equal(t, []string{"Dashboard state", "Workload snapshot"}, rpcNames(t, app, "resources/list", "resources"))
}

func TestApp_PersistsAcrossRestarts(t *testing.T) {
	cfg := testConfig(t, "file")

	app, err := NewApp(cfg, nil)
	require.NoError(t, err)
	task, err := app.Dashboard.AddTask(domain.TaskInput{Title: "Write brief"})
	require.NoError(t, err)
	require.NoError(t, app.Close())
	require.NoError(t, app.Close(), "second close is a no-op")

	reopened, err := NewApp(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	tasks := reopened.Dashboard.State().Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)
	assert.Equal(t, "Write brief", tasks[0].Title)
}

func TestApp_NoCalendarProvider(t *testing.T) {
	cfg := testConfig(t, "memory")
	cfg.Calendar.Provider = config.CalendarNone

	app, err := NewApp(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	_, err = app.Calendar.FetchEvents(context.Background(), app.Calendar.Connect("ana@example.com"))
	assert.Error(t, err)
}
