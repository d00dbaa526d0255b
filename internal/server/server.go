// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations
// and injects them into the tools, prompts and resources that depend on
// them. No business logic lives here, only wiring.
package server

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/neuraldesk/internal/memtools"
	"github.com/HendryAvila/neuraldesk/internal/prompts"
	"github.com/HendryAvila/neuraldesk/internal/resources"
	"github.com/HendryAvila/neuraldesk/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with every tool, prompt and resource of app
// registered.
func New(app *App) *server.MCPServer {
	s := server.NewMCPServer(
		"neuraldesk",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	registerDashboardTools(s, app)
	registerSessionTools(s, app)

	// --- Register prompts ---

	diagnosticPrompt := prompts.NewDiagnosticPrompt()
	s.AddPrompt(diagnosticPrompt.Definition(), diagnosticPrompt.Handle)

	planPrompt := prompts.NewPlanDayPrompt()
	s.AddPrompt(planPrompt.Definition(), planPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(app.Dashboard)
	s.AddResource(resourceHandler.SnapshotResource(), resourceHandler.HandleSnapshot)
	s.AddResource(resourceHandler.StateResource(), resourceHandler.HandleState)

	return s
}

// registerDashboardTools registers the 21 tools that edit and query the
// dashboard.
func registerDashboardTools(s *server.MCPServer, app *App) {
	store := app.Dashboard

	// --- Tasks ---
	taskAdd := tools.NewTaskAddTool(store)
	s.AddTool(taskAdd.Definition(), taskAdd.Handle)

	taskUpdate := tools.NewTaskUpdateTool(store)
	s.AddTool(taskUpdate.Definition(), taskUpdate.Handle)

	taskToggle := tools.NewTaskToggleTool(store)
	s.AddTool(taskToggle.Definition(), taskToggle.Handle)

	taskRemove := tools.NewTaskRemoveTool(store)
	s.AddTool(taskRemove.Definition(), taskRemove.Handle)

	taskList := tools.NewTaskListTool(store)
	s.AddTool(taskList.Definition(), taskList.Handle)

	// --- Goals ---
	goalAdd := tools.NewGoalAddTool(store)
	s.AddTool(goalAdd.Definition(), goalAdd.Handle)

	goalUpdate := tools.NewGoalUpdateTool(store)
	s.AddTool(goalUpdate.Definition(), goalUpdate.Handle)

	goalProgress := tools.NewGoalProgressTool(store)
	s.AddTool(goalProgress.Definition(), goalProgress.Handle)

	goalRemove := tools.NewGoalRemoveTool(store)
	s.AddTool(goalRemove.Definition(), goalRemove.Handle)

	goalList := tools.NewGoalListTool(store)
	s.AddTool(goalList.Definition(), goalList.Handle)

	// --- Projects ---
	projectAdd := tools.NewProjectAddTool(store)
	s.AddTool(projectAdd.Definition(), projectAdd.Handle)

	projectRename := tools.NewProjectRenameTool(store)
	s.AddTool(projectRename.Definition(), projectRename.Handle)

	projectRemove := tools.NewProjectRemoveTool(store)
	s.AddTool(projectRemove.Definition(), projectRemove.Handle)

	projectSelect := tools.NewProjectSelectTool(store)
	s.AddTool(projectSelect.Definition(), projectSelect.Handle)

	// --- Workspace ---
	pageNew := tools.NewPageNewTool(store)
	s.AddTool(pageNew.Definition(), pageNew.Handle)

	pageUpsert := tools.NewPageUpsertTool(store)
	s.AddTool(pageUpsert.Definition(), pageUpsert.Handle)

	pageDelete := tools.NewPageDeleteTool(store)
	s.AddTool(pageDelete.Definition(), pageDelete.Handle)

	eventAdd := tools.NewEventAddTool(store)
	s.AddTool(eventAdd.Definition(), eventAdd.Handle)

	eventUpcoming := tools.NewEventUpcomingTool(store)
	s.AddTool(eventUpcoming.Definition(), eventUpcoming.Handle)

	prefs := tools.NewPreferencesUpdateTool(store)
	s.AddTool(prefs.Definition(), prefs.Handle)

	// --- Snapshot ---
	snapshot := tools.NewSnapshotRefreshTool(store)
	s.AddTool(snapshot.Definition(), snapshot.Handle)
}

// registerSessionTools registers the assistant, memory, chat and
// calendar tools.
func registerSessionTools(s *server.MCPServer, app *App) {
	ask := memtools.NewAskTool(app.Dashboard, app.Assistant, app.Config.Assistant.UserName)
	s.AddTool(ask.Definition(), ask.Handle)

	memShow := memtools.NewMemoryShowTool(app.Sessions, app.Dashboard)
	s.AddTool(memShow.Definition(), memShow.Handle)

	memReset := memtools.NewMemoryResetTool(app.Sessions, app.Assistant, app.Dashboard)
	s.AddTool(memReset.Definition(), memReset.Handle)

	chatSend := memtools.NewChatSendTool(app.Dashboard, app.Chat)
	s.AddTool(chatSend.Definition(), chatSend.Handle)

	chatHistory := memtools.NewChatHistoryTool(app.Dashboard, app.Chat)
	s.AddTool(chatHistory.Definition(), chatHistory.Handle)

	calSync := memtools.NewCalendarSyncTool(app.Dashboard, app.Calendar)
	s.AddTool(calSync.Definition(), calSync.Handle)
}

// serverInstructions returns the system instructions that tell the AI
// how to use the dashboard.
func serverInstructions() string {
	return `You have access to NeuralDesk, a personal productivity dashboard.

## What it holds
Tasks, goals, projects, calendar events, workspace pages and preferences.
Tasks and goals belong to at most one project. One project may be active;
list tools default to it and accept project_id to pick another ("" means
the inbox, tasks with no project).

## Workload snapshot
snapshot_refresh recomputes the workload diagnostic: remaining minutes
against daily capacity, a sentiment (steady, stretch or overloaded),
the three recommended tasks, the next focus block and daily habits.
Call it after a batch of edits, before answering questions about the
user's day.

## Assistant
assistant_ask answers from the snapshot without calling any model. It
remembers the last turns per project (memory_show) and avoids repeating
the same answer within a day. memory_reset forgets a project, or all.

## Live chat
chat_send streams a reply from the configured gateway and records both
turns in the project transcript (chat_history). If the workload changed
since the last message the transcript restarts. A failed stream keeps
the partial reply.

## Calendar
calendar_sync connects an account and imports its events. Call it with
disconnect=true to remove the link, or with no arguments to see the
status.

## Rules
- Use the IDs returned by the tools, never titles, to edit records
- Dates are YYYY-MM-DD or RFC3339
- Do not invent tasks or goals the user did not ask for`
}
