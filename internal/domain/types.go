// Package domain holds the data model of the productivity dashboard:
// tasks, goals, projects, calendar events, workspace pages, display
// preferences and the derived workload snapshot.
//
// The types are plain values. All mutation rules live in the dashboard
// package; this package only knows how to validate enums, clone state and
// describe patches.
package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// --- Enums ---

// Priority ranks a task for recommendation.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Weight is the ranking weight used by the snapshot builder.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// TaskStatus is the lifecycle state of a task. Transitions are unrestricted.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// BlockType is the kind of a workspace page block.
type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockText      BlockType = "text"
	BlockChecklist BlockType = "checklist"
	BlockDivider   BlockType = "divider"
	BlockCallout   BlockType = "callout"
)

// Valid reports whether b is a known block type.
func (b BlockType) Valid() bool {
	switch b {
	case BlockHeading, BlockText, BlockChecklist, BlockDivider, BlockCallout:
		return true
	}
	return false
}

// EventSource tells whether an event was entered by hand or pulled from
// an external calendar.
type EventSource string

const (
	SourceManual   EventSource = "manual"
	SourceExternal EventSource = "external"
)

// Sentiment is the three-level workload classification.
type Sentiment string

const (
	SentimentSteady     Sentiment = "steady"
	SentimentStretch    Sentiment = "stretch"
	SentimentOverloaded Sentiment = "overloaded"
)

// --- References ---

// ProjectRef is a nullable project id. The zero value means "no project"
// and is encoded as JSON null.
type ProjectRef string

// NoProject is the zero ProjectRef.
const NoProject ProjectRef = ""

// IsZero reports whether the reference points at no project.
func (r ProjectRef) IsZero() bool { return r == NoProject }

// String returns the raw id.
func (r ProjectRef) String() string { return string(r) }

// MarshalJSON encodes the empty reference as null.
func (r ProjectRef) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

// UnmarshalJSON accepts a string or null.
func (r *ProjectRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = NoProject
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("project reference: %w", err)
	}
	*r = ProjectRef(s)
	return nil
}

// --- Entities ---

// Task is one actionable item.
type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	ProjectID       ProjectRef `json:"projectId"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	EstimateMinutes *int       `json:"estimateMinutes,omitempty"`
	Priority        Priority   `json:"priority"`
	Status          TaskStatus `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Goal tracks progress in units toward a target.
// CompletedUnits always stays within [0, TargetUnits].
type Goal struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	ProjectID      ProjectRef `json:"projectId"`
	TargetUnits    int        `json:"targetUnits"`
	CompletedUnits int        `json:"completedUnits"`
	UnitLabel      string     `json:"unitLabel"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Project groups tasks, goals and events.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// CalendarEvent is a time range on the user's agenda. End may precede
// Start; the store does not validate ordering.
type CalendarEvent struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Start     time.Time         `json:"start"`
	End       time.Time         `json:"end"`
	ProjectID ProjectRef        `json:"projectId"`
	Source    EventSource       `json:"source"`
	Metadata  map[string]string `json:"metadata"`
}

// Block is one content unit of a workspace page.
type Block struct {
	ID      string    `json:"id"`
	Type    BlockType `json:"type"`
	Content string    `json:"content"`
}

// WorkspacePage is a free-form note made of ordered blocks.
type WorkspacePage struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Icon      string    `json:"icon"`
	Blocks    []Block   `json:"blocks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Preferences is opaque display configuration. The core never interprets it.
type Preferences struct {
	Theme      string `json:"theme"`
	CardTone   string `json:"cardTone"`
	CardShadow string `json:"cardShadow"`
	FieldShape string `json:"fieldShape"`
	Density    string `json:"density"`
	Accent     string `json:"accent"`
}

// DefaultPreferences returns the initial display configuration.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:      "dark",
		CardTone:   "glass",
		CardShadow: "soft",
		FieldShape: "filled",
		Density:    "comfortable",
		Accent:     "emerald",
	}
}

// CalendarRecord is the persisted form of the calendar connection.
// Status is one of "connecting", "connected" or "error".
type CalendarRecord struct {
	Status       string     `json:"status"`
	AccountEmail string     `json:"accountEmail"`
	LastSynced   *time.Time `json:"lastSynced,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// AiSnapshot is the derived workload view. It is a cache only: it can
// always be rebuilt from the rest of the state.
type AiSnapshot struct {
	FocusProjects            []string  `json:"focusProjects"`
	RecommendedTasks         []string  `json:"recommendedTasks"`
	SuggestedHabits          []string  `json:"suggestedHabits"`
	BandwidthEstimateMinutes int       `json:"bandwidthEstimateMinutes"`
	Sentiment                Sentiment `json:"sentiment"`
	Summary                  string    `json:"summary"`
	FocusChips               []string  `json:"focusChips"`
	PendingCount             int       `json:"pendingCount"`
	TotalEstimateMinutes     int       `json:"totalEstimateMinutes"`
	DailyGoal                string    `json:"dailyGoal,omitempty"`
	NextBlock                string    `json:"nextBlock,omitempty"`
}

// State is the whole dashboard aggregate.
type State struct {
	Tasks           []Task          `json:"tasks"`
	Goals           []Goal          `json:"goals"`
	Projects        []Project       `json:"projects"`
	Pages           []WorkspacePage `json:"pages"`
	Events          []CalendarEvent `json:"events"`
	Snapshot        *AiSnapshot     `json:"snapshot,omitempty"`
	Preferences     Preferences     `json:"preferences"`
	ActiveProjectID ProjectRef      `json:"activeProjectId"`
	Calendar        *CalendarRecord `json:"connectedCalendar,omitempty"`
}

// InitialState returns an empty dashboard with default preferences.
func InitialState() State {
	return State{
		Tasks:       []Task{},
		Goals:       []Goal{},
		Projects:    []Project{},
		Pages:       []WorkspacePage{},
		Events:      []CalendarEvent{},
		Preferences: DefaultPreferences(),
	}
}

// FindProject returns the project with the given id.
func (s State) FindProject(id string) (Project, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// FindTask returns the task with the given id.
func (s State) FindTask(id string) (Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
