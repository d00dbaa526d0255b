package domain

import "time"

// TaskInput holds the caller-supplied fields of a new task.
type TaskInput struct {
	Title           string
	Description     string
	ProjectID       ProjectRef
	DueDate         *time.Time
	EstimateMinutes *int
	Priority        Priority
}

// TaskPatch holds partial update fields for a task. Nil means unchanged.
type TaskPatch struct {
	Title           *string
	Description     *string
	ProjectID       *ProjectRef
	DueDate         *time.Time
	ClearDueDate    bool
	EstimateMinutes *int
	Priority        *Priority
	Status          *TaskStatus
}

// GoalInput holds the caller-supplied fields of a new goal.
type GoalInput struct {
	Title       string
	ProjectID   ProjectRef
	TargetUnits int
	UnitLabel   string
	DueDate     *time.Time
}

// GoalPatch holds partial update fields for a goal. Nil means unchanged.
type GoalPatch struct {
	Title          *string
	ProjectID      *ProjectRef
	TargetUnits    *int
	CompletedUnits *int
	UnitLabel      *string
	DueDate        *time.Time
	ClearDueDate   bool
}

// CreateProjectRequest replaces the modal name prompt: the host UI
// collects the name with whatever input surface it owns.
type CreateProjectRequest struct {
	Name  string
	Color string
}

// RenameProjectRequest renames an existing project.
type RenameProjectRequest struct {
	ID   string
	Name string
}

// EventInput holds the fields of a new calendar event.
type EventInput struct {
	Title     string
	Start     time.Time
	End       time.Time
	ProjectID ProjectRef
	Source    EventSource
	Metadata  map[string]string
}

// PreferencesPatch shallow-merges into Preferences. Nil means unchanged.
type PreferencesPatch struct {
	Theme      *string
	CardTone   *string
	CardShadow *string
	FieldShape *string
	Density    *string
	Accent     *string
}

// Apply returns p with the non-nil fields of patch applied.
func (patch PreferencesPatch) Apply(p Preferences) Preferences {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Theme, patch.Theme)
	set(&p.CardTone, patch.CardTone)
	set(&p.CardShadow, patch.CardShadow)
	set(&p.FieldShape, patch.FieldShape)
	set(&p.Density, patch.Density)
	set(&p.Accent, patch.Accent)
	return p
}
