package domain

import "time"

// Clone returns a deep copy of the state. Callers outside the dashboard
// store only ever see clones, so they cannot mutate the aggregate.
func (s State) Clone() State {
	out := s
	out.Tasks = cloneSlice(s.Tasks, Task.Clone)
	out.Goals = cloneSlice(s.Goals, Goal.Clone)
	out.Projects = cloneSlice(s.Projects, func(p Project) Project { return p })
	out.Pages = cloneSlice(s.Pages, WorkspacePage.Clone)
	out.Events = cloneSlice(s.Events, CalendarEvent.Clone)

	if s.Snapshot != nil {
		snap := s.Snapshot.Clone()
		out.Snapshot = &snap
	}
	if s.Calendar != nil {
		rec := s.Calendar.Clone()
		out.Calendar = &rec
	}
	return out
}

// Clone returns a deep copy of the snapshot.
func (a AiSnapshot) Clone() AiSnapshot {
	out := a
	out.FocusProjects = append([]string(nil), a.FocusProjects...)
	out.RecommendedTasks = append([]string(nil), a.RecommendedTasks...)
	out.SuggestedHabits = append([]string(nil), a.SuggestedHabits...)
	out.FocusChips = append([]string(nil), a.FocusChips...)
	return out
}

// Clone returns a deep copy of the record.
func (r CalendarRecord) Clone() CalendarRecord {
	r.LastSynced = cloneTime(r.LastSynced)
	return r
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	t.DueDate = cloneTime(t.DueDate)
	if t.EstimateMinutes != nil {
		v := *t.EstimateMinutes
		t.EstimateMinutes = &v
	}
	return t
}

// Clone returns a deep copy of the goal.
func (g Goal) Clone() Goal {
	g.DueDate = cloneTime(g.DueDate)
	return g
}

// Clone returns a deep copy of the page.
func (p WorkspacePage) Clone() WorkspacePage {
	p.Blocks = append([]Block(nil), p.Blocks...)
	if p.Blocks == nil {
		p.Blocks = []Block{}
	}
	return p
}

// Clone returns a deep copy of the event.
func (e CalendarEvent) Clone() CalendarEvent {
	if e.Metadata != nil {
		md := make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			md[k] = v
		}
		e.Metadata = md
	}
	return e
}

func cloneSlice[T any](in []T, fn func(T) T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
