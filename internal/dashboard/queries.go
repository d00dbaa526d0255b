package dashboard

import (
	"sort"
	"time"

	"github.com/HendryAvila/neuraldesk/internal/domain"
)

// DefaultUpcomingLimit is how many events UpcomingEvents returns when
// limit <= 0.
const DefaultUpcomingLimit = 6

// Filter narrows a query to one project. The zero Filter matches all.
type Filter struct {
	Scoped  bool
	Project domain.ProjectRef
}

// AllProjects matches items of every project, including unassigned ones.
func AllProjects() Filter { return Filter{} }

// InProject matches only items assigned to ref. NoProject matches the
// unassigned items.
func InProject(ref domain.ProjectRef) Filter { return Filter{Scoped: true, Project: ref} }

func (f Filter) match(ref domain.ProjectRef) bool {
	return !f.Scoped || f.Project == ref
}

// Tasks lists tasks with open ones first, then by due date (undated last).
func (s *Store) Tasks(f Filter) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Task
	for _, t := range s.state.Tasks {
		if f.match(t.ProjectID) {
			out = append(out, t.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Status == domain.StatusDone, out[j].Status == domain.StatusDone
		if di != dj {
			return !di
		}
		return dueBefore(out[i].DueDate, out[j].DueDate)
	})
	return out
}

// Goals lists goals by due date (undated last).
func (s *Store) Goals(f Filter) []domain.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Goal
	for _, g := range s.state.Goals {
		if f.match(g.ProjectID) {
			out = append(out, g.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return dueBefore(out[i].DueDate, out[j].DueDate)
	})
	return out
}

// Pages lists pages, most recently updated first.
func (s *Store) Pages() []domain.WorkspacePage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.WorkspacePage, 0, len(s.state.Pages))
	for _, p := range s.state.Pages {
		out = append(out, p.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// UpcomingEvents returns events that have not ended yet, soonest first.
func (s *Store) UpcomingEvents(now time.Time, limit int) []domain.CalendarEvent {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.CalendarEvent
	for _, e := range s.state.Events {
		if !e.End.Before(now) {
			out = append(out, e.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// dueBefore orders due dates ascending with nil last.
func dueBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}
