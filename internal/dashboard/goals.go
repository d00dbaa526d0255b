package dashboard

import (
	"strings"

	"github.com/HendryAvila/neuraldesk/internal/domain"
)

// DefaultUnitLabel is used when a goal is created without a unit label.
const DefaultUnitLabel = "units"

// AddGoal creates a goal with zero completed units.
func (s *Store) AddGoal(in domain.GoalInput) (domain.Goal, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return domain.Goal{}, err
	}
	if in.TargetUnits < 1 {
		return domain.Goal{}, domain.Invalid("targetUnits", "must be at least 1, got %d", in.TargetUnits)
	}
	label := strings.TrimSpace(in.UnitLabel)
	if label == "" {
		label = DefaultUnitLabel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	goal := domain.Goal{
		ID:          s.newID(),
		Title:       title,
		ProjectID:   in.ProjectID,
		TargetUnits: in.TargetUnits,
		UnitLabel:   label,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}.Clone()
	s.state.Goals = append(s.state.Goals, goal)
	s.commit("add_goal")
	return goal.Clone(), nil
}

// UpdateGoal merges patch into the goal, then clamps completedUnits into
// [0, targetUnits].
func (s *Store) UpdateGoal(id string, patch domain.GoalPatch) (domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.goalIndex(id)
	if i < 0 {
		return domain.Goal{}, domain.ErrNotFound
	}
	goal := s.state.Goals[i].Clone()

	if patch.Title != nil {
		title, err := validateTitle(*patch.Title)
		if err != nil {
			return domain.Goal{}, err
		}
		goal.Title = title
	}
	if patch.ProjectID != nil {
		goal.ProjectID = *patch.ProjectID
	}
	if patch.TargetUnits != nil {
		if *patch.TargetUnits < 1 {
			return domain.Goal{}, domain.Invalid("targetUnits", "must be at least 1, got %d", *patch.TargetUnits)
		}
		goal.TargetUnits = *patch.TargetUnits
	}
	if patch.CompletedUnits != nil {
		goal.CompletedUnits = *patch.CompletedUnits
	}
	if patch.UnitLabel != nil {
		if label := strings.TrimSpace(*patch.UnitLabel); label != "" {
			goal.UnitLabel = label
		}
	}
	if patch.ClearDueDate {
		goal.DueDate = nil
	} else if patch.DueDate != nil {
		due := *patch.DueDate
		goal.DueDate = &due
	}
	goal.CompletedUnits = clamp(goal.CompletedUnits, 0, goal.TargetUnits)
	goal.UpdatedAt = s.now()

	s.state.Goals[i] = goal
	s.commit("update_goal")
	return goal.Clone(), nil
}

// AdjustGoalProgress adds delta to completedUnits, clamped.
func (s *Store) AdjustGoalProgress(id string, delta int) (domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.goalIndex(id)
	if i < 0 {
		return domain.Goal{}, domain.ErrNotFound
	}
	goal := &s.state.Goals[i]
	goal.CompletedUnits = clamp(goal.CompletedUnits+delta, 0, goal.TargetUnits)
	goal.UpdatedAt = s.now()
	s.commit("adjust_goal")
	return goal.Clone(), nil
}

// RemoveGoal deletes a goal.
func (s *Store) RemoveGoal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.goalIndex(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	s.state.Goals = append(s.state.Goals[:i], s.state.Goals[i+1:]...)
	s.commit("remove_goal")
	return nil
}

func (s *Store) goalIndex(id string) int {
	for i := range s.state.Goals {
		if s.state.Goals[i].ID == id {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
