package dashboard

import (
	"strings"
	"unicode/utf8"

	"github.com/HendryAvila/neuraldesk/internal/domain"
)

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", domain.Invalid("title", "must not be empty")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", domain.Invalid("title", "must be at most %d characters", MaxTitleLength)
	}
	return title, nil
}

func validateEstimate(minutes *int) error {
	if minutes == nil {
		return nil
	}
	if *minutes < 0 {
		return domain.Invalid("estimateMinutes", "must not be negative")
	}
	if *minutes > MaxEstimateMinutes {
		return domain.Invalid("estimateMinutes", "must be at most %d", MaxEstimateMinutes)
	}
	return nil
}

// AddTask creates a pending task.
func (s *Store) AddTask(in domain.TaskInput) (domain.Task, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return domain.Task{}, err
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return domain.Task{}, domain.Invalid("priority", "unknown priority %q", priority)
	}
	if err := validateEstimate(in.EstimateMinutes); err != nil {
		return domain.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	task := domain.Task{
		ID:              s.newID(),
		Title:           title,
		Description:     strings.TrimSpace(in.Description),
		ProjectID:       in.ProjectID,
		DueDate:         in.DueDate,
		EstimateMinutes: in.EstimateMinutes,
		Priority:        priority,
		Status:          domain.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	task = task.Clone()
	s.state.Tasks = append(s.state.Tasks, task)
	s.commit("add_task")
	return task.Clone(), nil
}

// UpdateTask merges patch into the task and refreshes its updatedAt.
func (s *Store) UpdateTask(id string, patch domain.TaskPatch) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return domain.Task{}, domain.ErrNotFound
	}
	task := s.state.Tasks[i].Clone()

	if patch.Title != nil {
		title, err := validateTitle(*patch.Title)
		if err != nil {
			return domain.Task{}, err
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.ProjectID != nil {
		task.ProjectID = *patch.ProjectID
	}
	if patch.ClearDueDate {
		task.DueDate = nil
	} else if patch.DueDate != nil {
		due := *patch.DueDate
		task.DueDate = &due
	}
	if patch.EstimateMinutes != nil {
		if err := validateEstimate(patch.EstimateMinutes); err != nil {
			return domain.Task{}, err
		}
		est := *patch.EstimateMinutes
		task.EstimateMinutes = &est
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return domain.Task{}, domain.Invalid("priority", "unknown priority %q", *patch.Priority)
		}
		task.Priority = *patch.Priority
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return domain.Task{}, domain.Invalid("status", "unknown status %q", *patch.Status)
		}
		task.Status = *patch.Status
	}
	task.UpdatedAt = s.now()

	s.state.Tasks[i] = task
	s.commit("update_task")
	return task.Clone(), nil
}

// RemoveTask deletes a task.
func (s *Store) RemoveTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	s.state.Tasks = append(s.state.Tasks[:i], s.state.Tasks[i+1:]...)
	s.commit("remove_task")
	return nil
}

// ToggleTaskStatus sets the explicit status when one is given. Otherwise
// it flips done to pending and anything else to done.
func (s *Store) ToggleTaskStatus(id string, explicit *domain.TaskStatus) (domain.Task, error) {
	if explicit != nil && !explicit.Valid() {
		return domain.Task{}, domain.Invalid("status", "unknown status %q", *explicit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return domain.Task{}, domain.ErrNotFound
	}
	task := &s.state.Tasks[i]
	switch {
	case explicit != nil:
		task.Status = *explicit
	case task.Status == domain.StatusDone:
		task.Status = domain.StatusPending
	default:
		task.Status = domain.StatusDone
	}
	task.UpdatedAt = s.now()
	s.commit("toggle_task")
	return task.Clone(), nil
}

func (s *Store) taskIndex(id string) int {
	for i := range s.state.Tasks {
		if s.state.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}
