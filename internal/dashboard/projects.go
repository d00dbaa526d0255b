package dashboard

import (
	"strings"

	"github.com/HendryAvila/neuraldesk/internal/domain"
)

// AddProject creates a project and makes it the active one.
func (s *Store) AddProject(req domain.CreateProjectRequest) (domain.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Project{}, domain.Invalid("name", "project name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = s.newColor()
	}
	project := domain.Project{
		ID:        s.newID(),
		Name:      name,
		Color:     color,
		CreatedAt: s.now(),
	}
	s.state.Projects = append(s.state.Projects, project)
	s.state.ActiveProjectID = domain.ProjectRef(project.ID)
	s.commit("add_project")
	return project, nil
}

// RenameProject changes the name of an existing project.
func (s *Store) RenameProject(req domain.RenameProjectRequest) (domain.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Project{}, domain.Invalid("name", "project name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Projects {
		if s.state.Projects[i].ID == req.ID {
			s.state.Projects[i].Name = name
			s.commit("rename_project")
			return s.state.Projects[i], nil
		}
	}
	return domain.Project{}, domain.ErrNotFound
}

// RemoveProject deletes a project. Tasks, goals and events that referenced
// it are kept and detached; the active selection is cleared if it pointed
// at the project.
func (s *Store) RemoveProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.state.Projects {
		if s.state.Projects[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}

	ref := domain.ProjectRef(id)
	s.state.Projects = append(s.state.Projects[:idx], s.state.Projects[idx+1:]...)
	for i := range s.state.Tasks {
		if s.state.Tasks[i].ProjectID == ref {
			s.state.Tasks[i].ProjectID = domain.NoProject
		}
	}
	for i := range s.state.Goals {
		if s.state.Goals[i].ProjectID == ref {
			s.state.Goals[i].ProjectID = domain.NoProject
		}
	}
	for i := range s.state.Events {
		if s.state.Events[i].ProjectID == ref {
			s.state.Events[i].ProjectID = domain.NoProject
		}
	}
	if s.state.ActiveProjectID == ref {
		s.state.ActiveProjectID = domain.NoProject
	}
	s.commit("remove_project")
	return nil
}

// SetActiveProject selects a project. The empty id selects no project.
func (s *Store) SetActiveProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if _, ok := s.state.FindProject(id); !ok {
			return domain.ErrNotFound
		}
	}
	s.state.ActiveProjectID = domain.ProjectRef(id)
	s.commit("set_active_project")
	return nil
}
