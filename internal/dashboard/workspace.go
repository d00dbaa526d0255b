package dashboard

import (
	"strings"
	"time"

	"github.com/HendryAvila/neuraldesk/internal/domain"
)

// DefaultPageIcon is the icon given to pages created with NewPage.
const DefaultPageIcon = "📘"

// UpsertPage inserts the page or replaces the one with the same id. The
// original createdAt survives a replace; updatedAt is always refreshed.
func (s *Store) UpsertPage(page domain.WorkspacePage) (domain.WorkspacePage, error) {
	for _, b := range page.Blocks {
		if !b.Type.Valid() {
			return domain.WorkspacePage{}, domain.Invalid("blocks", "unknown block type %q", b.Type)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	page = page.Clone()
	if page.ID == "" {
		page.ID = s.newID()
	}
	for i := range page.Blocks {
		if page.Blocks[i].ID == "" {
			page.Blocks[i].ID = s.newID()
		}
	}
	now := s.now()
	page.UpdatedAt = now

	for i := range s.state.Pages {
		if s.state.Pages[i].ID == page.ID {
			page.CreatedAt = s.state.Pages[i].CreatedAt
			s.state.Pages[i] = page
			s.commit("upsert_page")
			return page.Clone(), nil
		}
	}
	page.CreatedAt = now
	s.state.Pages = append(s.state.Pages, page)
	s.commit("upsert_page")
	return page.Clone(), nil
}

// NewPage creates a page with a heading and a text block.
func (s *Store) NewPage(title string) (domain.WorkspacePage, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.WorkspacePage{}, domain.Invalid("title", "must not be empty")
	}
	return s.UpsertPage(domain.WorkspacePage{
		Title: title,
		Icon:  DefaultPageIcon,
		Blocks: []domain.Block{
			{Type: domain.BlockHeading, Content: "New heading"},
			{Type: domain.BlockText, Content: "Write something"},
		},
	})
}

// DeletePage removes a page.
func (s *Store) DeletePage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Pages {
		if s.state.Pages[i].ID == id {
			s.state.Pages = append(s.state.Pages[:i], s.state.Pages[i+1:]...)
			s.commit("delete_page")
			return nil
		}
	}
	return domain.ErrNotFound
}

// AddEvent stores a calendar event. The end is not checked against the
// start: an end before the start is accepted as given.
func (s *Store) AddEvent(in domain.EventInput) domain.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	source := in.Source
	if source == "" {
		source = domain.SourceManual
	}
	md := make(map[string]string, len(in.Metadata)+1)
	for k, v := range in.Metadata {
		md[k] = v
	}
	md["createdAt"] = s.now().UTC().Format(time.RFC3339)

	event := domain.CalendarEvent{
		ID:        s.newID(),
		Title:     strings.TrimSpace(in.Title),
		Start:     in.Start,
		End:       in.End,
		ProjectID: in.ProjectID,
		Source:    source,
		Metadata:  md,
	}
	s.state.Events = append(s.state.Events, event)
	s.commit("add_event")
	return event.Clone()
}

// UpdatePreferences shallow-merges patch into the preferences.
func (s *Store) UpdatePreferences(patch domain.PreferencesPatch) domain.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Preferences = patch.Apply(s.state.Preferences)
	s.commit("update_preferences")
	return s.state.Preferences
}

// RecordCalendarState stores the calendar connection record. Nil clears it.
func (s *Store) RecordCalendarState(rec *domain.CalendarRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec == nil {
		s.state.Calendar = nil
	} else {
		c := rec.Clone()
		s.state.Calendar = &c
	}
	s.commit("record_calendar")
}
