package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/neuraldesk/internal/domain"
	"github.com/HendryAvila/neuraldesk/internal/snapshot"
)

// recorder captures every persisted state.
type recorder struct {
	mu     sync.Mutex
	states []domain.State
}

func (r *recorder) Persist(s domain.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func (r *recorder) last() domain.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[len(r.states)-1]
}

type fixture struct {
	store *Store
	rec   *recorder
	clock *time.Time
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	now := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	seq := 0
	rec := &recorder{}
	s := New(domain.InitialState(),
		WithPersister(rec),
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { seq++; return fmt.Sprintf("id-%d", seq) }),
		WithColorGenerator(func() string { return "#123456" }),
	)
	return fixture{store: s, rec: rec, clock: &now}
}

func ptr[T any](v T) *T { return &v }

func TestAddTask(t *testing.T) {
	f := newFixture(t)

	task, err := f.store.AddTask(domain.TaskInput{Title: "  Draft outline  "})
	require.NoError(t, err)

	assert.Equal(t, "id-1", task.ID)
	assert.Equal(t, "Draft outline", task.Title)
	assert.Equal(t, domain.StatusPending, task.Status)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Equal(t, *f.clock, task.CreatedAt)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
	assert.Equal(t, 1, f.rec.count())
	assert.Len(t, f.rec.last().Tasks, 1)
}

func TestAddTask_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input domain.TaskInput
		field string
	}{
		{"empty title", domain.TaskInput{Title: "   "}, "title"},
		{"title too long", domain.TaskInput{Title: strings.Repeat("x", MaxTitleLength+1)}, "title"},
		{"bad priority", domain.TaskInput{Title: "ok", Priority: "urgent"}, "priority"},
		{"negative estimate", domain.TaskInput{Title: "ok", EstimateMinutes: ptr(-5)}, "estimateMinutes"},
		{"estimate over a week", domain.TaskInput{Title: "ok", EstimateMinutes: ptr(MaxEstimateMinutes + 1)}, "estimateMinutes"},
		{"huge estimate", domain.TaskInput{Title: "ok", EstimateMinutes: ptr(1 << 62)}, "estimateMinutes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.store.AddTask(tt.input)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Empty(t, f.store.State().Tasks)
			assert.Zero(t, f.rec.count(), "rejected input must not be persisted")
		})
	}
}

func TestAddTask_TitleAtLimit(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.AddTask(domain.TaskInput{Title: strings.Repeat("é", MaxTitleLength)})
	assert.NoError(t, err)
}

func TestUpdateTask(t *testing.T) {
	f := newFixture(t)
	task, err := f.store.AddTask(domain.TaskInput{Title: "A", DueDate: ptr(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))})
	require.NoError(t, err)

	*f.clock = f.clock.Add(time.Hour)
	updated, err := f.store.UpdateTask(task.ID, domain.TaskPatch{
		Title:        ptr("B"),
		Priority:     ptr(domain.PriorityHigh),
		ClearDueDate: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "B", updated.Title)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(task.UpdatedAt))
}

func TestUpdateTask_EmptyPatchStillRefreshesUpdatedAt(t *testing.T) {
	f := newFixture(t)
	task, _ := f.store.AddTask(domain.TaskInput{Title: "A"})

	*f.clock = f.clock.Add(time.Minute)
	updated, err := f.store.UpdateTask(task.ID, domain.TaskPatch{})
	require.NoError(t, err)
	assert.Equal(t, *f.clock, updated.UpdatedAt)
}

func TestUpdateTask_Errors(t *testing.T) {
	f := newFixture(t)
	task, _ := f.store.AddTask(domain.TaskInput{Title: "A"})
	writes := f.rec.count()

	_, err := f.store.UpdateTask("missing", domain.TaskPatch{Title: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.store.UpdateTask(task.ID, domain.TaskPatch{Title: ptr("  ")})
	assert.True(t, domain.IsValidation(err))

	assert.Equal(t, writes, f.rec.count())
	got, _ := f.store.State().FindTask(task.ID)
	assert.Equal(t, "A", got.Title)
}

func TestRemoveTask(t *testing.T) {
	f := newFixture(t)
	a, _ := f.store.AddTask(domain.TaskInput{Title: "A"})
	b, _ := f.store.AddTask(domain.TaskInput{Title: "B"})

	require.NoError(t, f.store.RemoveTask(a.ID))
	tasks := f.store.State().Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, b.ID, tasks[0].ID)

	assert.ErrorIs(t, f.store.RemoveTask(a.ID), domain.ErrNotFound)
}

func TestToggleTaskStatus(t *testing.T) {
	f := newFixture(t)
	task, _ := f.store.AddTask(domain.TaskInput{Title: "A"})

	got, err := f.store.ToggleTaskStatus(task.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, got.Status)

	got, _ = f.store.ToggleTaskStatus(task.ID, nil)
	assert.Equal(t, domain.StatusPending, got.Status)

	got, _ = f.store.ToggleTaskStatus(task.ID, ptr(domain.StatusInProgress))
	assert.Equal(t, domain.StatusInProgress, got.Status)

	// in-progress counts as not done for the flip.
	got, _ = f.store.ToggleTaskStatus(task.ID, nil)
	assert.Equal(t, domain.StatusDone, got.Status)

	_, err = f.store.ToggleTaskStatus(task.ID, ptr(domain.TaskStatus("blocked")))
	assert.True(t, domain.IsValidation(err))

	_, err = f.store.ToggleTaskStatus("missing", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGoals_ClampOnUpdate(t *testing.T) {
	f := newFixture(t)
	goal, err := f.store.AddGoal(domain.GoalInput{Title: "Read", TargetUnits: 5})
	require.NoError(t, err)
	assert.Equal(t, 0, goal.CompletedUnits)
	assert.Equal(t, DefaultUnitLabel, goal.UnitLabel)

	tests := []struct {
		name  string
		patch domain.GoalPatch
		want  int
	}{
		{"over target", domain.GoalPatch{CompletedUnits: ptr(9)}, 5},
		{"negative", domain.GoalPatch{CompletedUnits: ptr(-3)}, 0},
		{"within", domain.GoalPatch{CompletedUnits: ptr(3)}, 3},
		{"target shrinks below completed", domain.GoalPatch{TargetUnits: ptr(2)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.store.UpdateGoal(goal.ID, tt.patch)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.CompletedUnits)
			assert.GreaterOrEqual(t, got.CompletedUnits, 0)
			assert.LessOrEqual(t, got.CompletedUnits, got.TargetUnits)
		})
	}
}

func TestGoals_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.AddGoal(domain.GoalInput{Title: "x", TargetUnits: 0})
	assert.True(t, domain.IsValidation(err))
	_, err = f.store.AddGoal(domain.GoalInput{Title: " ", TargetUnits: 1})
	assert.True(t, domain.IsValidation(err))

	goal, _ := f.store.AddGoal(domain.GoalInput{Title: "x", TargetUnits: 2})
	_, err = f.store.UpdateGoal(goal.ID, domain.GoalPatch{TargetUnits: ptr(0)})
	assert.True(t, domain.IsValidation(err))

	_, err = f.store.UpdateGoal("missing", domain.GoalPatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustGoalProgress(t *testing.T) {
	f := newFixture(t)
	goal, _ := f.store.AddGoal(domain.GoalInput{Title: "x", TargetUnits: 2})

	got, _ := f.store.AdjustGoalProgress(goal.ID, -1)
	assert.Equal(t, 0, got.CompletedUnits)
	got, _ = f.store.AdjustGoalProgress(goal.ID, 1)
	got, _ = f.store.AdjustGoalProgress(goal.ID, 1)
	got, _ = f.store.AdjustGoalProgress(goal.ID, 1)
	assert.Equal(t, 2, got.CompletedUnits)

	require.NoError(t, f.store.RemoveGoal(goal.ID))
	_, err := f.store.AdjustGoalProgress(goal.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddProject(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.AddProject(domain.CreateProjectRequest{Name: "   "})
	assert.True(t, domain.IsValidation(err))

	p, err := f.store.AddProject(domain.CreateProjectRequest{Name: " Launch "})
	require.NoError(t, err)
	assert.Equal(t, "Launch", p.Name)
	assert.Equal(t, "#123456", p.Color)
	assert.Equal(t, domain.ProjectRef(p.ID), f.store.ActiveProject())

	p2, _ := f.store.AddProject(domain.CreateProjectRequest{Name: "Other", Color: "#ff0000"})
	assert.Equal(t, "#ff0000", p2.Color)
	assert.Equal(t, domain.ProjectRef(p2.ID), f.store.ActiveProject())
}

func TestRenameProject(t *testing.T) {
	f := newFixture(t)
	p, _ := f.store.AddProject(domain.CreateProjectRequest{Name: "Old"})

	got, err := f.store.RenameProject(domain.RenameProjectRequest{ID: p.ID, Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)

	_, err = f.store.RenameProject(domain.RenameProjectRequest{ID: p.ID, Name: ""})
	assert.True(t, domain.IsValidation(err))
	_, err = f.store.RenameProject(domain.RenameProjectRequest{ID: "missing", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveProject_DereferencesEverything(t *testing.T) {
	f := newFixture(t)
	p, _ := f.store.AddProject(domain.CreateProjectRequest{Name: "Launch"})
	keep, _ := f.store.AddProject(domain.CreateProjectRequest{Name: "Keep"})
	require.NoError(t, f.store.SetActiveProject(p.ID))

	ref := domain.ProjectRef(p.ID)
	_, _ = f.store.AddTask(domain.TaskInput{Title: "t1", ProjectID: ref})
	_, _ = f.store.AddTask(domain.TaskInput{Title: "t2", ProjectID: domain.ProjectRef(keep.ID)})
	_, _ = f.store.AddGoal(domain.GoalInput{Title: "g", ProjectID: ref, TargetUnits: 1})
	f.store.AddEvent(domain.EventInput{Title: "e", ProjectID: ref})

	require.NoError(t, f.store.RemoveProject(p.ID))

	st := f.store.State()
	for _, task := range st.Tasks {
		assert.NotEqual(t, ref, task.ProjectID)
	}
	for _, g := range st.Goals {
		assert.NotEqual(t, ref, g.ProjectID)
	}
	for _, e := range st.Events {
		assert.NotEqual(t, ref, e.ProjectID)
	}
	assert.Len(t, st.Tasks, 2, "tasks are detached, never deleted")
	assert.Len(t, st.Goals, 1)
	assert.Len(t, st.Events, 1)
	assert.True(t, st.ActiveProjectID.IsZero())

	assert.Equal(t, domain.ProjectRef(keep.ID), st.Tasks[1].ProjectID)

	assert.ErrorIs(t, f.store.RemoveProject(p.ID), domain.ErrNotFound)
}

func TestRemoveProject_KeepsOtherActiveSelection(t *testing.T) {
	f := newFixture(t)
	a, _ := f.store.AddProject(domain.CreateProjectRequest{Name: "A"})
	b, _ := f.store.AddProject(domain.CreateProjectRequest{Name: "B"})

	require.NoError(t, f.store.RemoveProject(a.ID))
	assert.Equal(t, domain.ProjectRef(b.ID), f.store.ActiveProject())
}

func TestSetActiveProject(t *testing.T) {
	f := newFixture(t)
	p, _ := f.store.AddProject(domain.CreateProjectRequest{Name: "A"})

	require.NoError(t, f.store.SetActiveProject(""))
	assert.True(t, f.store.ActiveProject().IsZero())

	require.NoError(t, f.store.SetActiveProject(p.ID))
	assert.Equal(t, domain.ProjectRef(p.ID), f.store.ActiveProject())

	assert.ErrorIs(t, f.store.SetActiveProject("nope"), domain.ErrNotFound)
}

func TestUpsertPage_PreservesCreatedAt(t *testing.T) {
	f := newFixture(t)
	page, err := f.store.NewPage("Notes")
	require.NoError(t, err)
	require.Len(t, page.Blocks, 2)
	assert.Equal(t, domain.BlockHeading, page.Blocks[0].Type)
	assert.Equal(t, domain.BlockText, page.Blocks[1].Type)
	assert.NotEmpty(t, page.Blocks[0].ID)
	assert.Equal(t, DefaultPageIcon, page.Icon)

	created := page.CreatedAt
	*f.clock = f.clock.Add(time.Hour)
	page.Title = "Renamed"
	page.CreatedAt = time.Time{}
	updated, err := f.store.UpsertPage(page)
	require.NoError(t, err)

	assert.Equal(t, created, updated.CreatedAt)
	assert.Equal(t, *f.clock, updated.UpdatedAt)
	assert.Len(t, f.store.Pages(), 1)

	_, err = f.store.UpsertPage(domain.WorkspacePage{Blocks: []domain.Block{{Type: "table"}}})
	assert.True(t, domain.IsValidation(err))

	_, err = f.store.NewPage(" ")
	assert.True(t, domain.IsValidation(err))

	require.NoError(t, f.store.DeletePage(page.ID))
	assert.ErrorIs(t, f.store.DeletePage(page.ID), domain.ErrNotFound)
}

func TestAddEvent_AcceptsEndBeforeStart(t *testing.T) {
	f := newFixture(t)
	start := f.clock.Add(2 * time.Hour)
	ev := f.store.AddEvent(domain.EventInput{
		Title:    "Backwards",
		Start:    start,
		End:      start.Add(-time.Hour),
		Metadata: map[string]string{"room": "4"},
	})

	assert.Equal(t, domain.SourceManual, ev.Source)
	assert.Equal(t, "4", ev.Metadata["room"])
	assert.Equal(t, "2026-05-04T08:00:00Z", ev.Metadata["createdAt"])
	assert.True(t, ev.End.Before(ev.Start))
	assert.Len(t, f.store.State().Events, 1)
}

func TestUpcomingEvents(t *testing.T) {
	f := newFixture(t)
	now := *f.clock
	for i := 0; i < 8; i++ {
		start := now.Add(time.Duration(8-i) * time.Hour)
		f.store.AddEvent(domain.EventInput{Title: fmt.Sprintf("e%d", i), Start: start, End: start.Add(time.Hour)})
	}
	f.store.AddEvent(domain.EventInput{Title: "past", Start: now.Add(-3 * time.Hour), End: now.Add(-2 * time.Hour)})

	got := f.store.UpcomingEvents(now, 0)
	require.Len(t, got, DefaultUpcomingLimit)
	assert.Equal(t, "e7", got[0].Title)
	for i := 1; i < len(got); i++ {
		assert.True(t, !got[i].Start.Before(got[i-1].Start))
	}
}

func TestTasksQuery_Ordering(t *testing.T) {
	f := newFixture(t)
	d := func(day int) *time.Time { v := time.Date(2026, 5, day, 0, 0, 0, 0, time.UTC); return &v }

	done, _ := f.store.AddTask(domain.TaskInput{Title: "done", DueDate: d(1)})
	_, _ = f.store.ToggleTaskStatus(done.ID, nil)
	_, _ = f.store.AddTask(domain.TaskInput{Title: "undated"})
	_, _ = f.store.AddTask(domain.TaskInput{Title: "late", DueDate: d(20)})
	_, _ = f.store.AddTask(domain.TaskInput{Title: "soon", DueDate: d(5), ProjectID: "p"})

	var titles []string
	for _, task := range f.store.Tasks(AllProjects()) {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"soon", "late", "undated", "done"}, titles)

	scoped := f.store.Tasks(InProject("p"))
	require.Len(t, scoped, 1)
	assert.Equal(t, "soon", scoped[0].Title)

	assert.Len(t, f.store.Tasks(InProject(domain.NoProject)), 3)
}

func TestPreferencesAndCalendar(t *testing.T) {
	f := newFixture(t)
	prefs := f.store.UpdatePreferences(domain.PreferencesPatch{Accent: ptr("violet")})
	assert.Equal(t, "violet", prefs.Accent)
	assert.Equal(t, "dark", prefs.Theme)

	synced := *f.clock
	rec := &domain.CalendarRecord{Status: "connected", AccountEmail: "a@b.c", LastSynced: &synced}
	f.store.RecordCalendarState(rec)
	rec.AccountEmail = "mutated"
	assert.Equal(t, "a@b.c", f.store.State().Calendar.AccountEmail)

	f.store.RecordCalendarState(nil)
	assert.Nil(t, f.store.State().Calendar)
}

func TestSnapshot_ExampleScenario(t *testing.T) {
	f := newFixture(t)
	task, _ := f.store.AddTask(domain.TaskInput{Title: "Draft outline"})

	snap := f.store.RefreshSnapshot()
	assert.Equal(t, domain.SentimentSteady, snap.Sentiment)
	assert.Equal(t, 1, snap.PendingCount)
	assert.Equal(t, []string{task.ID}, snap.RecommendedTasks)
	require.NotNil(t, f.rec.last().Snapshot, "refresh caches the snapshot")

	for i := 0; i < 4; i++ {
		_, err := f.store.AddTask(domain.TaskInput{Title: fmt.Sprintf("h%d", i), Priority: domain.PriorityHigh, EstimateMinutes: ptr(60)})
		require.NoError(t, err)
	}
	assert.Equal(t, domain.SentimentSteady, f.store.Snapshot().Sentiment, "cached until refreshed")
	assert.Equal(t, domain.SentimentStretch, f.store.RefreshSnapshot().Sentiment)
}

func TestSnapshot_CachedNextBlockFollowsClock(t *testing.T) {
	morning := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	st := domain.InitialState()
	st.Tasks = []domain.Task{{ID: "t1", Title: "Draft outline", Priority: domain.PriorityMedium, Status: domain.StatusPending}}
	cached := snapshot.Build(st, morning)
	st.Snapshot = &cached

	afternoon := morning.Add(6 * time.Hour)
	s := New(st, WithClock(func() time.Time { return afternoon }))

	snap := s.Snapshot()
	assert.Equal(t, snapshot.NextBlock(afternoon), snap.NextBlock)
	assert.Equal(t, cached.Sentiment, snap.Sentiment, "the rest of the cache is served as is")
	assert.Equal(t, cached.NextBlock, s.State().Snapshot.NextBlock, "reading does not mutate the state")
}

func TestWriteThroughHappensAfterUpdate(t *testing.T) {
	var seen []int
	s := New(domain.InitialState(), WithPersister(PersisterFunc(func(st domain.State) {
		seen = append(seen, len(st.Tasks))
	})))

	_, _ = s.AddTask(domain.TaskInput{Title: "a"})
	_, _ = s.AddTask(domain.TaskInput{Title: "b"})
	assert.Equal(t, []int{1, 2}, seen)
}

func TestStateIsIsolated(t *testing.T) {
	f := newFixture(t)
	_, _ = f.store.AddTask(domain.TaskInput{Title: "a"})

	st := f.store.State()
	st.Tasks[0].Title = "mutated"
	st.Tasks = append(st.Tasks, domain.Task{ID: "ghost"})

	assert.Equal(t, "a", f.store.State().Tasks[0].Title)
	assert.Len(t, f.store.State().Tasks, 1)
}

func TestConcurrentMutations(t *testing.T) {
	s := New(domain.InitialState())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.AddTask(domain.TaskInput{Title: fmt.Sprintf("t%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.State().Tasks, 50)
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	_, _ = f.store.AddTask(domain.TaskInput{Title: "a"})
	_, _ = f.store.AddProject(domain.CreateProjectRequest{Name: "p"})

	f.store.Reset()
	st := f.store.State()
	assert.Empty(t, st.Tasks)
	assert.Empty(t, st.Projects)
	assert.True(t, st.ActiveProjectID.IsZero())
	assert.True(t, errors.Is(f.store.RemoveTask("id-1"), domain.ErrNotFound))
}
