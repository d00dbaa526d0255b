// Package persist maps the dashboard state onto key-value buckets.
//
// The root key holds the whole state except tasks and goals. Those are
// split into one bucket per project (plus "inbox" for unassigned items)
// so that a change in one project only rewrites that project's bucket.
// Load merges every bucket back without duplicating ids; Save garbage
// collects buckets that no longer have items.
//
// Storage failures never reach the caller: reads fall back to "no data"
// and writes are dropped with a warning.
package persist

import (
	"errors"

	"go.uber.org/zap"

	"github.com/HendryAvila/neuraldesk/internal/domain"
	"github.com/HendryAvila/neuraldesk/internal/kv"
)

// Storage keys.
const (
	RootKey          = "neuraldesk.dashboard.v1"
	TaskBucketPrefix = "neuraldesk.tasks."
	GoalBucketPrefix = "neuraldesk.goals."
	ActiveProjectKey = "neuraldesk.dashboard.active-project"

	// InboxBucket is the bucket suffix for items without a project.
	InboxBucket = "inbox"
)

// TaskBucketKey returns the bucket key for tasks of ref.
func TaskBucketKey(ref domain.ProjectRef) string { return TaskBucketPrefix + bucketSuffix(ref) }

// GoalBucketKey returns the bucket key for goals of ref.
func GoalBucketKey(ref domain.ProjectRef) string { return GoalBucketPrefix + bucketSuffix(ref) }

func bucketSuffix(ref domain.ProjectRef) string {
	if ref.IsZero() {
		return InboxBucket
	}
	return ref.String()
}

// rootRecord is the document stored under RootKey. The outer Tasks and
// Goals shadow the embedded ones: they are omitted on write and only
// filled when an older root still carries the collections inline.
type rootRecord struct {
	domain.State
	Tasks []domain.Task `json:"tasks,omitempty"`
	Goals []domain.Goal `json:"goals,omitempty"`
}

// Synchronizer reads and writes the dashboard state.
type Synchronizer struct {
	store kv.Store
	log   *zap.Logger
}

// New creates a Synchronizer over store.
func New(store kv.Store, log *zap.Logger) *Synchronizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synchronizer{store: store, log: log.Named("persist")}
}

// Load hydrates the state. A missing or corrupt root yields the initial
// state as baseline; buckets are still scanned so their items survive.
func (s *Synchronizer) Load() domain.State {
	rec := rootRecord{State: domain.InitialState()}
	if err := kv.GetJSON(s.store, RootKey, &rec); err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.log.Warn("root state unreadable, starting from initial state",
				zap.String("key", RootKey), zap.Error(err))
		}
		rec = rootRecord{State: domain.InitialState()}
	}

	state := normalize(rec.State)
	state.Tasks = mergeBuckets(s, TaskBucketPrefix, rec.Tasks, func(t domain.Task) string { return t.ID })
	state.Goals = mergeBuckets(s, GoalBucketPrefix, rec.Goals, func(g domain.Goal) string { return g.ID })

	if state.ActiveProjectID.IsZero() {
		var active string
		err := kv.GetJSON(s.store, ActiveProjectKey, &active)
		switch {
		case err == nil:
			state.ActiveProjectID = domain.ProjectRef(active)
		case !errors.Is(err, kv.ErrNotFound):
			s.log.Warn("active project unreadable", zap.String("key", ActiveProjectKey), zap.Error(err))
		}
	}

	s.log.Debug("state loaded",
		zap.Int("tasks", len(state.Tasks)),
		zap.Int("goals", len(state.Goals)),
		zap.Int("projects", len(state.Projects)),
	)
	return state
}

// mergeBuckets appends every bucketed item whose id is not already in
// base. Root entries always win; among buckets the last read wins.
func mergeBuckets[T any](s *Synchronizer, prefix string, base []T, id func(T) string) []T {
	out := append([]T{}, base...)
	fromRoot := make(map[string]bool, len(base))
	for _, item := range base {
		fromRoot[id(item)] = true
	}

	keys, err := s.store.Keys(prefix)
	if err != nil {
		s.log.Warn("listing buckets failed", zap.String("prefix", prefix), zap.Error(err))
		return out
	}

	pos := make(map[string]int)
	for _, key := range keys {
		var items []T
		if err := kv.GetJSON(s.store, key, &items); err != nil {
			s.log.Warn("bucket unreadable, skipping", zap.String("key", key), zap.Error(err))
			continue
		}
		for _, item := range items {
			k := id(item)
			if fromRoot[k] {
				continue
			}
			if i, ok := pos[k]; ok {
				out[i] = item
				continue
			}
			pos[k] = len(out)
			out = append(out, item)
		}
	}
	return out
}

// Save writes the root, every bucket, prunes orphaned buckets and writes
// or removes the active-project key. Failures are logged and dropped.
func (s *Synchronizer) Save(state domain.State) {
	root := rootRecord{State: state}
	root.State.Tasks = nil
	root.State.Goals = nil
	if err := kv.SetJSON(s.store, RootKey, root); err != nil {
		s.log.Warn("writing root state failed", zap.String("key", RootKey), zap.Error(err))
	}

	taskBuckets := make(map[string][]domain.Task)
	for _, t := range state.Tasks {
		key := TaskBucketKey(t.ProjectID)
		taskBuckets[key] = append(taskBuckets[key], t)
	}
	goalBuckets := make(map[string][]domain.Goal)
	for _, g := range state.Goals {
		key := GoalBucketKey(g.ProjectID)
		goalBuckets[key] = append(goalBuckets[key], g)
	}

	writeBuckets(s, taskBuckets)
	writeBuckets(s, goalBuckets)
	prune(s, TaskBucketPrefix, taskBuckets)
	prune(s, GoalBucketPrefix, goalBuckets)

	if state.ActiveProjectID.IsZero() {
		if err := s.store.Delete(ActiveProjectKey); err != nil {
			s.log.Warn("clearing active project failed", zap.String("key", ActiveProjectKey), zap.Error(err))
		}
	} else if err := kv.SetJSON(s.store, ActiveProjectKey, state.ActiveProjectID.String()); err != nil {
		s.log.Warn("writing active project failed", zap.String("key", ActiveProjectKey), zap.Error(err))
	}
}

// Persist saves synchronously. It lets the Synchronizer stand in for the
// asynchronous Writer in one-shot commands.
func (s *Synchronizer) Persist(state domain.State) { s.Save(state) }

func writeBuckets[T any](s *Synchronizer, buckets map[string][]T) {
	for key, items := range buckets {
		if err := kv.SetJSON(s.store, key, items); err != nil {
			s.log.Warn("writing bucket failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// prune deletes every bucket key under prefix that is not in live.
func prune[T any](s *Synchronizer, prefix string, live map[string][]T) {
	keys, err := s.store.Keys(prefix)
	if err != nil {
		s.log.Warn("listing buckets for pruning failed", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	for _, key := range keys {
		if _, ok := live[key]; ok {
			continue
		}
		if err := s.store.Delete(key); err != nil {
			s.log.Warn("pruning bucket failed", zap.String("key", key), zap.Error(err))
			continue
		}
		s.log.Debug("pruned orphaned bucket", zap.String("key", key))
	}
}

// normalize replaces nil collections decoded from JSON null with empty ones.
func normalize(st domain.State) domain.State {
	if st.Projects == nil {
		st.Projects = []domain.Project{}
	}
	if st.Pages == nil {
		st.Pages = []domain.WorkspacePage{}
	}
	if st.Events == nil {
		st.Events = []domain.CalendarEvent{}
	}
	st.Tasks = nil
	st.Goals = nil
	return st
}
