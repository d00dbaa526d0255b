// Package dashboard implements the authoritative in-memory domain store.
//
// The Store owns every task, goal, project, event, page and preference of
// the current session and is reached only through named operations. Each
// operation is atomic with respect to the in-memory state; after the
// state is updated the new state is handed to the Persister (write-through,
// never before the update, never rolled back on failure).
package dashboard

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HendryAvila/neuraldesk/internal/domain"
	"github.com/HendryAvila/neuraldesk/internal/snapshot"
)

// MaxTitleLength caps task titles, counted in runes.
const MaxTitleLength = 120

// MaxEstimateMinutes caps a task estimate at one week.
const MaxEstimateMinutes = 7 * 24 * 60

// Persister receives every state produced by a mutation. Persist is
// called while the store lock is held so that states arrive in mutation
// order, so long-lived stores should use a non-blocking persister such as
// persist.Writer. persist.Synchronizer writes synchronously and only suits
// one-shot callers that make a handful of mutations.
type Persister interface {
	Persist(state domain.State)
}

// PersisterFunc adapts a function to the Persister interface.
type PersisterFunc func(domain.State)

// Persist calls f(state).
func (f PersisterFunc) Persist(state domain.State) { f(state) }

// Option configures a Store.
type Option func(*Store)

// WithPersister sets the write-through target.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithColorGenerator replaces the random project color source.
func WithColorGenerator(gen func() string) Option {
	return func(s *Store) { s.newColor = gen }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// Store is the single mutable dashboard aggregate.
type Store struct {
	mu        sync.Mutex
	state     domain.State
	persister Persister
	now       func() time.Time
	newID     func() string
	newColor  func() string
	log       *zap.Logger
}

// New creates a Store seeded with initial (usually the hydrated state).
func New(initial domain.State, opts ...Option) *Store {
	s := &Store{
		state:    initial.Clone(),
		now:      time.Now,
		newID:    uuid.NewString,
		newColor: randomColor,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a deep copy of the current state.
func (s *Store) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// ActiveProject returns the active project selector.
func (s *Store) ActiveProject() domain.ProjectRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ActiveProjectID
}

// RefreshSnapshot rebuilds the snapshot, caches it in the state and
// returns it.
func (s *Store) RefreshSnapshot() domain.AiSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot.Build(s.state, s.now())
	s.state.Snapshot = &snap
	s.commit("refresh_snapshot")
	return snap.Clone()
}

// Snapshot returns the cached snapshot, or a freshly built one when
// nothing has been cached yet. The next block label always reflects the
// current time. It never mutates the state.
func (s *Store) Snapshot() domain.AiSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Snapshot != nil {
		snap := s.state.Snapshot.Clone()
		snap.NextBlock = snapshot.NextBlock(s.now())
		return snap
	}
	return snapshot.Build(s.state, s.now())
}

// Reset discards everything and returns to the initial state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = domain.InitialState()
	s.commit("reset")
}

// commit hands the current state to the persister. Callers hold s.mu.
func (s *Store) commit(op string) {
	s.log.Debug("dashboard mutation",
		zap.String("op", op),
		zap.Int("tasks", len(s.state.Tasks)),
		zap.Int("goals", len(s.state.Goals)),
	)
	if s.persister == nil {
		return
	}
	s.persister.Persist(s.state.Clone())
}

func randomColor() string {
	var b [3]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "#10b981"
	}
	return "#" + hex.EncodeToString(b[:])
}
