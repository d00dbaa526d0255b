// Package session keeps the short conversational memory of the assistant.
//
// A Buffer is a bounded FIFO of turns per project key, persisted in the
// key-value store. Two buffers make up a Store: the assistant memory and
// the longer live chat transcript. Lookups under one project key never
// see turns written under another.
package session

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HendryAvila/neuraldesk/internal/domain"
	"github.com/HendryAvila/neuraldesk/internal/kv"
)

// Key prefixes and default capacities.
const (
	MemoryPrefix     = "neuraldesk.ai.memory"
	TranscriptPrefix = "neuraldesk.ai.chat"

	DefaultMemoryTurns     = 10
	DefaultTranscriptTurns = 50

	// NoProjectKey is the project key used when no project is active.
	NoProjectKey = "inbox"
)

// Role is who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one conversational message.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ProjectKey normalizes a project reference into a buffer key.
func ProjectKey(ref domain.ProjectRef) string {
	if ref.IsZero() {
		return NoProjectKey
	}
	return ref.String()
}

// Buffer is a bounded, per-project list of turns. Oldest turns are
// evicted first once the capacity is reached.
type Buffer struct {
	store  kv.Store
	prefix string
	limit  int
	log    *zap.Logger
	mu     sync.Mutex
}

// NewBuffer creates a buffer that keeps at most limit turns per project.
func NewBuffer(store kv.Store, prefix string, limit int, log *zap.Logger) *Buffer {
	if limit < 1 {
		limit = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Buffer{store: store, prefix: prefix, limit: limit, log: log}
}

// Limit returns the capacity of the buffer.
func (b *Buffer) Limit() int { return b.limit }

func (b *Buffer) key(projectKey string) string { return b.prefix + "." + projectKey }

// Load returns the turns of projectKey, oldest first. Unreadable data
// yields an empty buffer.
func (b *Buffer) Load(projectKey string) []Turn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(projectKey)
}

func (b *Buffer) load(projectKey string) []Turn {
	var turns []Turn
	if err := kv.GetJSON(b.store, b.key(projectKey), &turns); err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			b.log.Warn("session buffer unreadable", zap.String("key", b.key(projectKey)), zap.Error(err))
		}
		return []Turn{}
	}
	if turns == nil {
		return []Turn{}
	}
	return b.trim(turns)
}

func (b *Buffer) save(projectKey string, turns []Turn) {
	if err := kv.SetJSON(b.store, b.key(projectKey), turns); err != nil {
		b.log.Warn("saving session buffer failed", zap.String("key", b.key(projectKey)), zap.Error(err))
	}
}

func (b *Buffer) trim(turns []Turn) []Turn {
	if len(turns) > b.limit {
		turns = turns[len(turns)-b.limit:]
	}
	return append([]Turn{}, turns...)
}

// Append adds turns and returns the resulting buffer.
func (b *Buffer) Append(projectKey string, turns ...Turn) []Turn {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.trim(append(b.load(projectKey), turns...))
	b.save(projectKey, next)
	return next
}

// UpdateLast replaces the content of the newest turn. It reports false
// when the buffer is empty.
func (b *Buffer) UpdateLast(projectKey, content string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	turns := b.load(projectKey)
	if len(turns) == 0 {
		return false
	}
	turns[len(turns)-1].Content = content
	b.save(projectKey, turns)
	return true
}

// Replace overwrites the buffer with turns, keeping the newest ones.
func (b *Buffer) Replace(projectKey string, turns []Turn) []Turn {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.trim(turns)
	b.save(projectKey, next)
	return next
}

// Reset clears one project's buffer.
func (b *Buffer) Reset(projectKey string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.Delete(b.key(projectKey)); err != nil {
		b.log.Warn("resetting session buffer failed", zap.String("key", b.key(projectKey)), zap.Error(err))
	}
}

// ClearAll wipes every project's buffer.
func (b *Buffer) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys, err := b.store.Keys(b.prefix + ".")
	if err != nil {
		b.log.Warn("listing session buffers failed", zap.String("prefix", b.prefix), zap.Error(err))
		return
	}
	for _, k := range keys {
		if err := b.store.Delete(k); err != nil {
			b.log.Warn("clearing session buffer failed", zap.String("key", k), zap.Error(err))
		}
	}
}

// Config sets the buffer capacities.
type Config struct {
	MemoryTurns     int
	TranscriptTurns int
}

// Store groups the assistant memory and the chat transcript. It is
// created once per session and discarded on sign-out.
type Store struct {
	Memory     *Buffer
	Transcript *Buffer
}

// New creates both buffers over store. Zero capacities take the defaults.
func New(store kv.Store, cfg Config, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MemoryTurns == 0 {
		cfg.MemoryTurns = DefaultMemoryTurns
	}
	if cfg.TranscriptTurns == 0 {
		cfg.TranscriptTurns = DefaultTranscriptTurns
	}
	log = log.Named("session")
	return &Store{
		Memory:     NewBuffer(store, MemoryPrefix, cfg.MemoryTurns, log),
		Transcript: NewBuffer(store, TranscriptPrefix, cfg.TranscriptTurns, log),
	}
}

// ClearAll wipes both buffers for every project.
func (s *Store) ClearAll() {
	s.Memory.ClearAll()
	s.Transcript.ClearAll()
}
