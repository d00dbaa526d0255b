// Package assistant is the offline diagnostic channel: a local, templated
// reply generator that reads the dashboard state, the workload snapshot
// and the short per-project memory. It never calls the language-model
// gateway.
//
// Replies are deduplicated per project and day: when the rendered text
// hashes to the value stored for today, the engine retries with another
// opener, up to three attempts in total.
package assistant

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HendryAvila/neuraldesk/internal/domain"
	"github.com/HendryAvila/neuraldesk/internal/kv"
	"github.com/HendryAvila/neuraldesk/internal/session"
	"github.com/HendryAvila/neuraldesk/internal/snapshot"
)

const (
	// HashKeyPrefix prefixes the per-project, per-day last reply hash.
	HashKeyPrefix = "neuraldesk.ai.last-hash."

	// MaxAttempts bounds the anti-repetition retry loop.
	MaxAttempts = 3

	maxListedTasks  = 4
	maxListedEvents = 3
)

// Request is one question to the assistant.
type Request struct {
	Question string
	UserName string
}

// Reply is the rendered answer.
type Reply struct {
	Text       string
	Hash       uint32
	ProjectKey string
	// Attempts is how many renderings were tried.
	Attempts int
	// Repeated is true when every attempt collided with today's hash.
	Repeated bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithRand replaces the uniform [0,1) source used to pick openers.
func WithRand(r func() float64) Option { return func(e *Engine) { e.rand = r } }

// WithHasher replaces the reply hash.
func WithHasher(h func(string) uint32) Option { return func(e *Engine) { e.hash = h } }

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine renders replies.
type Engine struct {
	store  kv.Store
	memory *session.Buffer
	now    func() time.Time
	rand   func() float64
	hash   func(string) uint32
	log    *zap.Logger
}

// New creates an Engine. memory is the assistant memory buffer.
func New(store kv.Store, memory *session.Buffer, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		memory: memory,
		now:    time.Now,
		rand:   rand.Float64,
		hash:   Hash,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Named("assistant")
	return e
}

// Hash is FNV-1a 32 over the whitespace-normalized text.
func Hash(text string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.Join(strings.Fields(text), " ")))
	return h.Sum32()
}

// HashKey returns the storage key of the last reply hash of projectKey
// on the day of t.
func HashKey(projectKey string, t time.Time) string {
	return HashKeyPrefix + projectKey + "." + t.Format(time.DateOnly)
}

// Reply renders an answer for the active project of state, records its
// hash for today and appends the exchange to the project's memory.
func (e *Engine) Reply(state domain.State, req Request) Reply {
	now := e.now()
	projectKey := session.ProjectKey(state.ActiveProjectID)
	history := e.memory.Load(projectKey)
	hashKey := HashKey(projectKey, now)
	last, hasLast := e.lastHash(hashKey)

	snap := snapshot.Build(state, now)
	if state.Snapshot != nil {
		snap = state.Snapshot.Clone()
		snap.NextBlock = snapshot.NextBlock(now)
		if _, ok := openers[snap.Sentiment]; !ok {
			snap.Sentiment = snapshot.Sentiment(snap.TotalEstimateMinutes, snapshot.CapacityMinutes)
		}
	}

	name := strings.TrimSpace(req.UserName)
	if name == "" {
		name = defaultUserName
	}
	question := strings.TrimSpace(req.Question)
	v := view{state: state, snap: snap, now: now, name: name, question: question, history: history}

	pick := e.rand()
	var reply Reply
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		variant := (int(pick*3) + attempt) % 3
		text := v.render(variant)
		reply = Reply{Text: text, Hash: e.hash(text), ProjectKey: projectKey, Attempts: attempt + 1}
		if !hasLast || reply.Hash != last {
			break
		}
		reply.Repeated = attempt == MaxAttempts-1
	}
	if reply.Repeated {
		e.log.Debug("reply repeats today's answer", zap.String("project", projectKey))
	}

	if err := kv.SetJSON(e.store, hashKey, reply.Hash); err != nil {
		e.log.Warn("saving reply hash failed", zap.String("key", hashKey), zap.Error(err))
	}
	e.pruneHashes(projectKey, hashKey)

	var turns []session.Turn
	if question != "" {
		turns = append(turns, session.Turn{Role: session.RoleUser, Content: question, Timestamp: now})
	}
	turns = append(turns, session.Turn{Role: session.RoleAssistant, Content: reply.Text, Timestamp: now})
	e.memory.Append(projectKey, turns...)
	return reply
}

// Forget drops the stored reply hashes of projectKey, or of every project
// when projectKey is empty.
func (e *Engine) Forget(projectKey string) {
	prefix := HashKeyPrefix
	if projectKey != "" {
		prefix += projectKey + "."
	}
	keys, err := e.store.Keys(prefix)
	if err != nil {
		e.log.Warn("listing reply hashes failed", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	for _, k := range keys {
		if err := e.store.Delete(k); err != nil {
			e.log.Warn("deleting reply hash failed", zap.String("key", k), zap.Error(err))
		}
	}
}

func (e *Engine) lastHash(key string) (uint32, bool) {
	var h uint32
	err := kv.GetJSON(e.store, key, &h)
	switch {
	case err == nil:
		return h, true
	case !errors.Is(err, kv.ErrNotFound):
		e.log.Warn("reply hash unreadable", zap.String("key", key), zap.Error(err))
	}
	return 0, false
}

// pruneHashes drops hashes of previous days for projectKey.
func (e *Engine) pruneHashes(projectKey, keep string) {
	keys, err := e.store.Keys(HashKeyPrefix + projectKey + ".")
	if err != nil {
		return
	}
	for _, k := range keys {
		if k != keep {
			_ = e.store.Delete(k)
		}
	}
}

// view holds everything one rendering needs.
type view struct {
	state    domain.State
	snap     domain.AiSnapshot
	now      time.Time
	name     string
	question string
	history  []session.Turn
}

func (v view) render(variant int) string {
	sections := []string{
		"Daily diagnostic · " + v.now.Format("Monday, 2 January 2006"),
		fmt.Sprintf(openers[v.snap.Sentiment][variant], v.name),
		v.snap.Summary,
		fmt.Sprintf("Capacity: %d of %d min planned (%d min pending across %d tasks).",
			v.snap.BandwidthEstimateMinutes, snapshot.CapacityMinutes, v.snap.TotalEstimateMinutes, v.snap.PendingCount),
		"Next block: " + v.snap.NextBlock + ".",
		"Focus: " + v.focus() + ".",
		"Daily goal: " + v.dailyGoal(),
		v.tasks(),
		"Habits: " + v.habits(),
	}
	if prev := v.previousQuestion(); prev != "" {
		sections = append(sections, fmt.Sprintf("Last time you asked: “%s”.", prev))
	}
	if v.question != "" {
		sections = append(sections, v.answer())
	}
	sections = append(sections, fmt.Sprintf(closings[v.snap.Sentiment], v.name))
	return strings.Join(sections, "\n\n")
}

func (v view) focus() string {
	var names []string
	for _, id := range v.snap.FocusProjects {
		if p, ok := v.state.FindProject(id); ok {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 {
		return noFocusText
	}
	return strings.Join(names, ", ")
}

func (v view) dailyGoal() string {
	if v.snap.DailyGoal == "" {
		return noGoalText
	}
	return v.snap.DailyGoal + "."
}

func (v view) tasks() string {
	var b strings.Builder
	b.WriteString("Recommended:")
	n := 0
	for _, id := range v.snap.RecommendedTasks {
		if n == maxListedTasks {
			break
		}
		t, ok := v.state.FindTask(id)
		if !ok {
			continue
		}
		n++
		est := snapshot.DefaultEstimateMinutes
		if t.EstimateMinutes != nil {
			est = *t.EstimateMinutes
		}
		fmt.Fprintf(&b, "\n%d. %s — %d min, %s", n, t.Title, est, t.Priority)
	}
	if n == 0 {
		return "Recommended: " + noTasksText
	}
	return b.String()
}

func (v view) habits() string {
	if len(v.snap.SuggestedHabits) == 0 {
		return noHabitsText
	}
	return strings.Join(v.snap.SuggestedHabits, "; ") + "."
}

func (v view) previousQuestion() string {
	for i := len(v.history) - 1; i >= 0; i-- {
		if v.history[i].Role == session.RoleUser {
			return v.history[i].Content
		}
	}
	return ""
}

func (v view) answer() string {
	q := strings.ToLower(v.question)
	switch {
	case containsAny(q, progressKeywords):
		done := 0
		for _, t := range v.state.Tasks {
			if t.Status == domain.StatusDone {
				done++
			}
		}
		return fmt.Sprintf("You have completed %d tasks and %d remain. Take five minutes to note what went well.",
			done, len(v.state.Tasks)-done)
	case containsAny(q, calendarKeywords):
		return "Coming up on your calendar: " + v.upcoming() + "."
	default:
		return fmt.Sprintf("About “%s”: break it into one deliverable you can finish today and keep a short evening review to capture what you learned.", v.question)
	}
}

func (v view) upcoming() string {
	var parts []string
	for _, e := range upcomingEvents(v.state.Events, v.now) {
		if len(parts) == maxListedEvents {
			break
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", e.Title, e.Start.Format("Mon 2 Jan 15:04")))
	}
	if len(parts) == 0 {
		return noEventsText
	}
	return strings.Join(parts, ", ")
}

func upcomingEvents(events []domain.CalendarEvent, now time.Time) []domain.CalendarEvent {
	var out []domain.CalendarEvent
	for _, e := range events {
		if !e.End.Before(now) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
