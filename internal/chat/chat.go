// Package chat is the live conversation path: it sends the project's
// transcript to the language-model gateway and records the streamed reply
// back into the transcript as it arrives.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HendryAvila/neuraldesk/internal/domain"
	"github.com/HendryAvila/neuraldesk/internal/gateway"
	"github.com/HendryAvila/neuraldesk/internal/session"
)

// EmptyReply replaces a reply that finished without any text.
const EmptyReply = "No reply was generated. Try again in a few seconds."

// Streamer opens a reply stream. *gateway.Client implements it.
type Streamer interface {
	Stream(ctx context.Context, req gateway.Request) (<-chan string, <-chan error)
}

// Dashboard is the part of the domain store the chat path reads.
type Dashboard interface {
	State() domain.State
	RefreshSnapshot() domain.AiSnapshot
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(c *Conversation) { c.now = now } }

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Conversation) {
		if log != nil {
			c.log = log
		}
	}
}

// Conversation runs live chat exchanges over a transcript buffer.
type Conversation struct {
	dash       Dashboard
	transcript *session.Buffer
	gw         Streamer
	now        func() time.Time
	log        *zap.Logger

	mu        sync.Mutex
	summaries map[string]string
}

// New creates a Conversation.
func New(dash Dashboard, transcript *session.Buffer, gw Streamer, opts ...Option) *Conversation {
	c := &Conversation{
		dash:       dash,
		transcript: transcript,
		gw:         gw,
		now:        time.Now,
		log:        zap.NewNop(),
		summaries:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("chat")
	return c
}

// History returns the transcript of project, oldest first.
func (c *Conversation) History(project domain.ProjectRef) []session.Turn {
	return c.transcript.Load(session.ProjectKey(project))
}

// Send appends prompt to the transcript of project and streams the
// reply. onUpdate, when not nil, receives the accumulated reply after
// every delta. The assistant turn is added on the first delta and
// rewritten as more text arrives, so a failed or cancelled stream leaves
// the partial reply in the transcript. The returned text is what was
// recorded, even when err is not nil.
func (c *Conversation) Send(ctx context.Context, project domain.ProjectRef, prompt string, onUpdate func(string)) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", domain.Invalid("prompt", "must not be empty")
	}
	defer c.dash.RefreshSnapshot()

	key := session.ProjectKey(project)
	history := c.transcript.Append(key, session.Turn{Role: session.RoleUser, Content: prompt, Timestamp: c.now()})

	req := gateway.Request{Project: c.projectName(project), Messages: make([]gateway.Message, 0, len(history))}
	for _, t := range history {
		req.Messages = append(req.Messages, gateway.Message{Role: string(t.Role), Content: t.Content})
	}

	deltas, errs := c.gw.Stream(ctx, req)
	var b strings.Builder
	for d := range deltas {
		first := b.Len() == 0
		b.WriteString(d)
		if first {
			c.transcript.Append(key, session.Turn{Role: session.RoleAssistant, Content: b.String(), Timestamp: c.now()})
		} else {
			c.transcript.UpdateLast(key, b.String())
		}
		if onUpdate != nil {
			onUpdate(b.String())
		}
	}

	err := <-errs
	text := b.String()
	switch {
	case err != nil:
		c.log.Warn("chat stream ended with error",
			zap.String("project", key), zap.Int("partial_len", len(text)), zap.Error(err))
	case text == "":
		text = EmptyReply
		c.transcript.Append(key, session.Turn{Role: session.RoleAssistant, Content: text, Timestamp: c.now()})
		if onUpdate != nil {
			onUpdate(text)
		}
	}
	return text, err
}

// ObserveContext records the snapshot summary shown next to the
// conversation of project. When it differs from the previously observed
// summary the transcript is reset and true is returned. The first
// observation never resets.
func (c *Conversation) ObserveContext(project domain.ProjectRef, summary string) bool {
	key := session.ProjectKey(project)

	c.mu.Lock()
	prev, seen := c.summaries[key]
	c.summaries[key] = summary
	c.mu.Unlock()

	if !seen || prev == summary {
		return false
	}
	c.transcript.Reset(key)
	c.log.Debug("chat context changed, transcript reset", zap.String("project", key))
	return true
}

func (c *Conversation) projectName(project domain.ProjectRef) *string {
	if project.IsZero() {
		return nil
	}
	if p, ok := c.dash.State().FindProject(project.String()); ok {
		return &p.Name
	}
	return nil
}
