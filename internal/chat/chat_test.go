package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/HendryAvila/neuraldesk/internal/dashboard"
	"github.com/HendryAvila/neuraldesk/internal/domain"
	"github.com/HendryAvila/neuraldesk/internal/gateway"
	"github.com/HendryAvila/neuraldesk/internal/kv"
	"github.com/HendryAvila/neuraldesk/internal/session"
)

type scripted struct {
	deltas []string
	err    error
	got    gateway.Request
}

func (s *scripted) Stream(_ context.Context, req gateway.Request) (<-chan string, <-chan error) {
	s.got = req
	out := make(chan string, len(s.deltas))
	errs := make(chan error, 1)
	for _, d := range s.deltas {
		out <- d
	}
	if s.err != nil {
		errs <- s.err
	}
	close(out)
	close(errs)
	return out, errs
}

type fixture struct {
	conv       *Conversation
	dash       *dashboard.Store
	transcript *session.Buffer
}

func newFixture(t *testing.T, gw Streamer) fixture {
	t.Helper()
	st := domain.InitialState()
	st.Projects = []domain.Project{{ID: "p1", Name: "Launch"}}
	st.Tasks = []domain.Task{{ID: "t1", Title: "Write brief", ProjectID: "p1", Priority: domain.PriorityHigh}}
	dash := dashboard.New(st)
	transcript := session.NewBuffer(kv.NewMemory(), session.TranscriptPrefix, session.DefaultTranscriptTurns, nil)
	clock := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	conv := New(dash, transcript, gw, WithClock(func() time.Time { return clock }))
	return fixture{conv: conv, dash: dash, transcript: transcript}
}

func TestSend_RecordsStreamedReply(t *testing.T) {
	gw := &scripted{deltas: []string{"Start ", "with ", "the brief."}}
	f := newFixture(t, gw)

	var updates []string
	text, err := f.conv.Send(context.Background(), "p1", "  what first? ", func(s string) { updates = append(updates, s) })
	require.NoError(t, err)

	assert.Equal(t, "Start with the brief.", text)
	assert.Equal(t, []string{"Start ", "Start with ", "Start with the brief."}, updates)

	turns := f.conv.History("p1")
	require.Len(t, turns, 2)
	assert.Equal(t, session.Turn{Role: session.RoleUser, Content: "what first?", Timestamp: turns[0].Timestamp}, turns[0])
	assert.Equal(t, session.RoleAssistant, turns[1].Role)
	assert.Equal(t, "Start with the brief.", turns[1].Content)

	require.NotNil(t, gw.got.Project)
	assert.Equal(t, "Launch", *gw.got.Project)
	assert.Equal(t, []gateway.Message{{Role: "user", Content: "what first?"}}, gw.got.Messages)
	assert.NotNil(t, f.dash.State().Snapshot, "snapshot refreshed after the stream")
}

func TestSend_SendsHistory(t *testing.T) {
	gw := &scripted{deltas: []string{"ok"}}
	f := newFixture(t, gw)

	_, err := f.conv.Send(context.Background(), domain.NoProject, "one", nil)
	require.NoError(t, err)
	_, err = f.conv.Send(context.Background(), domain.NoProject, "two", nil)
	require.NoError(t, err)

	assert.Nil(t, gw.got.Project)
	assert.Equal(t, []gateway.Message{
		{Role: "user", Content: "one"},
		{Role: "assistant", Content: "ok"},
		{Role: "user", Content: "two"},
	}, gw.got.Messages)
	assert.Empty(t, f.conv.History("p1"))
}

func TestSend_EmptyReplyIsSubstituted(t *testing.T) {
	f := newFixture(t, &scripted{})

	text, err := f.conv.Send(context.Background(), "p1", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, EmptyReply, text)

	turns := f.conv.History("p1")
	require.Len(t, turns, 2)
	assert.Equal(t, EmptyReply, turns[1].Content)
}

func TestSend_ErrorKeepsPartialText(t *testing.T) {
	failure := &gateway.StreamError{Message: "quota exceeded"}
	f := newFixture(t, &scripted{deltas: []string{"Half an "}, err: failure})

	text, err := f.conv.Send(context.Background(), "p1", "hello", nil)
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, "Half an ", text)

	turns := f.conv.History("p1")
	require.Len(t, turns, 2)
	assert.Equal(t, "Half an ", turns[1].Content)
}

func TestSend_ErrorBeforeFirstDeltaLeavesOnlyUserTurn(t *testing.T) {
	f := newFixture(t, &scripted{err: errors.New("connection refused")})

	text, err := f.conv.Send(context.Background(), "p1", "hello", nil)
	require.Error(t, err)
	assert.Empty(t, text)

	turns := f.conv.History("p1")
	require.Len(t, turns, 1)
	assert.Equal(t, session.RoleUser, turns[0].Role)
}

func TestSend_RejectsEmptyPrompt(t *testing.T) {
	gw := &scripted{}
	f := newFixture(t, gw)

	_, err := f.conv.Send(context.Background(), "p1", "   ", nil)
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, f.conv.History("p1"))
}

func TestSend_CancelOverGateway(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := json.Marshal(map[string]string{"type": gateway.FrameDelta, "delta": "partial"})
		fmt.Fprintf(w, "data: %s\n\n", b)
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	f := newFixture(t, gateway.New(srv.URL, gateway.WithHTTPClient(srv.Client())))
	ctx, cancel := context.WithCancel(context.Background())
	text, err := f.conv.Send(ctx, "p1", "hello", func(string) { cancel() })

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "partial", text)
	turns := f.conv.History("p1")
	require.Len(t, turns, 2)
	assert.Equal(t, "partial", turns[1].Content)
}

func TestObserveContext(t *testing.T) {
	f := newFixture(t, &scripted{deltas: []string{"ok"}})
	_, err := f.conv.Send(context.Background(), "p1", "hello", nil)
	require.NoError(t, err)

	assert.False(t, f.conv.ObserveContext("p1", "steady"), "first observation")
	assert.False(t, f.conv.ObserveContext("p1", "steady"))
	assert.Len(t, f.conv.History("p1"), 2)

	assert.True(t, f.conv.ObserveContext("p1", "overloaded"))
	assert.Empty(t, f.conv.History("p1"))
	assert.False(t, f.conv.ObserveContext(domain.NoProject, "overloaded"), "tracked per project")
}
