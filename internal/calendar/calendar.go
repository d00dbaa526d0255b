// Package calendar links the dashboard to an external calendar provider.
//
// The provider is an opaque event source. A Client fetches only while the
// connection state is Connected; Sync drives the connecting, connected
// and failed transitions and records each of them in the dashboard.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HendryAvila/neuraldesk/internal/domain"
)

// SyncFailedMessage is recorded when a sync does not complete.
const SyncFailedMessage = "Could not sync the calendar"

// TokenLifetime is how long the credentials issued by Connect stay valid.
const TokenLifetime = time.Hour

// ErrNoProvider is returned when the client has no provider configured.
var ErrNoProvider = errors.New("calendar: no provider configured")

// Provider fetches events for a connected account.
type Provider interface {
	Name() string
	Events(ctx context.Context, auth Connected) ([]domain.EventInput, error)
}

// Simulated is a provider that returns one deep-work block starting an
// hour from now.
type Simulated struct {
	Now func() time.Time
}

// Name implements Provider.
func (Simulated) Name() string { return "simulated" }

// Events implements Provider.
func (s Simulated) Events(ctx context.Context, auth Connected) ([]domain.EventInput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	start := now().Add(time.Hour)
	return []domain.EventInput{{
		Title:  "Deep work block",
		Start:  start,
		End:    start.Add(time.Hour),
		Source: domain.SourceExternal,
		Metadata: map[string]string{
			"origin":     "simulated",
			"account":    auth.Email,
			"externalId": uuid.NewString(),
		},
	}}, nil
}

// Multi fetches from several providers concurrently and concatenates
// their events in provider order. Any provider error fails the fetch.
type Multi []Provider

// Name implements Provider.
func (m Multi) Name() string { return "multi" }

// Events implements Provider.
func (m Multi) Events(ctx context.Context, auth Connected) ([]domain.EventInput, error) {
	results := make([][]domain.EventInput, len(m))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range m {
		g.Go(func() error {
			events, err := p.Events(gctx, auth)
			if err != nil {
				return fmt.Errorf("%s: %w", p.Name(), err)
			}
			results[i] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []domain.EventInput
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// Recorder is the part of the dashboard a sync writes to.
type Recorder interface {
	RecordCalendarState(rec *domain.CalendarRecord)
	AddEvent(in domain.EventInput) domain.CalendarEvent
}

// Option configures a Client.
type Option func(*Client)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// Client fetches events through a Provider.
type Client struct {
	provider Provider
	now      func() time.Time
	log      *zap.Logger
}

// NewClient creates a Client. A nil provider makes every fetch of a
// connected account fail with ErrNoProvider.
func NewClient(provider Provider, opts ...Option) *Client {
	c := &Client{provider: provider, now: time.Now, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("calendar")
	return c
}

// Connect issues short-lived credentials for email.
func (c *Client) Connect(email string) Connected {
	return Connected{Email: email, Token: uuid.NewString(), ExpiresAt: c.now().Add(TokenLifetime)}
}

// FetchEvents returns the provider's events, or nothing when auth is not
// connected.
func (c *Client) FetchEvents(ctx context.Context, auth Auth) ([]domain.EventInput, error) {
	conn, ok := auth.(Connected)
	if !ok {
		return nil, nil
	}
	if c.provider == nil {
		return nil, ErrNoProvider
	}
	events, err := c.provider.Events(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("calendar: fetch events: %w", err)
	}
	return events, nil
}

// Sync records Connecting, fetches the events of auth and adds them to
// rec. It then records Connected with the sync time, or Failed when the
// fetch did not complete. The final state is returned with the number of
// events added.
func Sync(ctx context.Context, rec Recorder, c *Client, auth Connected) (Auth, int, error) {
	rec.RecordCalendarState(ToRecord(Connecting{Email: auth.Email}))

	events, err := c.FetchEvents(ctx, auth)
	if err != nil {
		failed := Failed{Email: auth.Email, Message: SyncFailedMessage}
		rec.RecordCalendarState(ToRecord(failed))
		c.log.Warn("calendar sync failed", zap.String("account", auth.Email), zap.Error(err))
		return failed, 0, err
	}
	for _, e := range events {
		rec.AddEvent(e)
	}

	synced := c.now()
	auth.LastSynced = &synced
	rec.RecordCalendarState(ToRecord(auth))
	c.log.Info("calendar synced", zap.String("account", auth.Email), zap.Int("events", len(events)))
	return auth, len(events), nil
}

// Disconnect clears the connection record.
func Disconnect(rec Recorder) {
	rec.RecordCalendarState(nil)
}
