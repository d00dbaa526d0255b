package server

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/HendryAvila/neuraldesk/internal/assistant"
	"github.com/HendryAvila/neuraldesk/internal/calendar"
	"github.com/HendryAvila/neuraldesk/internal/chat"
	"github.com/HendryAvila/neuraldesk/internal/config"
	"github.com/HendryAvila/neuraldesk/internal/dashboard"
	"github.com/HendryAvila/neuraldesk/internal/gateway"
	"github.com/HendryAvila/neuraldesk/internal/kv"
	"github.com/HendryAvila/neuraldesk/internal/persist"
	"github.com/HendryAvila/neuraldesk/internal/session"
)

// App holds the concrete components of one running session. Both the
// MCP server and the CLI subcommands are built on it.
type App struct {
	Config    *config.Config
	KV        kv.Store
	Dashboard *dashboard.Store
	Sessions  *session.Store
	Assistant *assistant.Engine
	Chat      *chat.Conversation
	Calendar  *calendar.Client

	writer *persist.Writer
	closer func() error
	log    *zap.Logger
}

// NewApp opens the configured storage backend, loads the persisted
// dashboard and wires every component over it.
func NewApp(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	store, closer, err := kv.Open(cfg.Storage.Backend, cfg.DataDir())
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}

	sync := persist.New(store, log)
	writer := persist.NewWriter(sync, log)
	dash := dashboard.New(sync.Load(),
		dashboard.WithPersister(writer),
		dashboard.WithLogger(log),
	)

	sessions := session.New(store, session.Config{
		MemoryTurns:     cfg.Assistant.MemoryTurns,
		TranscriptTurns: cfg.Chat.TranscriptTurns,
	}, log)

	gw := gateway.New(cfg.Chat.Endpoint,
		gateway.WithHistoryTurns(cfg.Chat.HistoryTurns),
		gateway.WithTimeout(cfg.Chat.Timeout),
		gateway.WithLogger(log),
	)

	var provider calendar.Provider
	if cfg.Calendar.Provider == config.CalendarSimulated {
		provider = calendar.Simulated{Now: time.Now}
	}

	log.Info("session ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("dir", cfg.DataDir()),
		zap.Int("tasks", len(dash.State().Tasks)),
	)

	return &App{
		Config:    cfg,
		KV:        store,
		Dashboard: dash,
		Sessions:  sessions,
		Assistant: assistant.New(store, sessions.Memory, assistant.WithLogger(log)),
		Chat:      chat.New(dash, sessions.Transcript, gw, chat.WithLogger(log)),
		Calendar:  calendar.NewClient(provider, calendar.WithLogger(log)),
		writer:    writer,
		closer:    closer.Close,
		log:       log,
	}, nil
}

// Flush blocks until every mutation made so far is on disk.
func (a *App) Flush(ctx context.Context) error {
	return a.writer.Flush(ctx)
}

// Close writes pending mutations and releases the storage backend.
// Closing twice is safe.
func (a *App) Close() error {
	if err := a.writer.Close(); err != nil {
		a.log.Warn("closing writer", zap.Error(err))
	}
	if a.closer == nil {
		return nil
	}
	closer := a.closer
	a.closer = nil
	return closer()
}
