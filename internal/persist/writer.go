package persist

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/HendryAvila/neuraldesk/internal/domain"
)

// ErrWriterClosed is returned by Flush once the writer has stopped with
// states still unwritten.
var ErrWriterClosed = errors.New("persist: writer closed")

// Saver is the synchronous save the Writer delegates to.
type Saver interface {
	Save(state domain.State)
}

// Writer is a fire-and-forget write-through. Persist never blocks: it
// replaces the pending state and wakes the background goroutine, so a
// burst of mutations results in a single save of the latest state.
type Writer struct {
	saver Saver
	log   *zap.Logger

	mu       sync.Mutex
	pending  *domain.State
	queued   uint64
	written  uint64
	progress chan struct{}
	closed   bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewWriter starts the background goroutine. Call Close to stop it.
func NewWriter(saver Saver, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Writer{
		saver:    saver,
		log:      log.Named("writer"),
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Persist queues state for writing. Only the latest queued state is kept.
func (w *Writer) Persist(state domain.State) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.log.Warn("state dropped, writer is closed")
		return
	}
	w.pending = &state
	w.queued++
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every state queued before the call has been written.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.queued
	w.mu.Unlock()

	for {
		w.mu.Lock()
		if w.written >= target {
			w.mu.Unlock()
			return nil
		}
		ch := w.progress
		w.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			w.mu.Lock()
			ok := w.written >= target
			w.mu.Unlock()
			if ok {
				return nil
			}
			return ErrWriterClosed
		}
	}
}

// Close writes whatever is pending and stops the goroutine.
func (w *Writer) Close() error {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.stop)
	})
	<-w.done
	return nil
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	for {
		w.mu.Lock()
		st, seq := w.pending, w.queued
		w.pending = nil
		w.mu.Unlock()
		if st == nil {
			return
		}

		w.saver.Save(*st)

		w.mu.Lock()
		w.written = seq
		close(w.progress)
		w.progress = make(chan struct{})
		w.mu.Unlock()
	}
}
