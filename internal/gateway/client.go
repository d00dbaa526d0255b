// Package gateway is the client of the language-model chat gateway.
//
// It posts the recent message history and republishes the streamed
// reply frames ("data: <json>" lines, terminated by "data: [DONE]") as a
// channel of text deltas. It holds no diagnostic logic of its own.
package gateway

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Frame types sent by the gateway.
const (
	FrameDelta     = "response.output_text.delta"
	FrameCompleted = "response.completed"
)

// DefaultHistoryTurns is how many recent messages are sent.
const DefaultHistoryTurns = 12

const maxErrorBody = 4 << 10

// Message is one entry of the conversation sent to the gateway.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the body posted to the gateway. A nil Project is sent as null.
type Request struct {
	Project  *string   `json:"project"`
	Messages []Message `json:"messages"`
}

type frame struct {
	Type  string `json:"type"`
	Delta string `json:"delta"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithHistoryTurns sets how many recent messages are sent.
func WithHistoryTurns(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.historyTurns = n
		}
	}
}

// WithTimeout bounds requests whose context has no deadline. Zero means
// no bound.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// Client streams replies from the gateway endpoint.
type Client struct {
	endpoint     string
	http         *http.Client
	historyTurns int
	timeout      time.Duration
	log          *zap.Logger
}

// New creates a Client for endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:     endpoint,
		http:         http.DefaultClient,
		historyTurns: DefaultHistoryTurns,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("gateway")
	return c
}

// Stream posts req and returns the reply deltas. The error channel
// carries at most one error: a *StatusError, a *StreamError, a
// *DecodeError, a transport error or ctx.Err() on cancellation. Both
// channels are closed when the stream ends; deltas received before a
// failure have already been delivered.
func (c *Client) Stream(ctx context.Context, req Request) (<-chan string, <-chan error) {
	deltas := make(chan string, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(deltas)
		defer close(errs)

		if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		start := time.Now()
		if err := c.stream(ctx, c.truncate(req), deltas); err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
				c.log.Warn("stream cancelled", zap.Duration("elapsed", time.Since(start)))
			} else {
				c.log.Warn("stream failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
			}
			errs <- err
			return
		}
		c.log.Debug("stream completed", zap.Duration("elapsed", time.Since(start)))
	}()

	return deltas, errs
}

func (c *Client) truncate(req Request) Request {
	if len(req.Messages) > c.historyTurns {
		req.Messages = req.Messages[len(req.Messages)-c.historyTurns:]
	}
	return req
}

func (c *Client) stream(ctx context.Context, req Request, deltas chan<- string) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("gateway: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gateway: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("gateway: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			return nil
		}

		var f frame
		if err := json.Unmarshal([]byte(data), &f); err != nil {
			return &DecodeError{Frame: data, Err: err}
		}
		if f.Error != nil {
			return &StreamError{Message: f.Error.Message}
		}
		switch f.Type {
		case FrameCompleted:
			return nil
		case FrameDelta:
			if f.Delta == "" {
				continue
			}
			select {
			case deltas <- f.Delta:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("gateway: read stream: %w", err)
	}
	return nil
}
