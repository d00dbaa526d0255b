package gateway

import "fmt"

// StreamError is a terminal error frame sent by the gateway.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return "gateway: stream error: " + e.Message
}

// StatusError is returned when the gateway answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway: unexpected status %d: %s", e.Code, e.Body)
}

// DecodeError is returned when a frame payload is not valid JSON.
type DecodeError struct {
	Frame string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("gateway: decode frame %q: %v", e.Frame, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
