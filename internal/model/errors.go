package model

import (
	"errors"
	"fmt"
)

// ErrBodyClosed is returned when reading a response body after Close.
var ErrBodyClosed = errors.New("kwest: read on closed response body")

// ErrNoResponse replaces a handler result that carries neither a response
// nor an error.
var ErrNoResponse = errors.New("kwest: handler returned no response")

// InputError reports an input that could not be normalized into a request.
type InputError struct {
	Input  interface{}
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	msg := "kwest: invalid request input: " + e.Reason
	if e.Input != nil {
		msg += fmt.Sprintf(" (%v)", e.Input)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InputError) Unwrap() error { return e.Err }

// UnsupportedSchemeError is returned before any I/O when no transport is
// bound to the request's scheme.
type UnsupportedSchemeError struct {
	Scheme string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("kwest: unsupported scheme %q", e.Scheme)
}

// TransportError wraps any failure of the network exchange, including
// errors raised by a piped request body.
type TransportError struct {
	Op  string // "dial", "write", "body", "read", ...
	URI string
	Err error
}

func (e *TransportError) Error() string {
	if e.URI == "" {
		return fmt.Sprintf("kwest: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("kwest: %s %s: %v", e.Op, e.URI, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// CancellationError is returned when the caller cancelled a dispatch. Err
// holds the cancellation cause, usually [context.Canceled] or
// [context.DeadlineExceeded].
type CancellationError struct {
	Err error
}

func (e *CancellationError) Error() string {
	if e.Err == nil {
		return "kwest: dispatch cancelled"
	}
	return "kwest: dispatch cancelled: " + e.Err.Error()
}

func (e *CancellationError) Unwrap() error { return e.Err }
