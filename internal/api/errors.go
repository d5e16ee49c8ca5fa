package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies request failures.
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindNetwork
	KindNotFound
	KindServer
	KindUnavailable
	KindHTTP
	KindDecode
)

// String returns a short identifier for the kind.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindUnavailable:
		return "unavailable"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is a typed request failure. Error() returns only the human-readable
// message; callers branch on Kind, never on the text.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	// Body holds the envelope's error field when the server sent one.
	Body  string
	Cause error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf returns the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// transportError classifies an error returned by http.Client.Do.
func transportError(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTimeout, Message: "Request timeout", Cause: err}
	}
	return &Error{Kind: KindNetwork, Message: "Network error", Cause: err}
}

// statusError classifies a non-2xx response.
func statusError(status int, body string) *Error {
	e := &Error{StatusCode: status, Body: body}
	switch status {
	case http.StatusNotFound:
		e.Kind, e.Message = KindNotFound, "API endpoint not found"
	case http.StatusInternalServerError:
		e.Kind, e.Message = KindServer, "Server error"
	case http.StatusServiceUnavailable:
		e.Kind, e.Message = KindUnavailable, "Service unavailable"
	default:
		e.Kind, e.Message = KindHTTP, fmt.Sprintf("HTTP error: %d", status)
	}
	return e
}

var errNotAbsolute = errors.New("origin must be an absolute URL")
