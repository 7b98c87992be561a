// Package errors defines the failure taxonomy of a single request cycle.
// Every failure an engine can deliver is an *Error carrying a Kind, a
// user-facing code and, where one exists, the underlying cause.
package errors

import (
	"errors"
	"fmt"
)

// GenericCode is the user-facing code reported when the server does not
// provide one.
const GenericCode = "E0001"

// Kind identifies where in the request cycle a failure happened.
type Kind int

const (
	// InvalidURL means the endpoint and path did not compose into a valid URL.
	InvalidURL Kind = iota + 1
	// SerializationFailed means the payload could not be encoded as JSON.
	SerializationFailed
	// Transport means the transport failed before a response was available.
	Transport
	// MissingResponse means the transport reported neither an error nor a usable response.
	MissingResponse
	// HTTP means the server answered with status >= 400.
	HTTP
	// Decode means a success status carried a body that does not match the expected type.
	Decode
	// Dispatch means the request could not be scheduled on its execution context.
	Dispatch
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case InvalidURL:
		return "InvalidURL"
	case SerializationFailed:
		return "SerializationFailed"
	case Transport:
		return "Transport"
	case MissingResponse:
		return "MissingResponse"
	case HTTP:
		return "HTTP"
	case Decode:
		return "Decode"
	case Dispatch:
		return "Dispatch"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Sentinels matched by errors.Is against an *Error of the same Kind.
var (
	ErrInvalidURL          = errors.New("invalid url")
	ErrSerializationFailed = errors.New("payload serialization failed")
	ErrTransport           = errors.New("transport failure")
	ErrMissingResponse     = errors.New("missing response")
	ErrHTTPStatus          = errors.New("http error status")
	ErrDecode              = errors.New("response decode failed")
	ErrDispatch            = errors.New("dispatch failed")
)

var sentinels = map[Kind]error{
	InvalidURL:          ErrInvalidURL,
	SerializationFailed: ErrSerializationFailed,
	Transport:           ErrTransport,
	MissingResponse:     ErrMissingResponse,
	HTTP:                ErrHTTPStatus,
	Decode:              ErrDecode,
	Dispatch:            ErrDispatch,
}

// APIError is the error-shaped body returned by the backend for status >= 400.
type APIError struct {
	Message  string `json:"message,omitempty"`
	CodeUser string `json:"codeUser,omitempty"`
	CodeAPI  string `json:"codeApi,omitempty"`
}

// Error is the single failure type delivered for a request.
type Error struct {
	Kind       Kind
	Code       string    // user-facing code, GenericCode unless the server sent codeUser
	StatusCode int       // HTTP status code (0 when no response was received)
	API        *APIError // decoded error body, nil when absent or unparseable
	Err        error     // underlying cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s [%s]", e.Code, e.Kind)
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" HTTP %d", e.StatusCode)
	}
	if e.API != nil && e.API.Message != "" {
		msg += ": " + e.API.Message
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// CodeOf returns the user-facing code of err, or GenericCode when err is not
// an *Error. It returns "" for a nil error.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return GenericCode
}
