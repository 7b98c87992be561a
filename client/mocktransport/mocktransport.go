// Package mocktransport answers HTTP requests with canned outcomes instead
// of performing network I/O.
//
// A Transport is an http.RoundTripper owned by the test that created it, so
// tests running in parallel each install their own handler:
//
//	mt := mocktransport.New()
//	mt.SetHandler(func(r *http.Request) (int, []byte, error) {
//		return http.StatusOK, []byte(`{"response": true}`), nil
//	})
//	eng, _ := client.New[client.Ack](ep, "/ping", client.WithHTTPClient(mt.Client()))
package mocktransport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// ErrNoHandlerRegistered is returned by RoundTrip when no handler is set.
var ErrNoHandlerRegistered = errors.New("mocktransport: no handler registered")

// Handler maps a request to a status and body, or to a transport error.
// When err is non-nil, status and body are ignored.
type Handler func(req *http.Request) (status int, body []byte, err error)

// Recorded is a snapshot of a request seen by the transport.
type Recorded struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Transport is a mock http.RoundTripper. The zero value is ready to use and
// fails every request with ErrNoHandlerRegistered until a handler is set.
type Transport struct {
	mu       sync.Mutex
	handler  Handler
	requests []Recorded
}

// New returns a Transport without a handler.
func New() *Transport { return &Transport{} }

// NewWithHandler returns a Transport answering with h.
func NewWithHandler(h Handler) *Transport {
	t := New()
	t.SetHandler(h)
	return t
}

// SetHandler installs h, replacing any previous handler. A nil h removes it.
func (t *Transport) SetHandler(h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = h
}

// Client returns an *http.Client whose every request goes through t.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// Requests returns the requests seen so far, oldest first.
func (t *Transport) Requests() []Recorded {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Recorded(nil), t.requests...)
}

// Calls returns how many requests reached the transport.
func (t *Transport) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}

// RoundTrip records req and answers it with the registered handler.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var raw []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("mocktransport: read request body: %w", err)
		}
		raw = b
	}

	// Handlers get their own copy with a re-readable body.
	seen := req.Clone(req.Context())
	if raw != nil {
		seen.Body = io.NopCloser(bytes.NewReader(raw))
	}

	t.mu.Lock()
	t.requests = append(t.requests, Recorded{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   raw,
	})
	h := t.handler
	t.mu.Unlock()

	if h == nil {
		return nil, ErrNoHandlerRegistered
	}

	status, body, err := h(seen)
	if err != nil {
		return nil, err
	}
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": []string{"application/json"}},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

// Respond returns a handler that always answers with status and body.
func Respond(status int, body string) Handler {
	return func(*http.Request) (int, []byte, error) {
		return status, []byte(body), nil
	}
}

// JSON returns a handler answering with status and v encoded as JSON.
func JSON(status int, v any) Handler {
	b, err := json.Marshal(v)
	return func(*http.Request) (int, []byte, error) {
		if err != nil {
			return 0, nil, fmt.Errorf("mocktransport: encode canned body: %w", err)
		}
		return status, b, nil
	}
}

// Fail returns a handler that fails every request with err.
func Fail(err error) Handler {
	return func(*http.Request) (int, []byte, error) {
		return 0, nil, err
	}
}
