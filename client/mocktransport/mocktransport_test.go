package mocktransport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
)

func newRequest(t *testing.T, method, body string) *http.Request {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, "https://api.example.com/dev/ping?a=1", r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("X-Test", "1")
	return req
}

func TestRoundTrip_NoHandlerRegistered(t *testing.T) {
	t.Parallel()
	mt := New()
	_, err := mt.RoundTrip(newRequest(t, http.MethodGet, ""))
	if !errors.Is(err, ErrNoHandlerRegistered) {
		t.Fatalf("expected ErrNoHandlerRegistered, got %v", err)
	}

	// Through an http.Client the error is wrapped but still matchable.
	_, err = mt.Client().Do(newRequest(t, http.MethodGet, ""))
	if !errors.Is(err, ErrNoHandlerRegistered) {
		t.Fatalf("expected wrapped ErrNoHandlerRegistered, got %v", err)
	}
}

func TestRoundTrip_StatusAndBody(t *testing.T) {
	t.Parallel()
	mt := NewWithHandler(Respond(http.StatusCreated, `{"ok":true}`))
	resp, err := mt.Client().Do(newRequest(t, http.MethodGet, ""))
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated || string(b) != `{"ok":true}` {
		t.Fatalf("got %d %s", resp.StatusCode, b)
	}
}

func TestRoundTrip_HandlerErrorIsTransportFailure(t *testing.T) {
	t.Parallel()
	boom := errors.New("connection reset")
	mt := NewWithHandler(Fail(boom))
	resp, err := mt.RoundTrip(newRequest(t, http.MethodGet, ""))
	if resp != nil || !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got resp=%v err=%v", resp, err)
	}
}

func TestRoundTrip_HandlerSeesBodyAndRecords(t *testing.T) {
	t.Parallel()
	var seen string
	mt := NewWithHandler(func(r *http.Request) (int, []byte, error) {
		b, _ := io.ReadAll(r.Body)
		seen = string(b)
		return http.StatusOK, nil, nil
	})
	if _, err := mt.RoundTrip(newRequest(t, http.MethodPost, `{"a":1}`)); err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	if seen != `{"a":1}` {
		t.Fatalf("handler saw body %q", seen)
	}
	recs := mt.Requests()
	if len(recs) != 1 || mt.Calls() != 1 {
		t.Fatalf("recorded %d requests", len(recs))
	}
	r := recs[0]
	if r.Method != http.MethodPost || r.URL != "https://api.example.com/dev/ping?a=1" || string(r.Body) != `{"a":1}` || r.Header.Get("X-Test") != "1" {
		t.Fatalf("unexpected record %+v", r)
	}
}

func TestSetHandler_Replaces(t *testing.T) {
	t.Parallel()
	mt := NewWithHandler(Respond(http.StatusOK, "first"))
	mt.SetHandler(Respond(http.StatusAccepted, "second"))
	resp, err := mt.RoundTrip(newRequest(t, http.MethodGet, ""))
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusAccepted || string(b) != "second" {
		t.Fatalf("got %d %s", resp.StatusCode, b)
	}

	mt.SetHandler(nil)
	if _, err := mt.RoundTrip(newRequest(t, http.MethodGet, "")); !errors.Is(err, ErrNoHandlerRegistered) {
		t.Fatalf("expected ErrNoHandlerRegistered after removal, got %v", err)
	}
}

func TestJSONHandler(t *testing.T) {
	t.Parallel()
	mt := NewWithHandler(JSON(http.StatusNotFound, map[string]string{"codeUser": "U404"}))
	resp, err := mt.RoundTrip(newRequest(t, http.MethodGet, ""))
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusNotFound || string(b) != `{"codeUser":"U404"}` {
		t.Fatalf("got %d %s", resp.StatusCode, b)
	}

	bad := NewWithHandler(JSON(http.StatusOK, make(chan int)))
	if _, err := bad.RoundTrip(newRequest(t, http.MethodGet, "")); err == nil {
		t.Fatal("expected encode error")
	}
}

func TestZeroStatusDefaultsToOK(t *testing.T) {
	t.Parallel()
	mt := NewWithHandler(Respond(0, ""))
	resp, err := mt.RoundTrip(newRequest(t, http.MethodGet, ""))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("got resp=%v err=%v", resp, err)
	}
}

// Independent transports never see each other's handlers.
func TestIndependentTransportsConcurrently(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(status int) {
			defer wg.Done()
			mt := NewWithHandler(Respond(status, ""))
			resp, err := mt.RoundTrip(newRequest(t, http.MethodGet, ""))
			if err != nil || resp.StatusCode != status {
				t.Errorf("status %d: got resp=%v err=%v", status, resp, err)
			}
		}(200 + i)
	}
	wg.Wait()
}
