package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	apierrors "github.com/JonaRivera-RB/APIJR-NETWORK/client/internal/errors"
	"github.com/JonaRivera-RB/APIJR-NETWORK/client/internal/request"
)

// Doer sends one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Result is the single outcome of a request. Value is nil on failure and on
// a success without data (empty body); Err is nil on success.
type Result[T any] struct {
	Value *T
	Err   error
}

// OK reports whether the request succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Ack is the generic success body {"response": true}. Decoding fails when
// the "response" field is absent.
type Ack struct {
	Response bool `json:"response"`
}

// UnmarshalJSON requires the response field.
func (a *Ack) UnmarshalJSON(b []byte) error {
	var raw struct {
		Response *bool `json:"response"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Response == nil {
		return fmt.Errorf("ack: missing \"response\" field")
	}
	a.Response = *raw.Response
	return nil
}

// Engine performs request/response cycles against one path of an Endpoint
// and decodes success bodies into T. An Engine holds no mutable state after
// New and may be used from many goroutines.
type Engine[T any] struct {
	endpoint Endpoint
	path     string
	settings
}

// New constructs an Engine for path on endpoint. The endpoint is not
// validated here: an unusable endpoint is reported by each request as an
// InvalidURL failure.
func New[T any](endpoint Endpoint, path string, opts ...Option) (*Engine[T], error) {
	s := settings{
		method: MethodGet,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: log.Logger,
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true), WithDebugMode(true))
	}

	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return nil, fmt.Errorf("apijr: %w", err)
		}
	}
	if s.doer == nil {
		s.doer = s.http
	}
	if s.background == nil {
		s.background = BackgroundQueue()
	}
	if s.callbacks == nil {
		s.callbacks = MainQueue()
	}

	return &Engine[T]{endpoint: endpoint, path: path, settings: s}, nil
}

// Endpoint returns the endpoint the engine was built against.
func (e *Engine[T]) Endpoint() Endpoint { return e.endpoint }

// Path returns the path relative to the endpoint's environment prefix.
func (e *Engine[T]) Path() string { return e.path }

// Method returns the HTTP verb.
func (e *Engine[T]) Method() Method { return e.method }

// Do performs one request/response cycle on the calling goroutine. payload is
// JSON-encoded for POST and PUT and ignored for GET.
//
// On failure the error is an *Error; on success the value may be nil when
// the server sent no data.
func (e *Engine[T]) Do(ctx context.Context, payload any) (*T, error) {
	res := e.cycle(ctx, payload)
	return res.Value, res.Err
}

// Request performs one cycle on the background queue and calls completion
// exactly once, on the callback queue. A nil completion discards the result.
func (e *Engine[T]) Request(ctx context.Context, payload any, completion func(Result[T])) {
	e.start(ctx, payload, func(key string, res Result[T]) {
		if completion == nil {
			return
		}
		err := e.callbacks.Dispatch(context.WithoutCancel(ctx), key, func() { completion(res) })
		if err != nil {
			e.logger.Warn().Err(err).Str("request_id", key).Msg("callback queue refused result, delivering inline")
			completion(res)
		}
	})
}

// Go is Request in future form: the channel yields exactly one Result and is
// then closed. The result is sent from the background queue directly, so
// receiving from the channel inside a completion is safe.
func (e *Engine[T]) Go(ctx context.Context, payload any) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	e.start(ctx, payload, func(_ string, r Result[T]) {
		ch <- r
		close(ch)
	})
	return ch
}

// start runs one cycle on the background queue and hands its result to
// deliver exactly once, including when the queue refuses the work.
func (e *Engine[T]) start(ctx context.Context, payload any, deliver func(key string, res Result[T])) {
	key := uuid.NewString()

	var once sync.Once
	finish := func(res Result[T]) {
		once.Do(func() { deliver(key, res) })
	}

	err := e.background.Dispatch(ctx, key, func() {
		finish(e.cycleWithID(ctx, key, payload))
	})
	if err != nil {
		res := Result[T]{Err: apierrors.NewDispatchError(err)}
		observe(e.method, res.Err, 0)
		finish(res)
	}
}

func (e *Engine[T]) cycle(ctx context.Context, payload any) Result[T] {
	return e.cycleWithID(ctx, uuid.NewString(), payload)
}

func (e *Engine[T]) cycleWithID(ctx context.Context, id string, payload any) Result[T] {
	logger := e.logger.With().
		Str("request_id", id).
		Str("method", string(e.method)).
		Str("path", e.path).
		Logger()
	start := time.Now()

	req, err := request.Build(ctx, request.Params{
		Scheme:      e.endpoint.scheme,
		Host:        e.endpoint.host,
		Environment: e.endpoint.environment,
		Path:        e.path,
		Method:      e.method,
		Query:       e.query,
		Headers:     e.endpoint.headers,
		Payload:     payload,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("request build failed")
		observe(e.method, err, time.Since(start))
		return Result[T]{Err: err}
	}

	out := e.send(req)
	if e.debug && out.err == nil {
		logBody(logger, out.status, out.body)
	}
	res := e.classify(out, logger)
	observe(e.method, res.Err, time.Since(start))
	return res
}

// outcome is what the transport produced: either err, or a response with
// its fully read body. responded is false when neither was available.
type outcome struct {
	status    int
	body      []byte
	err       error
	responded bool
}

func (e *Engine[T]) send(req *http.Request) outcome {
	resp, err := e.doer.Do(req)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return outcome{err: err}
	}
	if resp == nil || resp.Body == nil {
		return outcome{}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return outcome{err: fmt.Errorf("read response body: %w", err)}
	}
	return outcome{status: resp.StatusCode, body: body, responded: true}
}

func (e *Engine[T]) classify(out outcome, logger zerolog.Logger) Result[T] {
	switch {
	case out.err != nil:
		logger.Debug().Err(out.err).Msg("transport failure")
		return Result[T]{Err: apierrors.NewTransportError(out.err)}

	case !out.responded:
		logger.Warn().Msg("transport returned no response and no error")
		return Result[T]{Err: apierrors.NewMissingResponse()}

	case out.status >= http.StatusBadRequest:
		var body apierrors.APIError
		api := &body
		if err := json.Unmarshal(out.body, api); err != nil {
			api = nil
		}
		logger.Debug().Int("status_code", out.status).Msg("http error status")
		return Result[T]{Err: apierrors.NewHTTPError(out.status, api)}
	}

	trimmed := bytes.TrimSpace(out.body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Result[T]{}
	}

	var v T
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if e.strict {
		dec.DisallowUnknownFields()
	}
	err := dec.Decode(&v)
	if err == nil {
		if _, terr := dec.Token(); terr != io.EOF {
			err = fmt.Errorf("unexpected data after top-level value")
		}
	}
	if err != nil {
		if e.lenient {
			logger.Debug().Err(err).Int("status_code", out.status).Msg("success body does not match expected type, delivering no value")
			return Result[T]{}
		}
		return Result[T]{Err: apierrors.NewDecodeError(out.status, err)}
	}
	return Result[T]{Value: &v}
}
