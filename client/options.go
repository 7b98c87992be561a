package client

// This file defines functional options that configure an Engine during
// construction. Keeping them in a standalone file makes it easy to discover
// all available knobs at a glance.

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// settings is the non-generic part of an Engine that options mutate.
type settings struct {
	method  Method
	query   []QueryItem
	http    *http.Client
	doer    Doer
	debug   bool
	lenient bool
	strict  bool
	logger  zerolog.Logger

	background Queue
	callbacks  Queue
}

// Option configures an Engine during construction in New.
//
// Options are applied in order. Transport-related options (WithHTTPClient,
// WithHTTPTimeout, WithDebugLogging) act on the engine's *http.Client and are
// ignored for sending when WithDoer supplies a different transport.
type Option func(*settings) error

// WithMethod sets the HTTP verb. Defaults to GET.
func WithMethod(m Method) Option {
	return func(s *settings) error {
		if !m.Valid() {
			return fmt.Errorf("unsupported method %q", m)
		}
		s.method = m
		return nil
	}
}

// WithQuery sets the query items, sent in the given order.
func WithQuery(items ...QueryItem) Option {
	return func(s *settings) error {
		s.query = append([]QueryItem(nil), items...)
		return nil
	}
}

// WithHTTPClient injects the *http.Client used to send requests. Tests pass
// mocktransport.Transport's client here.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) error {
		if hc == nil {
			return fmt.Errorf("nil http client")
		}
		s.http = hc
		return nil
	}
}

// WithDoer injects an arbitrary transport, e.g. NewRestyDoer.
func WithDoer(d Doer) Option {
	return func(s *settings) error {
		if d == nil {
			return fmt.Errorf("nil doer")
		}
		s.doer = d
		return nil
	}
}

// WithHTTPTimeout bounds the total time of a single request (connection,
// TLS handshake, redirects and reading the body). Per-call context deadlines
// apply as well. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(s *settings) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		hc := *s.http
		hc.Timeout = d
		s.http = &hc
		return nil
	}
}

// WithDebugMode logs every raw response body (pretty JSON when possible).
// Logging never changes the delivered result.
func WithDebugMode(enabled bool) Option {
	return func(s *settings) error {
		s.debug = enabled
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// dumped to the log when enabled is true.
//
// Do not enable this option in production environments as it increases
// verbosity and logs headers and bodies.
func WithDebugLogging(enabled bool) Option {
	return func(s *settings) error {
		if !enabled {
			return nil
		}
		if _, ok := s.http.Transport.(*debugTransport); ok {
			return nil
		}
		transport := s.http.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		hc := *s.http
		hc.Transport = &debugTransport{base: transport}
		s.http = &hc
		return nil
	}
}

// WithLenientDecoding delivers a success without value, instead of a Decode
// failure, when a success body does not match the expected type.
func WithLenientDecoding() Option {
	return func(s *settings) error {
		s.lenient = true
		return nil
	}
}

// WithStrictDecoding rejects success bodies containing fields unknown to the
// expected type.
func WithStrictDecoding() Option {
	return func(s *settings) error {
		s.strict = true
		return nil
	}
}

// WithLogger replaces the global zerolog logger for this engine.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) error {
		s.logger = l
		return nil
	}
}

// WithBackgroundQueue sets where request cycles run. Defaults to BackgroundQueue().
func WithBackgroundQueue(q Queue) Option {
	return func(s *settings) error {
		if q == nil {
			return fmt.Errorf("nil background queue")
		}
		s.background = q
		return nil
	}
}

// WithCallbackQueue sets where completions run. Defaults to MainQueue().
func WithCallbackQueue(q Queue) Option {
	return func(s *settings) error {
		if q == nil {
			return fmt.Errorf("nil callback queue")
		}
		s.callbacks = q
		return nil
	}
}
