package client

import (
	"fmt"
	"maps"

	"github.com/JonaRivera-RB/APIJR-NETWORK/client/internal/request"
)

// Endpoint describes a backend: where it lives and which headers every
// request carries. It is immutable after construction and safe to share
// between engines and goroutines.
type Endpoint struct {
	scheme      string
	host        string
	environment string
	headers     map[string]string
}

// NewEndpoint returns an Endpoint. environment is prepended verbatim to every
// request path (e.g. "/staging"). headers is copied; a "Host" entry becomes
// the request's Host rather than a header.
func NewEndpoint(scheme, host, environment string, headers map[string]string) Endpoint {
	return Endpoint{
		scheme:      scheme,
		host:        host,
		environment: environment,
		headers:     maps.Clone(headers),
	}
}

func (e Endpoint) Scheme() string      { return e.scheme }
func (e Endpoint) Host() string        { return e.host }
func (e Endpoint) Environment() string { return e.environment }

// Headers returns a copy of the default headers.
func (e Endpoint) Headers() map[string]string { return maps.Clone(e.headers) }

// Validate reports ErrInvalidURL when the endpoint cannot produce a URL.
func (e Endpoint) Validate() error {
	_, err := request.URL(request.Params{Scheme: e.scheme, Host: e.host, Environment: e.environment})
	return err
}

// String returns the base URL including the environment prefix.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s://%s%s", e.scheme, e.host, e.environment)
}
