// Package request assembles outgoing HTTP requests from an endpoint
// description. Building is pure: the same Params always yields the same request.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	apierrors "github.com/JonaRivera-RB/APIJR-NETWORK/client/internal/errors"
)

// Method is the HTTP verb of a request.
type Method string

const (
	Get  Method = http.MethodGet
	Post Method = http.MethodPost
	Put  Method = http.MethodPut
)

// Valid reports whether m is one of the supported verbs.
func (m Method) Valid() bool {
	switch m {
	case Get, Post, Put:
		return true
	default:
		return false
	}
}

// CarriesBody reports whether a payload is attached for m.
func (m Method) CarriesBody() bool { return m == Post || m == Put }

// QueryItem is a single name=value query parameter. Slices of QueryItem keep
// the caller's order, which url.Values would not.
type QueryItem struct {
	Name  string
	Value string
}

// Params is everything needed to build one request.
type Params struct {
	Scheme      string
	Host        string
	Environment string // prepended verbatim to Path
	Path        string
	Method      Method
	Query       []QueryItem
	Headers     map[string]string
	Payload     any // JSON-encoded when Method carries a body and Payload is non-nil
}

// URL composes scheme://host/Environment+Path?Query.
func URL(s Params) (*url.URL, error) {
	if s.Scheme == "" || s.Host == "" {
		return nil, apierrors.NewBuildError(apierrors.InvalidURL, fmt.Errorf("scheme and host are required (scheme=%q host=%q)", s.Scheme, s.Host))
	}
	if strings.ContainsAny(s.Host, "/?#@ ") {
		return nil, apierrors.NewBuildError(apierrors.InvalidURL, fmt.Errorf("invalid host %q", s.Host))
	}
	u := &url.URL{
		Scheme:   s.Scheme,
		Host:     s.Host,
		Path:     s.Environment + s.Path,
		RawQuery: encodeQuery(s.Query),
	}
	// Round-trip through the parser so malformed schemes or ports are rejected
	// here rather than by the transport.
	parsed, err := url.Parse(u.String())
	if err != nil {
		return nil, apierrors.NewBuildError(apierrors.InvalidURL, err)
	}
	if !strings.EqualFold(parsed.Scheme, s.Scheme) || parsed.Host != s.Host {
		return nil, apierrors.NewBuildError(apierrors.InvalidURL, fmt.Errorf("url %q does not preserve scheme and host", u.String()))
	}
	return u, nil
}

// Build returns a fresh request for s bound to ctx.
func Build(ctx context.Context, s Params) (*http.Request, error) {
	if !s.Method.Valid() {
		return nil, apierrors.NewBuildError(apierrors.InvalidURL, fmt.Errorf("unsupported method %q", s.Method))
	}
	u, err := URL(s)
	if err != nil {
		return nil, err
	}

	var (
		body io.Reader
		raw  []byte
	)
	if s.Method.CarriesBody() && !isNil(s.Payload) {
		raw, err = json.Marshal(s.Payload)
		if err != nil {
			return nil, apierrors.NewBuildError(apierrors.SerializationFailed, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, string(s.Method), u.String(), body)
	if err != nil {
		return nil, apierrors.NewBuildError(apierrors.InvalidURL, err)
	}
	// Endpoint headers are copied as given, without canonicalising keys.
	// net/http ignores a Host header and sends req.Host instead.
	for k, v := range s.Headers {
		if strings.EqualFold(k, "Host") {
			req.Host = v
			continue
		}
		req.Header[k] = []string{v}
	}
	if raw != nil && !hasHeader(req.Header, "Content-Type") {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func encodeQuery(items []QueryItem) string {
	if len(items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, url.QueryEscape(it.Name)+"="+url.QueryEscape(it.Value))
	}
	return strings.Join(parts, "&")
}

func hasHeader(h http.Header, name string) bool {
	for k := range h {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// isNil treats typed nils (nil map, nil pointer) like an absent payload.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
