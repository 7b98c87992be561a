package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewHTTPError_UsesServerCode(t *testing.T) {
	t.Parallel()
	e := NewHTTPError(404, &APIError{Message: "nf", CodeUser: "U404", CodeAPI: "A404"})
	if e.Code != "U404" {
		t.Fatalf("code = %q, want U404", e.Code)
	}
	if !strings.Contains(e.Error(), "nf") || !strings.Contains(e.Error(), "HTTP 404") {
		t.Fatalf("unexpected message %q", e.Error())
	}
}

func TestNewHTTPError_FallsBackToGenericCode(t *testing.T) {
	t.Parallel()
	if got := NewHTTPError(500, nil).Code; got != GenericCode {
		t.Fatalf("code = %q, want %q", got, GenericCode)
	}
	if got := NewHTTPError(500, &APIError{Message: "boom"}).Code; got != GenericCode {
		t.Fatalf("code = %q, want %q", got, GenericCode)
	}
}

func TestError_IsMatchesKindSentinel(t *testing.T) {
	t.Parallel()
	cases := []struct {
		err  *Error
		want error
	}{
		{NewBuildError(InvalidURL, errors.New("x")), ErrInvalidURL},
		{NewBuildError(SerializationFailed, errors.New("x")), ErrSerializationFailed},
		{NewTransportError(errors.New("x")), ErrTransport},
		{NewMissingResponse(), ErrMissingResponse},
		{NewHTTPError(400, nil), ErrHTTPStatus},
		{NewDecodeError(200, errors.New("x")), ErrDecode},
		{NewDispatchError(errors.New("x")), ErrDispatch},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("outer: %w", tc.err)
		if !errors.Is(wrapped, tc.want) {
			t.Fatalf("%s: errors.Is(%v) = false", tc.err.Kind, tc.want)
		}
		if errors.Is(wrapped, ErrDispatch) && tc.err.Kind != Dispatch {
			t.Fatalf("%s matched the dispatch sentinel", tc.err.Kind)
		}
	}
}

func TestTransportError_PreservesCause(t *testing.T) {
	t.Parallel()
	e := NewTransportError(context.DeadlineExceeded)
	if !errors.Is(e, context.DeadlineExceeded) {
		t.Fatal("expected underlying cause to be reachable")
	}
	if e.Code != GenericCode {
		t.Fatalf("code = %q", e.Code)
	}
}

func TestRecoverable(t *testing.T) {
	t.Parallel()
	cases := []struct {
		err  *Error
		want bool
	}{
		{NewBuildError(InvalidURL, nil), false},
		{NewDecodeError(200, errors.New("x")), false},
		{NewTransportError(errors.New("x")), true},
		{NewMissingResponse(), true},
		{NewDispatchError(errors.New("x")), true},
		{NewHTTPError(400, nil), false},
		{NewHTTPError(404, nil), false},
		{NewHTTPError(408, nil), true},
		{NewHTTPError(429, nil), true},
		{NewHTTPError(503, nil), true},
	}
	for _, tc := range cases {
		if got := tc.err.Recoverable(); got != tc.want {
			t.Fatalf("%v: Recoverable() = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestCodeOfAndIsKind(t *testing.T) {
	t.Parallel()
	if CodeOf(nil) != "" {
		t.Fatal("nil error should have empty code")
	}
	if CodeOf(errors.New("plain")) != GenericCode {
		t.Fatal("plain error should map to generic code")
	}
	err := fmt.Errorf("wrap: %w", NewHTTPError(404, &APIError{CodeUser: "U404"}))
	if CodeOf(err) != "U404" {
		t.Fatalf("CodeOf = %q", CodeOf(err))
	}
	if !IsKind(err, HTTP) || IsKind(err, Decode) {
		t.Fatal("IsKind mismatch")
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()
	if Decode.String() != "Decode" {
		t.Fatalf("got %q", Decode.String())
	}
	if Kind(99).String() != "Unknown(99)" {
		t.Fatalf("got %q", Kind(99).String())
	}
}
