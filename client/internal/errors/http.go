package errors

import "fmt"

// NewBuildError reports a request that could not be constructed. kind must be
// InvalidURL or SerializationFailed.
func NewBuildError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Code: GenericCode, Err: err}
}

// NewTransportError reports a transport-level failure. The cause is kept for
// errors.Is/As while callers see only the generic code.
func NewTransportError(err error) *Error {
	return &Error{Kind: Transport, Code: GenericCode, Err: fmt.Errorf("transport: %w", err)}
}

// NewMissingResponse reports a transport that returned neither an error nor
// a response with a body.
func NewMissingResponse() *Error {
	return &Error{Kind: MissingResponse, Code: GenericCode, Err: ErrMissingResponse}
}

// NewHTTPError reports a status >= 400. api may be nil when the body was not
// an error document; the server's codeUser wins over the generic code.
func NewHTTPError(statusCode int, api *APIError) *Error {
	code := GenericCode
	if api != nil && api.CodeUser != "" {
		code = api.CodeUser
	}
	return &Error{
		Kind:       HTTP,
		Code:       code,
		StatusCode: statusCode,
		API:        api,
		Err:        fmt.Errorf("http status %d", statusCode),
	}
}

// NewDecodeError reports a success body that could not be decoded.
func NewDecodeError(statusCode int, err error) *Error {
	return &Error{Kind: Decode, Code: GenericCode, StatusCode: statusCode, Err: fmt.Errorf("decode: %w", err)}
}

// NewDispatchError reports a request that never reached its execution context.
func NewDispatchError(err error) *Error {
	return &Error{Kind: Dispatch, Code: GenericCode, Err: fmt.Errorf("dispatch: %w", err)}
}

// Recoverable reports whether re-issuing the same request may succeed.
//   - build and decode failures are deterministic and never recoverable
//   - transport, missing-response and dispatch failures are transient
//   - 4xx statuses are irrecoverable except 408 and 429; 5xx are recoverable
func (e *Error) Recoverable() bool {
	switch e.Kind {
	case Transport, MissingResponse, Dispatch:
		return true
	case HTTP:
		return recoverableStatus(e.StatusCode)
	default:
		return false
	}
}

func recoverableStatus(statusCode int) bool {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case 408, 429:
			return true
		default:
			return false
		}
	case statusCode >= 500 && statusCode < 600:
		return true
	default:
		return false
	}
}
