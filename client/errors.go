package client

import (
	"errors"

	apierrors "github.com/JonaRivera-RB/APIJR-NETWORK/client/internal/errors"
)

// GenericCode is the user-facing code used when the server provides none.
const GenericCode = apierrors.GenericCode

// Re-export shared sentinels so callers compare against a single symbol.
var (
	ErrInvalidURL          = apierrors.ErrInvalidURL
	ErrSerializationFailed = apierrors.ErrSerializationFailed
	ErrTransport           = apierrors.ErrTransport
	ErrMissingResponse     = apierrors.ErrMissingResponse
	ErrHTTPStatus          = apierrors.ErrHTTPStatus
	ErrDecode              = apierrors.ErrDecode
	ErrDispatch            = apierrors.ErrDispatch
)

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool { return apierrors.IsKind(err, k) }

// CodeOf returns the user-facing code carried by err.
func CodeOf(err error) string { return apierrors.CodeOf(err) }

// IsRecoverable reports whether re-issuing the request may succeed. The
// engine itself never retries; this is for callers that choose to.
func IsRecoverable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Recoverable()
	}
	return false
}
