package client

import (
	apierrors "github.com/JonaRivera-RB/APIJR-NETWORK/client/internal/errors"
	"github.com/JonaRivera-RB/APIJR-NETWORK/client/internal/request"
)

// Public type aliases so SDK consumers can import only the client package.
type (
	Method    = request.Method
	QueryItem = request.QueryItem

	Error    = apierrors.Error
	APIError = apierrors.APIError
	Kind     = apierrors.Kind
)

const (
	MethodGet  = request.Get
	MethodPost = request.Post
	MethodPut  = request.Put
)

const (
	KindInvalidURL          = apierrors.InvalidURL
	KindSerializationFailed = apierrors.SerializationFailed
	KindTransport           = apierrors.Transport
	KindMissingResponse     = apierrors.MissingResponse
	KindHTTP                = apierrors.HTTP
	KindDecode              = apierrors.Decode
	KindDispatch            = apierrors.Dispatch
)

// Query builds an ordered query from alternating name, value pairs.
// A trailing name without a value gets an empty value.
func Query(pairs ...string) []QueryItem {
	items := make([]QueryItem, 0, (len(pairs)+1)/2)
	for i := 0; i < len(pairs); i += 2 {
		it := QueryItem{Name: pairs[i]}
		if i+1 < len(pairs) {
			it.Value = pairs[i+1]
		}
		items = append(items, it)
	}
	return items
}
