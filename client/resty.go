package client

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// restyDoer sends requests through a resty.Client, for callers that already
// configure retries, proxies or TLS on resty.
type restyDoer struct {
	client *resty.Client
}

// NewRestyDoer adapts c to Doer. A nil c gets resty.New().
func NewRestyDoer(c *resty.Client) Doer {
	if c == nil {
		c = resty.New()
	}
	return &restyDoer{client: c}
}

func (d *restyDoer) Do(req *http.Request) (*http.Response, error) {
	r := d.client.R().SetContext(req.Context())
	for k, vs := range req.Header {
		r.Header[k] = append([]string(nil), vs...)
	}
	if req.Body != nil && req.Body != http.NoBody {
		raw, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		r.SetBody(raw)
	}

	resp, err := r.Execute(req.Method, req.URL.String())
	if err != nil {
		return nil, err
	}

	body := resp.Body()
	return &http.Response{
		Status:        resp.Status(),
		StatusCode:    resp.StatusCode(),
		Proto:         resp.Proto(),
		Header:        resp.Header(),
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}
