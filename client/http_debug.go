package client

import (
	"encoding/json"
	"net/http"
	"net/http/httputil"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// debugTransport dumps every request and response to the debug log.
//
// Enable it with WithDebugLogging(true), or set APIJR_DEBUG=true or
// DEBUG=true to have New install it automatically.
//
// Security considerations:
//   - Logs full request/response bodies including headers such as Authorization
//   - Only enable in development/staging environments
type debugTransport struct{ base http.RoundTripper }

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if reqDump, err := httputil.DumpRequestOut(req, true); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(reqDump)).Msg("HTTP request")
	}

	resp, err := dt.base.RoundTrip(req)
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	if respDump, err := httputil.DumpResponse(resp, true); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
	}
	return resp, nil
}

// debugLoggingRequested reports whether APIJR_DEBUG or DEBUG is "true".
func debugLoggingRequested() bool {
	return os.Getenv("APIJR_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}

// logBody logs a raw response body in debug mode. JSON bodies are logged as
// structured data, anything else as a string; nothing here can fail the request.
func logBody(logger zerolog.Logger, status int, body []byte) {
	if len(body) == 0 {
		logger.Debug().Int("status_code", status).Msg("response body empty")
		return
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		logger.Debug().Int("status_code", status).Str("body", string(body)).Msg("response body (not JSON)")
		return
	}
	logger.Debug().Int("status_code", status).Interface("json", doc).Msg("response body")
}
