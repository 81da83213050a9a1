package middleware

import (
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Query parameters whose values must never reach the logs.
var sensitiveQueryParams = map[string]struct{}{
	"access_key": {},
	"api_key":    {},
	"token":      {},
	"key":        {},
}

// Logger emits one structured log line per request, tagged with the request
// id and with credential-bearing query parameters redacted.
func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			evt := l.Info()
			if rw.status >= http.StatusInternalServerError {
				evt = l.Error()
			} else if rw.status >= http.StatusBadRequest {
				evt = l.Warn()
			}
			evt.
				Str("request_id", RequestIDFromContext(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", sanitizeQuery(r.URL.Query())).
				Str("remote", r.RemoteAddr).
				Int("status", rw.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

func sanitizeQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}
	clone := url.Values{}
	for key, vals := range values {
		if _, sensitive := sensitiveQueryParams[key]; sensitive {
			clone.Set(key, "***REDACTED***")
			continue
		}
		for _, v := range vals {
			clone.Add(key, v)
		}
	}
	return clone.Encode()
}
