package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// RequestIDHeader carries the request id back to the client.
const RequestIDHeader = "X-Request-Id"

// RequestLogger attaches l to every request, tags it with the client address
// and a request id, and writes one access line per request. Server errors are
// logged as warnings.
func RequestLogger(l zerolog.Logger, next http.Handler) http.Handler {
	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		if status == 0 {
			status = http.StatusOK
		}

		level := zerolog.InfoLevel
		if status >= http.StatusInternalServerError {
			level = zerolog.WarnLevel
		}

		hlog.FromRequest(r).WithLevel(level).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", size).
			Dur("duration", duration).
			Msg("Request processed")
	})

	h := access(next)
	h = hlog.RequestIDHandler("req_id", RequestIDHeader)(h)
	h = hlog.RemoteAddrHandler("ip")(h)
	return hlog.NewHandler(l)(h)
}
