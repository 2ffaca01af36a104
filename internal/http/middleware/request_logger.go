package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/wolfman30/meeting-assistant/pkg/logging"
)

// RequestLogger logs each request with its request ID, session ID and status.
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := requestID(r)
			w.Header().Set(RequestHeader, reqID)

			logger.Debug("request started",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", reqID,
				"remote_ip", r.RemoteAddr,
			)

			// The wrapper keeps http.Hijacker so websocket upgrades still work.
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := logger.Info
			if status >= http.StatusInternalServerError {
				level = logger.Error
			}
			level("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"request_id", reqID,
				"session_id", r.Header.Get(SessionHeader),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func requestID(r *http.Request) string {
	if id := chimw.GetReqID(r.Context()); id != "" {
		return id
	}
	if id := r.Header.Get(RequestHeader); id != "" {
		return id
	}
	return uuid.NewString()
}
