package middleware

import (
	"net/http"
	"strings"
)

// Headers voice clients send and read on every turn.
const (
	SessionHeader = "X-Session-ID"
	RequestHeader = "X-Request-ID"
)

var (
	corsAllowedHeaders = strings.Join([]string{"Content-Type", SessionHeader, RequestHeader}, ", ")
	corsExposedHeaders = strings.Join([]string{SessionHeader, RequestHeader}, ", ")
	corsAllowedMethods = "GET, POST, DELETE, OPTIONS"
)

// CORS allows browser voice clients from allowedOrigins. "*" admits any
// origin; the caller's Origin is echoed back either way.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAny := false
	allow := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		switch origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin {
		case "":
		case "*":
			allowAny = true
		default:
			allow[origin] = struct{}{}
		}
	}

	permitted := func(origin string) bool {
		if origin == "" {
			return false
		}
		if allowAny {
			return true
		}
		_, ok := allow[origin]
		return ok
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			ok := permitted(origin)
			if ok {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
				h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
				h.Set("Access-Control-Expose-Headers", corsExposedHeaders)
				h.Set("Access-Control-Max-Age", "600")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if !ok {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
