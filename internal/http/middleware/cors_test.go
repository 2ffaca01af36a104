package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	called := false
	mw := CORS([]string{"https://voice.example.com/"})
	req := httptest.NewRequest(http.MethodPost, "/process", nil)
	req.Header.Set("Origin", "https://voice.example.com")
	rec := httptest.NewRecorder()

	mw(okHandler(&called)).ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to be called")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://voice.example.com" {
		t.Fatalf("expected allow origin header, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Expose-Headers"); got != "X-Session-ID, X-Request-ID" {
		t.Fatalf("expected session header exposed, got %q", got)
	}
}

func TestCORSDeniesUnknownOrigin(t *testing.T) {
	called := false
	mw := CORS([]string{"https://voice.example.com"})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://unknown.example")
	rec := httptest.NewRecorder()

	mw(okHandler(&called)).ServeHTTP(rec, req)

	if !called {
		t.Fatalf("simple requests still reach the handler")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow origin header, got %q", got)
	}
}

func TestCORSWildcardPreflight(t *testing.T) {
	called := false
	mw := CORS([]string{"*"})
	req := httptest.NewRequest(http.MethodOptions, "/process", nil)
	req.Header.Set("Origin", "https://anything.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	mw(okHandler(&called)).ServeHTTP(rec, req)

	if called {
		t.Fatalf("preflight should not reach the handler")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://anything.example" {
		t.Fatalf("expected echoed origin, got %q", got)
	}
}

func TestCORSPreflightRejectedForUnknownOrigin(t *testing.T) {
	called := false
	mw := CORS([]string{"https://voice.example.com"})
	req := httptest.NewRequest(http.MethodOptions, "/process", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	mw(okHandler(&called)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
