package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("wildcard allows any origin", func(t *testing.T) {
		handler := CORS([]string{"*"}, next)
		req := httptest.NewRequest(http.MethodGet, "/v0/feed", nil)
		req.Header.Set("Origin", "https://anything.example")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Fatalf("unexpected allow origin: %q", got)
		}
	})

	t.Run("listed origin is echoed with vary", func(t *testing.T) {
		handler := CORS([]string{"https://app.example"}, next)
		req := httptest.NewRequest(http.MethodGet, "/v0/feed", nil)
		req.Header.Set("Origin", "https://app.example")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
			t.Fatalf("unexpected allow origin: %q", got)
		}
		if got := rec.Header().Get("Vary"); got != "Origin" {
			t.Fatalf("expected Vary: Origin, got %q", got)
		}
	})

	t.Run("unlisted origin gets no cors headers", func(t *testing.T) {
		handler := CORS([]string{"https://app.example"}, next)
		req := httptest.NewRequest(http.MethodGet, "/v0/feed", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("unexpected allow origin: %q", got)
		}
	})

	t.Run("preflight short-circuits with no content", func(t *testing.T) {
		handler := CORS([]string{"*"}, next)
		req := httptest.NewRequest(http.MethodOptions, "/v0/feed", nil)
		req.Header.Set("Origin", "https://app.example")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("unexpected preflight status: %d", rec.Code)
		}
	})

	t.Run("requests without origin pass through untouched", func(t *testing.T) {
		handler := CORS([]string{"https://app.example"}, next)
		req := httptest.NewRequest(http.MethodGet, "/v0/feed", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("unexpected allow origin: %q", got)
		}
	})
}

func TestShouldTraceRequest(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/healthz", "/readyz", "/livez", "/health", " /HEALTHZ "} {
		if shouldTraceRequest(path) {
			t.Fatalf("expected %q to be excluded from tracing", path)
		}
	}
	if !shouldTraceRequest("/v0/feed") {
		t.Fatalf("expected api paths to be traced")
	}
}
