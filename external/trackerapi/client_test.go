package trackerapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/HeXi037/cross-sport-tracker/internal/platform/logging"
	"github.com/HeXi037/cross-sport-tracker/internal/usecase"
)

func newTestClient(baseURL string, maxRetries int) *Client {
	return NewClient(ClientConfig{
		BaseURL:    baseURL,
		MaxRetries: maxRetries,
		Logger:     logging.NewNop(),
	})
}

func TestListMatches(t *testing.T) {
	t.Parallel()

	t.Run("parses envelope body and header cursor", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v0/matches" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("sport"); got != "padel" {
				t.Errorf("unexpected sport query: %q", got)
			}
			w.Header().Set(headerLimit, "25")
			w.Header().Set(headerHasMore, "true")
			w.Header().Set(headerNextOffset, "25")
			_, _ = w.Write([]byte(`{"items":[{"id":"m1","status":"live"},{"id":"m2"}]}`))
		}))
		defer srv.Close()

		client := newTestClient(srv.URL, 0)
		page, err := client.ListMatches(context.Background(), usecase.MatchQuery{Sport: "padel", Limit: 10})
		if err != nil {
			t.Fatalf("list matches failed: %v", err)
		}

		if len(page.Items) != 2 {
			t.Fatalf("unexpected item count: %d", len(page.Items))
		}
		if page.Items[0].Status != "LIVE" {
			t.Fatalf("status not normalized: %s", page.Items[0].Status)
		}
		if page.Items[1].Status != "SCHEDULED" {
			t.Fatalf("missing status not defaulted: %s", page.Items[1].Status)
		}
		if page.Cursor.Limit != 25 || !page.Cursor.HasMore {
			t.Fatalf("unexpected cursor: %+v", page.Cursor)
		}
		if page.Cursor.NextOffset == nil || *page.Cursor.NextOffset != 25 {
			t.Fatalf("unexpected next offset: %v", page.Cursor.NextOffset)
		}
	})

	t.Run("accepts a bare array body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"id":"m1"}]`))
		}))
		defer srv.Close()

		client := newTestClient(srv.URL, 0)
		page, err := client.ListMatches(context.Background(), usecase.MatchQuery{})
		if err != nil {
			t.Fatalf("list matches failed: %v", err)
		}
		if len(page.Items) != 1 || page.Items[0].ID != "m1" {
			t.Fatalf("unexpected items: %+v", page.Items)
		}
		if page.Cursor.HasMore || page.Cursor.NextOffset != nil {
			t.Fatalf("cursor should stay empty without headers: %+v", page.Cursor)
		}
	})

	t.Run("retries transient failures", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if hits.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		client := newTestClient(srv.URL, 1)
		if _, err := client.ListMatches(context.Background(), usecase.MatchQuery{}); err != nil {
			t.Fatalf("expected retry to recover: %v", err)
		}
		if got := hits.Load(); got != 2 {
			t.Fatalf("unexpected attempt count: %d", got)
		}
	})

	t.Run("auth failures map to forbidden and skip retries", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		client := newTestClient(srv.URL, 2)
		_, err := client.ListMatches(context.Background(), usecase.MatchQuery{})
		if !errors.Is(err, usecase.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if got := hits.Load(); got != 1 {
			t.Fatalf("auth failure must not retry, attempts=%d", got)
		}
	})

	t.Run("missing resources map to not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := newTestClient(srv.URL, 0)
		if _, err := client.GetTournament(context.Background(), "missing"); !errors.Is(err, usecase.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestClientCircuitBreaker(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL: srv.URL,
		Logger:  logging.NewNop(),
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	if _, err := client.ListPlayers(context.Background()); err == nil {
		t.Fatalf("expected upstream failure")
	}

	_, err := client.ListSports(context.Background())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable once the circuit opens, got %v", err)
	}
}

func TestCircuitBreakerConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := CircuitBreakerConfig{Enabled: true}.withDefaults()
	if cfg.FailureThreshold != 5 || cfg.OpenTimeout != 15*time.Second || cfg.HalfOpenMaxReq != 2 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	tuned := CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute, HalfOpenMaxReq: 3}.withDefaults()
	if tuned.FailureThreshold != 1 || tuned.OpenTimeout != time.Minute || tuned.HalfOpenMaxReq != 3 {
		t.Fatalf("explicit values overwritten: %+v", tuned)
	}
}

func TestSanitizeSensitiveText(t *testing.T) {
	t.Parallel()

	got := sanitizeSensitiveText(`Get "http://host?token=secret-token": refused`, "secret-token")
	if got != `Get "http://host?token=[redacted]": refused` {
		t.Fatalf("token not redacted: %s", got)
	}
	if got := sanitizeSensitiveText("plain error", ""); got != "plain error" {
		t.Fatalf("empty token must not rewrite text: %s", got)
	}
}

func TestCursorFromHeaders(t *testing.T) {
	t.Parallel()

	t.Run("requested limit survives without headers", func(t *testing.T) {
		cursor := cursorFromHeaders(http.Header{}, 15)
		if cursor.Limit != 15 || cursor.HasMore || cursor.NextOffset != nil {
			t.Fatalf("unexpected cursor: %+v", cursor)
		}
	})

	t.Run("numeric has-more flag", func(t *testing.T) {
		header := http.Header{}
		header.Set(headerHasMore, "1")
		if cursor := cursorFromHeaders(header, 0); !cursor.HasMore {
			t.Fatalf("expected hasMore=true for %q", "1")
		}
	})

	t.Run("malformed values are ignored", func(t *testing.T) {
		header := http.Header{}
		header.Set(headerLimit, "lots")
		header.Set(headerNextOffset, "-3")
		cursor := cursorFromHeaders(header, 10)
		if cursor.Limit != 10 || cursor.NextOffset != nil {
			t.Fatalf("unexpected cursor: %+v", cursor)
		}
	})
}
