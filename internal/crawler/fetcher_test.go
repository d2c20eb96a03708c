package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestFetcher(t *testing.T, opts ...FetcherOption) *Fetcher {
	t.Helper()
	client := &http.Client{Timeout: 5 * time.Second}
	limiter := rate.NewLimiter(rate.Inf, 1)
	return NewFetcher(client, limiter, opts...)
}

// TestFetcherFetch tests basic fetching behavior.
func TestFetcherFetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body and content type", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html>hello</html>"))
		}))
		defer server.Close()

		f := newTestFetcher(t)
		result, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if string(result.Body) != "<html>hello</html>" {
			t.Errorf("unexpected body %q", result.Body)
		}
		if !strings.Contains(result.ContentType, "text/html") {
			t.Errorf("unexpected content type %q", result.ContentType)
		}
		if result.StatusCode != http.StatusOK {
			t.Errorf("unexpected status %d", result.StatusCode)
		}
	})

	t.Run("sends user agent and custom headers", func(t *testing.T) {
		t.Parallel()

		var gotUA, gotAuth, gotCookie string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotAuth = r.Header.Get("Authorization")
			gotCookie = r.Header.Get("Cookie")
		}))
		defer server.Close()

		f := newTestFetcher(t,
			WithUserAgent("docscrape-test/1.0"),
			WithHeaders(map[string]string{"Authorization": "Bearer abc"}),
			WithCookie("session=xyz"),
		)
		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}

		if gotUA != "docscrape-test/1.0" {
			t.Errorf("unexpected user agent %q", gotUA)
		}
		if gotAuth != "Bearer abc" {
			t.Errorf("unexpected authorization header %q", gotAuth)
		}
		if gotCookie != "session=xyz" {
			t.Errorf("unexpected cookie header %q", gotCookie)
		}
	})

	t.Run("truncates oversized bodies", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("x", 1024)))
		}))
		defer server.Close()

		f := newTestFetcher(t, WithMaxBodySize(100))
		result, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(result.Body) != 100 {
			t.Errorf("expected 100 bytes, got %d", len(result.Body))
		}
	})
}

// TestFetcherRetries tests retry and backoff behavior.
func TestFetcherRetries(t *testing.T) {
	t.Parallel()

	t.Run("does not retry 404", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		f := newTestFetcher(t, WithRetries(3, time.Millisecond))
		_, err := f.Fetch(context.Background(), server.URL)

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected StatusError, got %v", err)
		}
		if statusErr.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", statusErr.Code)
		}
		if got := attempts.Load(); got != 1 {
			t.Errorf("expected 1 attempt for 404, got %d", got)
		}
	})

	t.Run("retries 500 until success", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte("recovered"))
		}))
		defer server.Close()

		f := newTestFetcher(t, WithRetries(3, time.Millisecond))
		result, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("expected eventual success, got %v", err)
		}
		if string(result.Body) != "recovered" {
			t.Errorf("unexpected body %q", result.Body)
		}
		if got := attempts.Load(); got != 3 {
			t.Errorf("expected 3 attempts, got %d", got)
		}
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		f := newTestFetcher(t, WithRetries(2, time.Millisecond))
		if _, err := f.Fetch(context.Background(), server.URL); err == nil {
			t.Fatal("expected error after exhausting retries")
		}
		if got := attempts.Load(); got != 2 {
			t.Errorf("expected 2 attempts, got %d", got)
		}
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		f := newTestFetcher(t, WithRetries(3, 10*time.Second))
		if _, err := f.Fetch(ctx, server.URL); err == nil {
			t.Fatal("expected error with cancelled context")
		}
	})
}

// TestFetcherPacing tests that the shared limiter bounds request rate.
func TestFetcherPacing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	// One request per 50ms: 4 requests need at least 150ms of waiting.
	limiter := rate.NewLimiter(rate.Every(50*time.Millisecond), 1)
	f := NewFetcher(&http.Client{Timeout: 5 * time.Second}, limiter)

	start := time.Now()
	for range 4 {
		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("4 paced requests finished in %s, expected at least 150ms", elapsed)
	}
}
