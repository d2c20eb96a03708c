package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// StatusError reports a non-success HTTP response.
type StatusError struct {
	// URL is the requested URL.
	URL string

	// Code is the HTTP status code.
	Code int
}

// Error returns a human-readable error message.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s for %s", e.Code, http.StatusText(e.Code), e.URL)
}

// retryable reports whether the status is worth retrying.
// Client errors such as 404 are definitive; retrying them only
// burns the politeness budget.
func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// FetchResult is the outcome of a successful fetch.
type FetchResult struct {
	// URL is the originally requested URL.
	URL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// ContentType is the Content-Type header value.
	ContentType string

	// Body is the response body, truncated to the configured limit.
	Body []byte
}

// Fetcher retrieves pages over HTTP with rate pacing and retries.
// All fetchers in a crawl share one rate limiter so the politeness
// delay holds globally no matter how many workers run.
type Fetcher struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// limiter paces requests. Every attempt, including retries,
	// waits for a token first.
	limiter *rate.Limiter

	// userAgent is the User-Agent header to send.
	userAgent string

	// maxBodySize limits how many body bytes are read.
	maxBodySize int64

	// maxRetries is the number of attempts per URL.
	maxRetries int

	// backoff is the wait before the second attempt. It doubles
	// after each failure.
	backoff time.Duration

	// headers are extra request headers from the site config.
	headers map[string]string

	// cookie is an optional Cookie header value from the site config.
	cookie string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithRetries sets the attempt count and initial backoff.
func WithRetries(attempts int, backoff time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if attempts > 0 {
			f.maxRetries = attempts
		}
		f.backoff = backoff
	}
}

// WithHeaders sets extra request headers sent with every request.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithCookie sets a Cookie header sent with every request.
func WithCookie(cookie string) FetcherOption {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// NewFetcher creates a Fetcher over the given client and limiter.
// The client carries the request timeout; the limiter is shared by
// all fetchers in the same crawl.
func NewFetcher(client *http.Client, limiter *rate.Limiter, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		limiter:     limiter,
		userAgent:   "docscrape/2.0",
		maxBodySize: 10 * 1024 * 1024, // 10MB
		maxRetries:  3,
		backoff:     500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch retrieves a URL, retrying transient failures with
// exponential backoff. Non-retryable HTTP statuses such as 404
// fail immediately. The returned error wraps a *StatusError when
// the server answered with a non-2xx status.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*FetchResult, error) {
	var lastErr error
	backoff := f.backoff

	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		result, err := f.fetchOnce(ctx, pageURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, lastErr
		}
		if statusErr, ok := err.(*StatusError); ok && !statusErr.retryable() {
			return nil, lastErr
		}
	}

	return nil, fmt.Errorf("fetch %s: %w", pageURL, lastErr)
}

// fetchOnce performs a single request attempt.
func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")
	for key, value := range f.headers {
		req.Header.Set(key, value)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, &StatusError{URL: pageURL, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, err
	}

	return &FetchResult{
		URL:         pageURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
