package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Normalization errors. ErrCrossHost and ErrUnsupportedScheme mark URLs
// that are out of crawl scope rather than malformed, so callers can
// drop them silently during link discovery.
var (
	// ErrUnsupportedScheme is returned for non-http(s) URLs.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")

	// ErrCrossHost is returned when a URL's host differs from the seed
	// host and the adapter does not allow cross-host discovery.
	ErrCrossHost = errors.New("URL host outside crawl scope")
)

// Normalizer canonicalizes URLs so the same logical page is never
// visited twice under different spellings. Equivalence classes:
// fragments, tracking query parameters, default ports, host case, and
// trailing slashes.
type Normalizer struct {
	base           *url.URL
	allowCrossHost bool
	trackingParams map[string]bool
}

// NewNormalizer creates a Normalizer bound to the given base URL.
// trackingParams are query parameter names stripped during
// canonicalization.
func NewNormalizer(baseURL string, allowCrossHost bool, trackingParams []string) (*Normalizer, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, base.Scheme)
	}

	tracked := make(map[string]bool, len(trackingParams))
	for _, p := range trackingParams {
		tracked[strings.ToLower(p)] = true
	}
	return &Normalizer{
		base:           base,
		allowCrossHost: allowCrossHost,
		trackingParams: tracked,
	}, nil
}

// Host returns the canonical seed host.
func (n *Normalizer) Host() string {
	return canonicalHost(n.base)
}

// Normalize resolves rawURL against the base URL and returns its
// canonical form. It is deterministic: two spellings of the same
// logical page normalize to the same string.
func (n *Normalizer) Normalize(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	resolved := n.base.ResolveReference(u)

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, resolved.Scheme)
	}

	resolved.Scheme = strings.ToLower(resolved.Scheme)
	resolved.Host = canonicalHost(resolved)
	resolved.Fragment = ""

	if !n.allowCrossHost && resolved.Host != n.Host() {
		return "", fmt.Errorf("%w: %s", ErrCrossHost, resolved.Host)
	}

	resolved.Path = canonicalPath(resolved.Path)
	resolved.RawQuery = n.stripTracking(resolved.Query())

	return resolved.String(), nil
}

// stripTracking removes tracking parameters and re-encodes the rest in
// sorted order (url.Values.Encode sorts keys, keeping output stable).
func (n *Normalizer) stripTracking(q url.Values) string {
	for key := range q {
		if n.trackingParams[strings.ToLower(key)] {
			q.Del(key)
		}
	}
	return q.Encode()
}

// canonicalPath collapses duplicate slashes and strips one trailing
// slash. The root path is always "/" so http://host and http://host/
// are the same URL.
func canonicalPath(p string) string {
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if p == "" || p == "/" {
		return "/"
	}
	return strings.TrimSuffix(p, "/")
}

// canonicalHost lowercases the host and drops scheme-default ports.
func canonicalHost(u *url.URL) string {
	host := strings.ToLower(u.Host)
	switch {
	case u.Scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}
	return host
}
