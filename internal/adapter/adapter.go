package adapter

import (
	"net/url"
	"strings"
)

// Discovery strategy names, in the vocabulary adapters use to declare
// their preferred discovery order.
const (
	StrategySitemap   = "sitemap"
	StrategyLlmsTxt   = "llms_txt"
	StrategyRecursive = "recursive"
)

// Adapter configures crawling for one documentation platform.
// It is a plain capability record: selectors, skip rules, and discovery
// hints. The zero value is not usable; use Resolve or Generic.
type Adapter struct {
	// Name is the platform name (e.g. "livekit", "generic").
	Name string

	// HostPatterns are substrings matched against a URL's host (and
	// host/path prefix) to auto-detect the platform.
	HostPatterns []string

	// ContentSelectors are CSS selectors for the main content area,
	// tried in order. The first match wins.
	ContentSelectors []string

	// SkipSelectors are CSS selectors for elements removed before
	// extraction (navigation, footers, scripts).
	SkipSelectors []string

	// DiscoveryPriority is the ordered list of discovery strategy names
	// to try. The first strategy yielding candidates wins.
	DiscoveryPriority []string

	// SupplementRecursive runs recursive link discovery alongside a
	// precomputed candidate list, to catch pages sitemaps omit.
	SupplementRecursive bool

	// AllowCrossHost permits discovered URLs on hosts other than the
	// seed host. Off for all shipped platforms.
	AllowCrossHost bool

	// SkipFunc reports whether a URL should be skipped for this
	// platform (auto-generated API references, changelogs). Nil means
	// nothing is skipped.
	SkipFunc func(url string) bool

	// PriorityFunc returns a discovery ordering priority for a URL
	// (higher first). Nil means all URLs rank equally.
	PriorityFunc func(url string) int
}

// ShouldSkip reports whether the adapter excludes url.
func (a *Adapter) ShouldSkip(url string) bool {
	if a.SkipFunc == nil {
		return false
	}
	return a.SkipFunc(url)
}

// Priority returns the discovery ordering priority for url.
func (a *Adapter) Priority(url string) int {
	if a.PriorityFunc == nil {
		return 0
	}
	return a.PriorityFunc(url)
}

// Matches reports whether rawURL belongs to this adapter's platform.
// Patterns match against the host alone and against host+path, so both
// "docs.livekit.io" and "livekit.io/docs" style patterns work.
func (a *Adapter) Matches(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	hostPath := host + u.Path
	for _, pattern := range a.HostPatterns {
		if strings.Contains(host, pattern) || strings.HasPrefix(hostPath, pattern) {
			return true
		}
	}
	return false
}
