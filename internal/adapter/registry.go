package adapter

import "strings"

// defaultContentSelectors are the content-area selectors for sites
// without a dedicated adapter, ordered from most to least specific.
var defaultContentSelectors = []string{
	"article",
	"main",
	".markdown-body",
	".content",
	".documentation",
	".docs-content",
	"#content",
	"#main-content",
}

// defaultSkipSelectors remove navigation chrome before extraction.
var defaultSkipSelectors = []string{
	"nav",
	"header",
	"footer",
	".sidebar",
	".toc",
	".table-of-contents",
	".navigation",
	".breadcrumb",
	".edit-page",
	".feedback",
	"script",
	"style",
}

// registry holds all known platform adapters in registration order.
// Resolve scans it before falling back to the generic adapter.
var registry = []*Adapter{
	newLiveKit(),
	newPipecat(),
	newRetellAI(),
}

// Generic returns the adapter used for unrecognized documentation sites:
// sitemap discovery with recursive crawl fallback and the default
// selector set.
func Generic() *Adapter {
	return &Adapter{
		Name:              "generic",
		ContentSelectors:  defaultContentSelectors,
		SkipSelectors:     defaultSkipSelectors,
		DiscoveryPriority: []string{StrategySitemap, StrategyLlmsTxt, StrategyRecursive},
	}
}

// Resolve returns the adapter for rawURL, falling back to Generic.
func Resolve(rawURL string) *Adapter {
	for _, a := range registry {
		if a.Matches(rawURL) {
			return a
		}
	}
	return Generic()
}

// ByName returns the registered adapter with the given name, or the
// generic adapter for "generic" or the empty string. The second return
// value reports whether the name was recognized.
func ByName(name string) (*Adapter, bool) {
	name = strings.ToLower(name)
	if name == "" || name == "generic" {
		return Generic(), true
	}
	for _, a := range registry {
		if a.Name == name {
			return a, true
		}
	}
	return Generic(), false
}

// Names returns the names of all registered adapters plus "generic".
func Names() []string {
	names := make([]string, 0, len(registry)+1)
	names = append(names, "generic")
	for _, a := range registry {
		names = append(names, a.Name)
	}
	return names
}

// Register adds a platform adapter to the registry. Later registrations
// are scanned after the built-in platforms.
func Register(a *Adapter) {
	registry = append(registry, a)
}
