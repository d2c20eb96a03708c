package discovery

import (
	"github.com/nao1215/docscrape/internal/adapter"
	"github.com/nao1215/docscrape/internal/crawler"
)

// ForAdapter builds the discovery strategies named by a platform
// adapter, in the adapter's priority order. The second return value
// reports whether the crawl should also follow links found on
// scraped pages: true when the adapter lists recursive discovery or
// asks to supplement another strategy with it.
func ForAdapter(ad *adapter.Adapter, fetcher *crawler.Fetcher, seedURL string) ([]crawler.Strategy, bool, error) {
	strategies := make([]crawler.Strategy, 0, len(ad.DiscoveryPriority))
	followLinks := ad.SupplementRecursive

	for _, name := range ad.DiscoveryPriority {
		switch name {
		case adapter.StrategySitemap:
			s, err := NewSitemap(fetcher, seedURL)
			if err != nil {
				return nil, false, err
			}
			strategies = append(strategies, s)
		case adapter.StrategyLlmsTxt:
			s, err := NewLlmsTxt(fetcher, seedURL)
			if err != nil {
				return nil, false, err
			}
			strategies = append(strategies, s)
		case adapter.StrategyRecursive:
			followLinks = true
		}
	}

	return strategies, followLinks, nil
}

// compile-time interface checks
var (
	_ crawler.Strategy = (*Sitemap)(nil)
	_ crawler.Strategy = (*LlmsTxt)(nil)
)
