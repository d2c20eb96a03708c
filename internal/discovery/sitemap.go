package discovery

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/docscrape/internal/crawler"
	"github.com/nao1215/docscrape/internal/model"
)

// maxSitemapDepth caps how many levels of nested sitemap indexes
// are followed. Real documentation sites rarely nest more than two
// levels; the cap guards against reference cycles between indexes.
const maxSitemapDepth = 5

// sitemapPaths are the well-known sitemap locations, tried in order.
var sitemapPaths = []string{"/sitemap.xml", "/sitemap_index.xml"}

// Sitemap discovers URLs from a site's XML sitemap.
// It handles both plain urlset documents and sitemapindex documents
// that point at nested sitemaps.
type Sitemap struct {
	// fetcher retrieves sitemap documents with the crawl's shared
	// rate limiter.
	fetcher *crawler.Fetcher

	// baseURL is the root of the site, derived from the seed URL.
	baseURL *url.URL
}

// NewSitemap creates a sitemap discovery strategy for the site that
// hosts seedURL.
func NewSitemap(fetcher *crawler.Fetcher, seedURL string) (*Sitemap, error) {
	u, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL: %w", err)
	}
	return &Sitemap{fetcher: fetcher, baseURL: u}, nil
}

// Name returns the strategy name.
func (s *Sitemap) Name() string {
	return "sitemap"
}

// Discover fetches the site's sitemap and returns every page URL it
// lists. Missing sitemaps yield an empty result, not an error.
func (s *Sitemap) Discover(ctx context.Context) ([]model.PendingURL, error) {
	for _, path := range sitemapPaths {
		sitemapURL := s.baseURL.ResolveReference(&url.URL{Path: path}).String()
		locs, err := s.collect(ctx, sitemapURL, 0)
		if err != nil {
			var statusErr *crawler.StatusError
			if errors.As(err, &statusErr) {
				continue
			}
			return nil, err
		}
		if len(locs) > 0 {
			candidates := make([]model.PendingURL, 0, len(locs))
			for _, loc := range locs {
				candidates = append(candidates, model.PendingURL{
					URL:    loc,
					Source: model.SourceSitemap,
				})
			}
			return candidates, nil
		}
	}
	return nil, nil
}

// sitemapDoc is the union of the urlset and sitemapindex formats.
// The root element name tells the two apart.
type sitemapDoc struct {
	XMLName  xml.Name
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

// sitemapLoc is a single <url> or <sitemap> entry.
type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// collect fetches one sitemap document and returns the page URLs it
// lists, recursing into nested sitemap indexes.
func (s *Sitemap) collect(ctx context.Context, sitemapURL string, depth int) ([]string, error) {
	if depth >= maxSitemapDepth {
		return nil, nil
	}

	fetched, err := s.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	var doc sitemapDoc
	decoder := xml.NewDecoder(bytes.NewReader(fetched.Body))
	decoder.Strict = false
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse sitemap %s: %w", sitemapURL, err)
	}

	locs := make([]string, 0, len(doc.URLs))
	for _, entry := range doc.URLs {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			locs = append(locs, loc)
		}
	}

	for _, nested := range doc.Sitemaps {
		loc := strings.TrimSpace(nested.Loc)
		if loc == "" {
			continue
		}
		nestedLocs, err := s.collect(ctx, loc, depth+1)
		if err != nil {
			// A broken nested sitemap should not sink the
			// URLs already collected from its siblings.
			var statusErr *crawler.StatusError
			if errors.As(err, &statusErr) {
				continue
			}
			return nil, err
		}
		locs = append(locs, nestedLocs...)
	}

	return locs, nil
}
