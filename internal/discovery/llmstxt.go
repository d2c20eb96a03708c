package discovery

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/docscrape/internal/crawler"
	"github.com/nao1215/docscrape/internal/model"
)

// llmsTxtPaths are the well-known llms.txt locations, tried in order.
// The plain file is preferred; llms-full.txt inlines page content and
// is only consulted as a fallback for its link lists.
var llmsTxtPaths = []string{"/llms.txt", "/llms-full.txt"}

// markdownLinkRegex matches markdown links: [title](url).
var markdownLinkRegex = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)

// bareURLRegex matches URLs written directly into the text.
var bareURLRegex = regexp.MustCompile(`https?://[^\s<>"')]+`)

// LlmsTxt discovers URLs from a site's llms.txt file, the markdown
// index format that documentation hosts publish for language models.
type LlmsTxt struct {
	// fetcher retrieves the file with the crawl's shared rate limiter.
	fetcher *crawler.Fetcher

	// baseURL is the root of the site, derived from the seed URL.
	baseURL *url.URL
}

// NewLlmsTxt creates an llms.txt discovery strategy for the site
// that hosts seedURL.
func NewLlmsTxt(fetcher *crawler.Fetcher, seedURL string) (*LlmsTxt, error) {
	u, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL: %w", err)
	}
	return &LlmsTxt{fetcher: fetcher, baseURL: u}, nil
}

// Name returns the strategy name.
func (l *LlmsTxt) Name() string {
	return "llms_txt"
}

// Discover fetches llms.txt and returns every documentation URL it
// links to. Link titles are preserved so resumable ledgers can show
// what a pending URL is. A missing file yields an empty result.
func (l *LlmsTxt) Discover(ctx context.Context) ([]model.PendingURL, error) {
	for _, path := range llmsTxtPaths {
		fileURL := l.baseURL.ResolveReference(&url.URL{Path: path}).String()
		fetched, err := l.fetcher.Fetch(ctx, fileURL)
		if err != nil {
			var statusErr *crawler.StatusError
			if errors.As(err, &statusErr) {
				continue
			}
			return nil, err
		}

		candidates := l.parse(fetched.Body)
		if len(candidates) > 0 {
			return candidates, nil
		}
	}
	return nil, nil
}

// parse extracts link candidates from llms.txt content.
// Markdown links contribute a title; bare URLs do not. Duplicates
// are dropped here so the engine sees each URL once.
func (l *LlmsTxt) parse(body []byte) []model.PendingURL {
	seen := make(map[string]bool)
	candidates := make([]model.PendingURL, 0)

	add := func(rawURL, title string) {
		resolved := l.resolve(rawURL)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		candidates = append(candidates, model.PendingURL{
			URL:    resolved,
			Source: model.SourceLlmsTxt,
			Title:  strings.TrimSpace(title),
		})
	}

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		matches := markdownLinkRegex.FindAllStringSubmatch(line, -1)
		for _, match := range matches {
			add(match[2], match[1])
		}
		if len(matches) > 0 {
			continue
		}

		for _, raw := range bareURLRegex.FindAllString(line, -1) {
			add(raw, "")
		}
	}

	return candidates
}

// resolve turns a link target into an absolute URL, dropping
// fragments-only targets and non-HTTP schemes.
func (l *LlmsTxt) resolve(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || strings.HasPrefix(rawURL, "#") {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	resolved := l.baseURL.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
