package extract

import (
	"bytes"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/nao1215/docscrape/internal/adapter"
	"github.com/nao1215/docscrape/internal/crawler"
	"github.com/nao1215/docscrape/internal/model"
	"github.com/nao1215/docscrape/internal/render"
)

// Processor converts fetched responses into document pages.
// HTML pages go through selector-based extraction and markdown
// rendering; pages that are already markdown, such as the .md URLs
// listed in llms.txt files, pass through unchanged.
type Processor struct {
	extractor *Extractor
}

// NewProcessor creates a processor for the given platform adapter.
func NewProcessor(ad *adapter.Adapter) *Processor {
	return &Processor{extractor: NewExtractor(ad)}
}

// compile-time interface check
var _ crawler.Processor = (*Processor)(nil)

// Process builds a document page from a fetched response.
func (p *Processor) Process(entry model.PendingURL, fetched *crawler.FetchResult) (*model.DocumentPage, error) {
	if isMarkdown(fetched) {
		return p.processMarkdown(entry, fetched), nil
	}
	return p.processHTML(entry, fetched)
}

// processHTML extracts the main content, renders it to markdown,
// and collects the page's links for recursive discovery. Links come
// from the full document, before chrome removal, because navigation
// sidebars hold most of a documentation site's internal links.
func (p *Processor) processHTML(entry model.PendingURL, fetched *crawler.FetchResult) (*model.DocumentPage, error) {
	var links []string
	if parser, err := crawler.NewParser(fetched.URL); err == nil {
		if parsed, err := parser.Parse(bytes.NewReader(fetched.Body)); err == nil {
			links = parsed.Links
		}
	}

	content, err := p.extractor.Extract(fetched.Body)
	if err != nil {
		return nil, err
	}

	markdown := render.Markdown(content.Root)
	title := content.Title
	if title == "" {
		title = fallbackTitle(entry, fetched.URL)
	}

	return &model.DocumentPage{
		URL:       fetched.URL,
		Title:     title,
		Markdown:  markdown,
		WordCount: model.CountWords(markdown),
		ScrapedAt: time.Now().UTC(),
		Links:     links,
	}, nil
}

// processMarkdown passes an already-markdown body through unchanged.
// The title comes from the first top-level heading when present.
func (p *Processor) processMarkdown(entry model.PendingURL, fetched *crawler.FetchResult) *model.DocumentPage {
	markdown := strings.TrimSpace(string(fetched.Body))

	title := headingTitle(markdown)
	if title == "" {
		title = fallbackTitle(entry, fetched.URL)
	}

	return &model.DocumentPage{
		URL:       fetched.URL,
		Title:     title,
		Markdown:  markdown,
		WordCount: model.CountWords(markdown),
		ScrapedAt: time.Now().UTC(),
	}
}

// isMarkdown reports whether a response is markdown rather than HTML.
func isMarkdown(fetched *crawler.FetchResult) bool {
	contentType := strings.ToLower(fetched.ContentType)
	if strings.Contains(contentType, "text/markdown") {
		return true
	}
	if u, err := url.Parse(fetched.URL); err == nil {
		ext := strings.ToLower(path.Ext(u.Path))
		if ext == ".md" || ext == ".mdx" {
			return true
		}
	}
	// Plain text bodies from .md-less URLs are still HTML sites
	// most of the time, so only trust an explicit signal.
	return false
}

// headingTitle returns the text of the first top-level markdown
// heading, or the empty string.
func headingTitle(markdown string) string {
	for line := range strings.Lines(markdown) {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(after)
		}
	}
	return ""
}

// fallbackTitle derives a title when the page itself has none:
// the discovery title if one was recorded, otherwise the last URL
// path segment.
func fallbackTitle(entry model.PendingURL, pageURL string) string {
	if entry.Title != "" {
		return entry.Title
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	segment := path.Base(strings.TrimSuffix(u.Path, "/"))
	if segment == "" || segment == "." || segment == "/" {
		return u.Host
	}
	return strings.TrimSuffix(segment, path.Ext(segment))
}
