package extract

import (
	"bytes"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/docscrape/internal/adapter"
)

// ErrNoContent is returned when a page has no usable content at all,
// not even a body element.
var ErrNoContent = errors.New("extract: no content found in page")

// Content is the extracted portion of a documentation page.
type Content struct {
	// Title is the resolved page title. Empty when the page
	// carries no usable title.
	Title string

	// Root is the DOM subtree holding the main content, with
	// navigation chrome already removed.
	Root *html.Node
}

// Extractor locates the main content of documentation pages using
// the selector lists of a platform adapter.
type Extractor struct {
	// contentSelectors are tried in order; the first match wins.
	contentSelectors []string

	// skipSelectors name elements removed before extraction.
	skipSelectors []string
}

// NewExtractor creates an extractor from a platform adapter's
// selector lists.
func NewExtractor(ad *adapter.Adapter) *Extractor {
	return &Extractor{
		contentSelectors: ad.ContentSelectors,
		skipSelectors:    ad.SkipSelectors,
	}
}

// Extract parses an HTML page and returns its main content.
// Skip selectors are removed first so navigation and footer text
// never reach the rendered markdown. When no content selector
// matches, the whole body is used.
func (e *Extractor) Extract(body []byte) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	title := e.title(doc)

	for _, selector := range e.skipSelectors {
		doc.Find(selector).Remove()
	}

	root := e.contentRoot(doc)
	if root == nil {
		return nil, ErrNoContent
	}

	return &Content{Title: title, Root: root}, nil
}

// contentRoot returns the first matching content selector's node,
// falling back to the document body.
func (e *Extractor) contentRoot(doc *goquery.Document) *html.Node {
	for _, selector := range e.contentSelectors {
		sel := doc.Find(selector).First()
		if len(sel.Nodes) > 0 {
			return sel.Nodes[0]
		}
	}

	body := doc.Find("body").First()
	if len(body.Nodes) > 0 {
		return body.Nodes[0]
	}
	return nil
}

// title resolves the page title. OpenGraph metadata wins because it
// usually carries the bare page name, then the <title> tag with the
// site-name suffix stripped, then the first heading.
func (e *Extractor) title(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if title := strings.TrimSpace(og); title != "" {
			return title
		}
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return stripSiteSuffix(title)
	}

	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// siteSuffixSeparators are the strings documentation sites use to
// glue the site name onto page titles.
var siteSuffixSeparators = []string{" | ", " – ", " — "}

// stripSiteSuffix removes a trailing site-name segment from a title.
func stripSiteSuffix(title string) string {
	for _, sep := range siteSuffixSeparators {
		if idx := strings.Index(title, sep); idx > 0 {
			return strings.TrimSpace(title[:idx])
		}
	}
	return title
}
