package model

import (
	"strings"
	"time"
)

// Outcome is the terminal state of a crawled URL.
// Once a URL reaches a terminal state it is never revisited within the
// same run.
type Outcome string

// Terminal outcomes for a crawled URL.
const (
	// OutcomeSuccess means the page was fetched, converted, and written.
	OutcomeSuccess Outcome = "success"

	// OutcomeSkipped means the URL was rejected by include/exclude filters
	// or the platform adapter before any fetch was attempted.
	OutcomeSkipped Outcome = "skipped"

	// OutcomeFailed means fetching or extraction failed after retries.
	OutcomeFailed Outcome = "failed"
)

// Source identifies how a URL entered the crawl frontier.
type Source string

// Discovery sources for frontier entries.
const (
	SourceSeed      Source = "seed"
	SourceSitemap   Source = "sitemap"
	SourceLlmsTxt   Source = "llms_txt"
	SourceRecursive Source = "recursive"
)

// DocumentPage is one fetched and processed documentation page.
// It is created by the crawl engine after extraction and is immutable
// once created; the storage layer writes it exactly once.
type DocumentPage struct {
	// URL is the canonical (normalized) URL of the page.
	URL string `json:"url"`

	// Title is the plain page title extracted from the content.
	Title string `json:"title"`

	// Markdown is the rendered Markdown body without frontmatter.
	Markdown string `json:"-"`

	// Path is the output path relative to the output root.
	Path string `json:"path"`

	// WordCount is the number of whitespace-separated words in Markdown.
	WordCount int `json:"word_count"`

	// ScrapedAt is the fetch timestamp in UTC.
	ScrapedAt time.Time `json:"scraped_at"`

	// Links are normalized same-host links found in the content area.
	// Used by recursive discovery to grow the frontier.
	Links []string `json:"-"`
}

// CountWords returns the number of whitespace-separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
