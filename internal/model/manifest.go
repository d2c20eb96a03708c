package model

import (
	"time"
)

// PageRecord is one manifest entry describing a processed URL.
type PageRecord struct {
	// URL is the canonical URL of the page.
	URL string `json:"url"`

	// Path is the output path relative to the output root.
	// Empty for skipped and failed pages.
	Path string `json:"path,omitempty"`

	// Title is the extracted page title. Empty unless the page succeeded.
	Title string `json:"title,omitempty"`

	// WordCount is the word count of the rendered Markdown body.
	WordCount int `json:"word_count,omitempty"`

	// Outcome is the terminal state of the URL.
	Outcome Outcome `json:"outcome"`

	// Reason describes why a page was skipped or failed.
	Reason string `json:"reason,omitempty"`

	// ScrapedAt is the fetch timestamp. Zero unless the page succeeded.
	ScrapedAt time.Time `json:"scraped_at,omitzero"`
}

// Manifest summarizes one crawl run. It is built incrementally by the
// crawl engine and finalized when the run ends or is interrupted.
// The manifest is sufficient to regenerate a human-readable index
// without re-crawling.
type Manifest struct {
	// Platform is the adapter name used for the run (e.g. "generic").
	Platform string `json:"platform"`

	// BaseURL is the seed URL of the crawl.
	BaseURL string `json:"base_url"`

	// OutputDir is the output root the pages were written under.
	OutputDir string `json:"output_dir"`

	// StartedAt is when the run (or the original run, when resuming) began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the run finished or was interrupted.
	// Zero while the run is still in progress.
	CompletedAt time.Time `json:"completed_at,omitzero"`

	// Pages holds one record per processed URL, in outcome-record order.
	// Because fetches run concurrently, this order is not the dequeue order.
	Pages []PageRecord `json:"pages"`
}

// NewManifest creates a Manifest for a fresh run starting now.
func NewManifest(platform, baseURL, outputDir string) *Manifest {
	return &Manifest{
		Platform:  platform,
		BaseURL:   baseURL,
		OutputDir: outputDir,
		StartedAt: time.Now().UTC(),
		Pages:     make([]PageRecord, 0),
	}
}

// Record appends a page record to the manifest.
func (m *Manifest) Record(rec PageRecord) {
	m.Pages = append(m.Pages, rec)
}

// Successful returns the number of pages with OutcomeSuccess.
func (m *Manifest) Successful() int { return m.countOutcome(OutcomeSuccess) }

// Failed returns the number of pages with OutcomeFailed.
func (m *Manifest) Failed() int { return m.countOutcome(OutcomeFailed) }

// Skipped returns the number of pages with OutcomeSkipped.
func (m *Manifest) Skipped() int { return m.countOutcome(OutcomeSkipped) }

// Total returns the total number of processed URLs.
func (m *Manifest) Total() int { return len(m.Pages) }

func (m *Manifest) countOutcome(o Outcome) int {
	n := 0
	for _, p := range m.Pages {
		if p.Outcome == o {
			n++
		}
	}
	return n
}

// FailedPages returns the records of all failed URLs.
func (m *Manifest) FailedPages() []PageRecord {
	var out []PageRecord
	for _, p := range m.Pages {
		if p.Outcome == OutcomeFailed {
			out = append(out, p)
		}
	}
	return out
}
