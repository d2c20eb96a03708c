package extract

import (
	"strings"
	"testing"

	"github.com/nao1215/docscrape/internal/crawler"
	"github.com/nao1215/docscrape/internal/model"
)

// TestProcessorHTML tests HTML page processing.
func TestProcessorHTML(t *testing.T) {
	t.Parallel()

	processor := NewProcessor(testAdapter())

	t.Run("renders content and collects links from the full page", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><title>Rooms | Example Docs</title></head><body>
<nav><a href="/guides/other">Other Guide</a></nav>
<main class="docs"><h2>Rooms</h2><p>A room holds participants.</p></main>
</body></html>`

		got, err := processor.Process(model.PendingURL{URL: "https://docs.example.com/guides/rooms"}, &crawler.FetchResult{
			URL:         "https://docs.example.com/guides/rooms",
			ContentType: "text/html; charset=utf-8",
			Body:        []byte(page),
		})
		if err != nil {
			t.Fatalf("process failed: %v", err)
		}

		if got.Title != "Rooms" {
			t.Errorf("expected title Rooms, got %q", got.Title)
		}
		if !strings.Contains(got.Markdown, "## Rooms") {
			t.Errorf("expected rendered heading, got %q", got.Markdown)
		}
		if strings.Contains(got.Markdown, "Other Guide") {
			t.Errorf("nav chrome leaked into markdown: %q", got.Markdown)
		}
		// Links come from the whole document, nav included.
		want := "https://docs.example.com/guides/other"
		found := false
		for _, link := range got.Links {
			if link == want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected nav link %q in %v", want, got.Links)
		}
		if got.WordCount == 0 {
			t.Error("expected a non-zero word count")
		}
	})

	t.Run("falls back to the URL segment for untitled pages", func(t *testing.T) {
		t.Parallel()

		got, err := processor.Process(model.PendingURL{URL: "https://docs.example.com/guides/webhooks.html"}, &crawler.FetchResult{
			URL:         "https://docs.example.com/guides/webhooks.html",
			ContentType: "text/html",
			Body:        []byte(`<html><body><p>no title here</p></body></html>`),
		})
		if err != nil {
			t.Fatalf("process failed: %v", err)
		}
		if got.Title != "webhooks" {
			t.Errorf("expected URL-derived title, got %q", got.Title)
		}
	})

	t.Run("prefers the discovery title over the URL segment", func(t *testing.T) {
		t.Parallel()

		got, err := processor.Process(model.PendingURL{
			URL:   "https://docs.example.com/guides/webhooks",
			Title: "Webhooks Guide",
		}, &crawler.FetchResult{
			URL:         "https://docs.example.com/guides/webhooks",
			ContentType: "text/html",
			Body:        []byte(`<html><body><p>no title here</p></body></html>`),
		})
		if err != nil {
			t.Fatalf("process failed: %v", err)
		}
		if got.Title != "Webhooks Guide" {
			t.Errorf("expected discovery title, got %q", got.Title)
		}
	})
}

// TestProcessorMarkdown tests markdown passthrough.
func TestProcessorMarkdown(t *testing.T) {
	t.Parallel()

	processor := NewProcessor(testAdapter())

	t.Run("content type signals markdown", func(t *testing.T) {
		t.Parallel()

		body := "# Agents Overview\n\nAgents join rooms as participants.\n"
		got, err := processor.Process(model.PendingURL{URL: "https://docs.example.com/agents"}, &crawler.FetchResult{
			URL:         "https://docs.example.com/agents",
			ContentType: "text/markdown; charset=utf-8",
			Body:        []byte(body),
		})
		if err != nil {
			t.Fatalf("process failed: %v", err)
		}
		if got.Title != "Agents Overview" {
			t.Errorf("expected heading title, got %q", got.Title)
		}
		if got.Markdown != strings.TrimSpace(body) {
			t.Errorf("markdown body was altered: %q", got.Markdown)
		}
	})

	t.Run("md extension signals markdown", func(t *testing.T) {
		t.Parallel()

		got, err := processor.Process(model.PendingURL{URL: "https://docs.example.com/guides/intro.md"}, &crawler.FetchResult{
			URL:         "https://docs.example.com/guides/intro.md",
			ContentType: "text/plain",
			Body:        []byte("Plain markdown without a heading."),
		})
		if err != nil {
			t.Fatalf("process failed: %v", err)
		}
		// No heading, no discovery title: the URL segment minus the
		// extension is the fallback.
		if got.Title != "intro" {
			t.Errorf("expected fallback title intro, got %q", got.Title)
		}
		if len(got.Links) != 0 {
			t.Errorf("markdown passthrough should not collect links, got %v", got.Links)
		}
	})
}
