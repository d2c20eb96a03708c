package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/docscrape/internal/model"
)

// WriteIndex generates the _index.md table of contents from a crawl
// manifest. Pages are listed alphabetically by title; failed and
// skipped pages get their own section so a reader can see what is
// missing and why.
func (s *Store) WriteIndex(manifest *model.Manifest) error {
	f, err := os.OpenFile(filepath.Join(s.dir, IndexFile), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	md := markdown.NewMarkdown(f)

	title := cases.Title(language.English).String(manifest.Platform)
	md.H1(fmt.Sprintf("%s Documentation", title))
	md.PlainText("")
	md.PlainTextf("Scraped from %s", manifest.BaseURL)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Pages scraped", strconv.Itoa(manifest.Successful())},
			{"Pages skipped", strconv.Itoa(manifest.Skipped())},
			{"Pages failed", strconv.Itoa(manifest.Failed())},
			{"Total words", strconv.Itoa(totalWords(manifest))},
		},
	})
	md.PlainText("")

	md.H2("Pages")
	md.PlainText("")
	for _, page := range successfulPages(manifest) {
		md.PlainTextf("- [%s](%s) (%d words)", page.Title, page.Path, page.WordCount)
	}
	md.PlainText("")

	if failed := manifest.FailedPages(); len(failed) > 0 {
		md.H2("Failed Pages")
		md.PlainText("")
		for _, page := range failed {
			md.PlainTextf("- %s: %s", page.URL, page.Reason)
		}
		md.PlainText("")
	}

	return md.Build()
}

// successfulPages returns the manifest's successful pages sorted by
// title, with URL as a tiebreaker for stable output.
func successfulPages(manifest *model.Manifest) []model.PageRecord {
	pages := make([]model.PageRecord, 0, len(manifest.Pages))
	for _, page := range manifest.Pages {
		if page.Outcome == model.OutcomeSuccess {
			pages = append(pages, page)
		}
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Title != pages[j].Title {
			return pages[i].Title < pages[j].Title
		}
		return pages[i].URL < pages[j].URL
	})
	return pages
}

// totalWords sums the word counts of all successful pages.
func totalWords(manifest *model.Manifest) int {
	total := 0
	for _, page := range manifest.Pages {
		if page.Outcome == model.OutcomeSuccess {
			total += page.WordCount
		}
	}
	return total
}
