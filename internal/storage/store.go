package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/docscrape/internal/model"
)

// Well-known filenames inside the output directory.
const (
	// StateFile is the resumable crawl ledger.
	StateFile = "_state.json"

	// ManifestFile is the crawl summary manifest.
	ManifestFile = "_manifest.json"

	// IndexFile is the generated table of contents.
	IndexFile = "_index.md"
)

// ErrNoState is returned by ReadState when no ledger exists yet.
var ErrNoState = errors.New("storage: no crawl state found")

// Store persists pages and crawl bookkeeping under one output
// directory.
type Store struct {
	// dir is the output directory. It exists after NewStore.
	dir string
}

// NewStore creates a store rooted at dir, creating the directory if
// needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.dir
}

// frontmatter is the YAML header written at the top of every page.
type frontmatter struct {
	Title     string `yaml:"title"`
	URL       string `yaml:"url"`
	ScrapedAt string `yaml:"scraped_at"`
	WordCount int    `yaml:"word_count"`
}

// WritePage writes a page as markdown with YAML frontmatter and
// returns the filename relative to the output directory. Writing the
// same page twice overwrites the previous file, which keeps resumed
// crawls idempotent.
func (s *Store) WritePage(page *model.DocumentPage) (string, error) {
	name := PageFilename(page.URL)

	header, err := yaml.Marshal(frontmatter{
		Title:     page.Title,
		URL:       page.URL,
		ScrapedAt: page.ScrapedAt.Format(time.RFC3339),
		WordCount: page.WordCount,
	})
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(header)
	sb.WriteString("---\n\n")
	sb.WriteString(page.Markdown)
	if !strings.HasSuffix(page.Markdown, "\n") {
		sb.WriteString("\n")
	}

	if err := os.WriteFile(filepath.Join(s.dir, name), []byte(sb.String()), 0600); err != nil {
		return "", err
	}
	return name, nil
}

// WriteState checkpoints the crawl ledger atomically.
func (s *Store) WriteState(state *model.CrawlState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return s.writeAtomic(StateFile, data)
}

// ReadState loads the crawl ledger from a previous run.
// It returns ErrNoState when no ledger file exists.
func (s *Store) ReadState() (*model.CrawlState, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, StateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoState
		}
		return nil, err
	}

	state := model.NewCrawlState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	return state, nil
}

// WriteManifest writes the crawl manifest atomically.
func (s *Store) WriteManifest(manifest *model.Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return s.writeAtomic(ManifestFile, data)
}

// ReadManifest loads a previously written manifest.
func (s *Store) ReadManifest() (*model.Manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, ManifestFile))
	if err != nil {
		return nil, err
	}

	var manifest model.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &manifest, nil
}

// RemoveState deletes the ledger after a crawl completes cleanly.
func (s *Store) RemoveState() error {
	err := os.Remove(filepath.Join(s.dir, StateFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// writeAtomic writes data to name through a temp file and rename,
// so readers never observe a partially written file.
func (s *Store) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// PageFilename derives the output filename for a page URL.
// Path segments are joined with dashes so the output directory
// stays flat: https://docs.example.com/guides/intro becomes
// guides-intro.md, and the site root becomes index.md.
func PageFilename(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return sanitizeFilename(pageURL) + ".md"
	}

	p := strings.Trim(u.Path, "/")
	if p == "" {
		return "index.md"
	}

	p = strings.TrimSuffix(p, ".html")
	p = strings.TrimSuffix(p, ".md")
	p = strings.ReplaceAll(p, "/", "-")

	name := sanitizeFilename(p)
	if name == "" {
		return "index.md"
	}
	return name + ".md"
}

// sanitizeFilename replaces characters unsafe for filenames and
// collapses the resulting dash runs.
func sanitizeFilename(s string) string {
	var sb strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(sb.String(), "-.")
}
