package config

import (
	"net/url"
	"path/filepath"
	"regexp"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. These mirror the CLI flag defaults and
// are chosen to be polite toward documentation servers.
const (
	// DefaultRequestDelay is the minimum interval between requests.
	// The delay is a global pacing budget shared by all fetch workers,
	// so the effective request rate never exceeds 1/DefaultRequestDelay
	// regardless of concurrency.
	DefaultRequestDelay = 500 * time.Millisecond

	// DefaultTimeout is the per-request timeout. Documentation sites are
	// usually fast; 30 seconds covers slow CDN cold starts.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency is the number of concurrent fetch workers.
	DefaultConcurrency = 4

	// DefaultMaxRetries is the number of fetch attempts per URL before
	// the page is recorded as failed. 404 responses are never retried.
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is the base backoff between retry attempts.
	// The backoff doubles after each failed attempt.
	DefaultRetryBackoff = 500 * time.Millisecond

	// DefaultMaxBodySize limits the response body size to read.
	// 10MB is generous for HTML pages while bounding memory use.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// DefaultUserAgent identifies docscrape in HTTP requests so site
	// operators can recognize scraper traffic in their logs.
	DefaultUserAgent = "docscrape/2.0 (+https://github.com/nao1215/docscrape)"

	// AppName is the application name used for XDG directory paths.
	AppName = "docscrape"
)

// DefaultTrackingParams are query parameters stripped during URL
// normalization. They identify campaigns, not resources, so two URLs
// differing only in these parameters denote the same page.
var DefaultTrackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"ref", "fbclid", "gclid",
}

// Config holds all options for one scrape run. It is populated from CLI
// flags, validated once before any network activity, and passed through
// the application explicitly rather than via global state.
type Config struct {
	// SeedURL is the documentation site URL the crawl starts from.
	SeedURL string

	// OutputDir is the directory Markdown files are written under.
	OutputDir string

	// Platform is the adapter name. Empty means auto-detect from SeedURL.
	Platform string

	// MaxPages limits the number of successful pages per run.
	// 0 means unlimited. When the budget is reached, remaining frontier
	// entries are checkpointed as pending for a future resume.
	MaxPages int

	// Concurrency is the number of concurrent fetch workers.
	Concurrency int

	// RequestDelay is the global pacing interval between requests,
	// shared across all workers.
	RequestDelay time.Duration

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxRetries is the number of fetch attempts per URL.
	MaxRetries int

	// RetryBackoff is the base backoff between retries; doubles per attempt.
	RetryBackoff time.Duration

	// IncludePatterns are URL regexes; when non-empty, a URL must match
	// at least one or it is skipped.
	IncludePatterns []string

	// ExcludePatterns are URL regexes; a URL matching any is skipped.
	// Exclude wins over include.
	ExcludePatterns []string

	// Resume continues a previous run from the state ledger in OutputDir.
	Resume bool

	// Verbose enables slog.LevelDebug output. Default level is Warn.
	Verbose bool

	// Quiet suppresses per-page progress lines on stdout.
	Quiet bool

	// ConfigFilePath is an explicit .docscrape file path. Empty means
	// search the current directory and then the home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// UserAgent is the User-Agent header for all requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// TrackingParams are query parameters stripped during normalization.
	TrackingParams []string

	// ArchiveDB enables recording per-page fetch records and run
	// summaries into the SQLite history database under DBDir.
	ArchiveDB bool

	// DBDir is the directory for the history database.
	// Defaults to the XDG data directory.
	DBDir string

	compiledIncludes []*regexp.Regexp
	compiledExcludes []*regexp.Regexp
}

// NewConfig creates a Config with default values. Callers override
// fields after creation and must call Validate before use.
func NewConfig() *Config {
	return &Config{
		Concurrency:    DefaultConcurrency,
		RequestDelay:   DefaultRequestDelay,
		Timeout:        DefaultTimeout,
		MaxRetries:     DefaultMaxRetries,
		RetryBackoff:   DefaultRetryBackoff,
		UserAgent:      DefaultUserAgent,
		MaxBodySize:    DefaultMaxBodySize,
		TrackingParams: DefaultTrackingParams,
		DBDir:          XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for docscrape.
// On Linux: ~/.local/share/docscrape
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for docscrape.
// On Linux: ~/.config/docscrape
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and compiles include/exclude
// patterns. It returns the first problem found; configuration failures
// are rejected here, before any network activity.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return ErrNoSeedURL
	}
	u, err := url.Parse(c.SeedURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidSeedURL
	}
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.RequestDelay < 0 {
		return ErrInvalidRequestDelay
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxRetries <= 0 {
		return ErrInvalidMaxRetries
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	c.compiledIncludes, err = compilePatterns(c.IncludePatterns)
	if err != nil {
		return err
	}
	c.compiledExcludes, err = compilePatterns(c.ExcludePatterns)
	if err != nil {
		return err
	}
	return nil
}

// Includes returns the compiled include patterns. Valid after Validate.
func (c *Config) Includes() []*regexp.Regexp { return c.compiledIncludes }

// Excludes returns the compiled exclude patterns. Valid after Validate.
func (c *Config) Excludes() []*regexp.Regexp { return c.compiledExcludes }

// SeedHost returns the lowercase host of the seed URL. Valid after Validate.
func (c *Config) SeedHost() string {
	u, err := url.Parse(c.SeedURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, &PatternError{Pattern: p, Err: err}
		}
		out = append(out, re)
	}
	return out, nil
}
