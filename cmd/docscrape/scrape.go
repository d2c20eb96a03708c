package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/nao1215/docscrape/internal/adapter"
	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/crawler"
	"github.com/nao1215/docscrape/internal/database"
	"github.com/nao1215/docscrape/internal/discovery"
	"github.com/nao1215/docscrape/internal/extract"
	"github.com/nao1215/docscrape/internal/log"
	"github.com/nao1215/docscrape/internal/model"
	"github.com/nao1215/docscrape/internal/storage"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape <url>",
		Short: "Scrape a documentation site into markdown files",
		Long: `Scrape downloads a documentation site and converts every page to
markdown with YAML frontmatter.

Pages are discovered through the site's sitemap.xml or llms.txt file,
falling back to recursive link crawling. Requests are paced by a global
delay shared across all workers so the site never sees bursts.

The output directory receives one .md file per page, plus:
  _manifest.json  crawl summary with per-page outcomes
  _index.md       table of contents for the scraped pages
  _state.json     resumable ledger, kept while pages remain pending

Examples:
  # Scrape into an automatically named directory
  docscrape scrape https://docs.livekit.io

  # Limit the crawl and slow it down
  docscrape scrape --max-pages 50 --delay 1s https://docs.pipecat.ai

  # Resume an interrupted crawl
  docscrape scrape --resume -o livekit-docs https://docs.livekit.io

  # Restrict the crawl to a documentation subtree
  docscrape scrape --include '/guides/' https://docs.example.com

Configuration file (.docscrape) example:
  defaults:
    delay: 500ms
  sites:
    docs.example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"`,
		Args: cobra.ExactArgs(1),
		RunE: runScrapeCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Output directory (default: derived from the site host)")
	cmd.Flags().IntP("max-pages", "p", 0,
		"Maximum number of pages to scrape (0 = unlimited)")
	cmd.Flags().DurationP("delay", "d", config.DefaultRequestDelay,
		"Minimum interval between requests, shared across workers")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of concurrent fetch workers")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().Int("retries", config.DefaultMaxRetries,
		"Fetch attempts per URL before recording a failure")
	cmd.Flags().Bool("resume", false,
		"Resume a previous crawl from the state ledger in the output directory")
	cmd.Flags().StringArray("include", nil,
		"URL regex; when set, only matching URLs are scraped (repeatable)")
	cmd.Flags().StringArray("exclude", nil,
		"URL regex; matching URLs are skipped (repeatable)")
	cmd.Flags().String("platform", "",
		"Platform adapter to use (default: auto-detect from the URL)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .docscrape in current or home directory)")
	cmd.Flags().BoolP("quiet", "q", false,
		"Suppress the crawl summary on stdout")
	cmd.Flags().Bool("no-archive", false,
		"Skip recording the run in the history database")

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown.
	// The first signal cancels the context; the engine drains its
	// inflight work and checkpoints before returning.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing inflight pages...")
		cancel()
	}()

	return runScrape(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.SeedURL = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = deriveOutputDir(cfg.SeedURL)
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.RequestDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxRetries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.Resume, err = cmd.Flags().GetBool("resume")
	if err != nil {
		return nil, err
	}

	cfg.IncludePatterns, err = cmd.Flags().GetStringArray("include")
	if err != nil {
		return nil, err
	}

	cfg.ExcludePatterns, err = cmd.Flags().GetStringArray("exclude")
	if err != nil {
		return nil, err
	}

	cfg.Platform, err = cmd.Flags().GetString("platform")
	if err != nil {
		return nil, err
	}

	cfg.Quiet, err = cmd.Flags().GetBool("quiet")
	if err != nil {
		return nil, err
	}

	noArchive, err := cmd.Flags().GetBool("no-archive")
	if err != nil {
		return nil, err
	}
	cfg.ArchiveDB = !noArchive

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if err := loadSiteConfigs(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadSiteConfigs loads the .docscrape file and merges the seed host's
// overrides into the config. An explicit --config path that does not
// exist is an error; a missing default file is not.
func loadSiteConfigs(cfg *config.Config) error {
	explicit := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath == "" {
		if explicit {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
		return nil
	}

	siteConfigs, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	cfg.SiteConfigs = siteConfigs

	seedHost := ""
	if u, err := url.Parse(cfg.SeedURL); err == nil {
		seedHost = u.Host
	}
	site := siteConfigs.GetSiteConfig(seedHost)
	if site.Delay > 0 {
		cfg.RequestDelay = time.Duration(site.Delay)
	}
	cfg.IncludePatterns = append(cfg.IncludePatterns, site.IncludePatterns...)
	cfg.ExcludePatterns = append(cfg.ExcludePatterns, site.ExcludePatterns...)

	return nil
}

// deriveOutputDir builds a directory name from the site host:
// docs.livekit.io becomes livekit-docs. Common documentation
// subdomain prefixes are stripped first.
func deriveOutputDir(seedURL string) string {
	u, err := url.Parse(seedURL)
	if err != nil || u.Hostname() == "" {
		return "docs"
	}

	host := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "docs.", "developer.", "developers."} {
		host = strings.TrimPrefix(host, prefix)
	}

	// Use the registrable name, not the TLD.
	if idx := strings.Index(host, "."); idx > 0 {
		host = host[:idx]
	}
	if host == "" {
		return "docs"
	}
	return host + "-docs"
}

// runScrape executes the scrape.
func runScrape(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ad, err := resolveAdapter(cfg)
	if err != nil {
		return err
	}
	logger.Info("starting scrape",
		"url", cfg.SeedURL,
		"platform", ad.Name,
		"output", cfg.OutputDir,
		"maxPages", cfg.MaxPages,
		"concurrency", cfg.Concurrency,
		"delay", cfg.RequestDelay,
	)

	store, err := storage.NewStore(cfg.OutputDir)
	if err != nil {
		return err
	}

	state, err := loadState(cfg, store, logger)
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg, ad, store, logger)
	if err != nil {
		return err
	}

	if !cfg.Quiet {
		fmt.Printf("Scraping %s...\n", cfg.SeedURL)
	}
	startTime := time.Now()

	manifest, runErr := engine.Run(ctx, state)

	if manifest != nil {
		if err := store.WriteIndex(manifest); err != nil {
			logger.Error("failed to write index", "error", err)
		}
		archiveRun(cfg, manifest, logger)
	}

	// A fully drained frontier means the ledger has no more work;
	// keep it only while pending URLs remain.
	if runErr == nil && len(state.Pending) == 0 {
		if err := store.RemoveState(); err != nil {
			logger.Warn("failed to remove state ledger", "error", err)
		}
	}

	if !cfg.Quiet && manifest != nil {
		printSummary(manifest, state, time.Since(startTime))
	}

	if runErr != nil && errors.Is(runErr, context.Canceled) {
		// Interrupted but checkpointed; resuming later is fine.
		fmt.Fprintln(os.Stderr, "Interrupted. Run again with --resume to continue.")
		return nil
	}
	return runErr
}

// resolveAdapter picks the platform adapter: the explicit --platform
// flag wins, then host matching, then the generic adapter.
func resolveAdapter(cfg *config.Config) (*adapter.Adapter, error) {
	if cfg.Platform != "" {
		ad, ok := adapter.ByName(cfg.Platform)
		if !ok {
			return nil, fmt.Errorf("unknown platform %q (see 'docscrape platforms')", cfg.Platform)
		}
		return ad, nil
	}
	return adapter.Resolve(cfg.SeedURL), nil
}

// loadState loads the resumable ledger when --resume is set, or
// starts fresh. Resuming without a ledger is not an error; the crawl
// simply starts over.
func loadState(cfg *config.Config, store *storage.Store, logger *slog.Logger) (*model.CrawlState, error) {
	if !cfg.Resume {
		return model.NewCrawlState(), nil
	}

	state, err := store.ReadState()
	if err != nil {
		if errors.Is(err, storage.ErrNoState) {
			logger.Info("no previous state found, starting fresh")
			return model.NewCrawlState(), nil
		}
		return nil, fmt.Errorf("load crawl state: %w", err)
	}
	return state, nil
}

// buildEngine wires the fetcher, discovery strategies, processor, and
// store into a crawl engine.
func buildEngine(cfg *config.Config, ad *adapter.Adapter, store *storage.Store, logger *slog.Logger) (*crawler.Engine, error) {
	site := config.SiteConfig{}
	if cfg.SiteConfigs != nil {
		site = cfg.SiteConfigs.GetSiteConfig(cfg.SeedHost())
	}

	client := &http.Client{Timeout: cfg.Timeout}
	limiter := rate.NewLimiter(rate.Every(cfg.RequestDelay), 1)
	fetcher := crawler.NewFetcher(client, limiter,
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithRetries(cfg.MaxRetries, cfg.RetryBackoff),
		crawler.WithHeaders(site.Headers),
		crawler.WithCookie(site.Cookie),
	)

	norm, err := crawler.NewNormalizer(cfg.SeedURL, ad.AllowCrossHost, cfg.TrackingParams)
	if err != nil {
		return nil, err
	}

	strategies, followLinks, err := discovery.ForAdapter(ad, fetcher, cfg.SeedURL)
	if err != nil {
		return nil, err
	}

	processor := extract.NewProcessor(ad)

	return crawler.NewEngine(cfg, ad, fetcher, processor, store, norm, logger, strategies, followLinks), nil
}

// archiveRun records the finished crawl in the history database.
// Archive failures are logged and swallowed; the filesystem manifest
// is the source of truth.
func archiveRun(cfg *config.Config, manifest *model.Manifest, logger *slog.Logger) {
	if !cfg.ArchiveDB {
		return
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open history database", "error", err)
		return
	}
	defer db.Close()

	ctx := context.Background()
	runID, err := db.InsertRun(ctx, manifest)
	if err != nil {
		logger.Warn("failed to archive run", "error", err)
		return
	}
	if err := db.CompleteRun(ctx, runID, manifest); err != nil {
		logger.Warn("failed to archive run pages", "error", err)
		return
	}
	logger.Info("run archived", "runID", runID, "dir", cfg.DBDir)
}

// printSummary prints the crawl totals to stdout.
func printSummary(manifest *model.Manifest, state *model.CrawlState, elapsed time.Duration) {
	fmt.Printf("\nScraped %d pages (%d skipped, %d failed) in %s\n",
		manifest.Successful(),
		manifest.Skipped(),
		manifest.Failed(),
		elapsed.Round(time.Millisecond),
	)
	if len(state.Pending) > 0 {
		fmt.Printf("%d pages still pending. Run again with --resume to continue.\n", len(state.Pending))
	}
	fmt.Printf("Output written to %s\n", manifest.OutputDir)
}
