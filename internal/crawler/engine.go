package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/docscrape/internal/adapter"
	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/model"
)

// Strategy finds the initial set of URLs for a crawl.
// Implementations live in the discovery package; the engine tries
// them in the order given by the platform adapter and seeds the
// frontier from the first one that yields candidates.
type Strategy interface {
	// Name returns the strategy name for logging.
	Name() string

	// Discover returns candidate URLs for the crawl.
	// An empty slice with a nil error means the strategy found
	// nothing and the next one should be tried.
	Discover(ctx context.Context) ([]model.PendingURL, error)
}

// Processor turns a fetched response into a document page.
// Implementations extract the main content, render it to markdown,
// and collect outbound links for recursive discovery.
type Processor interface {
	Process(entry model.PendingURL, fetched *FetchResult) (*model.DocumentPage, error)
}

// Store persists pages and crawl bookkeeping.
type Store interface {
	// WritePage persists a page and returns its path relative to
	// the output directory.
	WritePage(page *model.DocumentPage) (string, error)

	// WriteState checkpoints the crawl ledger atomically.
	WriteState(state *model.CrawlState) error

	// WriteManifest writes the final crawl manifest atomically.
	WriteManifest(manifest *model.Manifest) error
}

// Engine orchestrates a crawl: it seeds the frontier from discovery
// strategies, dispatches URLs to a bounded pool of fetch workers,
// and records every outcome in the crawl ledger.
//
// All frontier and ledger mutation happens on the goroutine that
// called Run. Workers only fetch and process; they report back over
// a channel and never share state.
type Engine struct {
	cfg       *config.Config
	adapter   *adapter.Adapter
	fetcher   *Fetcher
	processor Processor
	store     Store
	norm      *Normalizer
	logger    *slog.Logger

	// strategies are tried in order for fresh crawls.
	strategies []Strategy

	// followLinks enables feeding links from scraped pages back
	// into the frontier.
	followLinks bool
}

// NewEngine creates a crawl engine.
// followLinks controls recursive discovery; the caller derives it
// from the adapter's strategy list.
func NewEngine(
	cfg *config.Config,
	ad *adapter.Adapter,
	fetcher *Fetcher,
	processor Processor,
	store Store,
	norm *Normalizer,
	logger *slog.Logger,
	strategies []Strategy,
	followLinks bool,
) *Engine {
	return &Engine{
		cfg:         cfg,
		adapter:     ad,
		fetcher:     fetcher,
		processor:   processor,
		store:       store,
		norm:        norm,
		logger:      logger,
		strategies:  strategies,
		followLinks: followLinks,
	}
}

// result is what a worker reports back for one dispatched URL.
type result struct {
	entry model.PendingURL
	page  *model.DocumentPage
	err   error
}

// Run executes the crawl until the frontier drains, the page budget
// is met, or the context is cancelled. The given state may come from
// a previous interrupted crawl; terminal URLs in it are never
// refetched. Run always checkpoints before returning, so a cancelled
// crawl can be resumed.
func (e *Engine) Run(ctx context.Context, state *model.CrawlState) (*model.Manifest, error) {
	frontier := NewFrontier()
	for visited := range state.Visited {
		frontier.MarkSeen(visited)
	}

	if len(state.Pending) > 0 {
		frontier.EnqueueAll(state.Pending)
		e.logger.Info("resuming crawl",
			"pending", frontier.Len(),
			"completed", len(state.Visited))
	} else {
		if err := e.seed(ctx, frontier); err != nil {
			return nil, err
		}
	}

	manifest := model.NewManifest(e.adapter.Name, e.cfg.SeedURL, e.cfg.OutputDir)
	err := e.crawl(ctx, state, frontier)

	for _, record := range state.Visited {
		manifest.Record(record)
	}
	manifest.CompletedAt = time.Now().UTC()
	if werr := e.store.WriteManifest(manifest); werr != nil && err == nil {
		err = fmt.Errorf("write manifest: %w", werr)
	}

	return manifest, err
}

// seed fills the frontier for a fresh crawl. Strategies run in
// adapter order; the first one that yields candidates wins. When
// every strategy comes up empty the seed URL itself is enqueued and
// the crawl proceeds recursively from there.
func (e *Engine) seed(ctx context.Context, frontier *Frontier) error {
	for _, strategy := range e.strategies {
		candidates, err := strategy.Discover(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			e.logger.Warn("discovery strategy failed",
				"strategy", strategy.Name(), "error", err)
			continue
		}
		if len(candidates) == 0 {
			e.logger.Debug("discovery strategy found nothing", "strategy", strategy.Name())
			continue
		}

		normalized := e.normalizeCandidates(candidates)
		if len(normalized) == 0 {
			continue
		}
		sort.SliceStable(normalized, func(i, j int) bool {
			return e.adapter.Priority(normalized[i].URL) > e.adapter.Priority(normalized[j].URL)
		})
		added := frontier.EnqueueAll(normalized)
		e.logger.Info("frontier seeded",
			"strategy", strategy.Name(), "urls", added)
		return nil
	}

	seed, err := e.norm.Normalize(e.cfg.SeedURL)
	if err != nil {
		return fmt.Errorf("seed URL: %w", err)
	}
	frontier.Enqueue(model.PendingURL{URL: seed, Source: model.SourceSeed})
	e.logger.Info("no discovery strategy matched, crawling from seed URL", "url", seed)
	return nil
}

// normalizeCandidates normalizes each candidate URL and drops the
// ones that fail, such as cross-host links.
func (e *Engine) normalizeCandidates(candidates []model.PendingURL) []model.PendingURL {
	out := make([]model.PendingURL, 0, len(candidates))
	for _, c := range candidates {
		normalized, err := e.norm.Normalize(c.URL)
		if err != nil {
			e.logger.Debug("dropping candidate", "url", c.URL, "error", err)
			continue
		}
		c.URL = normalized
		out = append(out, c)
	}
	return out
}

// crawl runs the arbiter loop and the worker pool.
func (e *Engine) crawl(ctx context.Context, state *model.CrawlState, frontier *Frontier) error {
	concurrency := e.cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	jobs := make(chan model.PendingURL)
	results := make(chan result)

	g, workerCtx := errgroup.WithContext(ctx)
	for range concurrency {
		g.Go(func() error {
			return e.worker(workerCtx, jobs, results)
		})
	}

	inflight := make(map[string]model.PendingURL)
	done := ctx.Done()
	var held *model.PendingURL
	var fatal error

	checkpoint := func() error {
		pending := make([]model.PendingURL, 0, len(inflight)+frontier.Len()+1)
		for _, entry := range inflight {
			pending = append(pending, entry)
		}
		if held != nil {
			pending = append(pending, *held)
		}
		pending = append(pending, frontier.Pending()...)
		state.SetPending(pending)
		state.Seq++
		return e.store.WriteState(state)
	}

	for {
		if fatal == nil && ctx.Err() == nil && held == nil {
			held = e.nextEligible(state, frontier, checkpoint, &fatal)
		}

		if held == nil && len(inflight) == 0 {
			break
		}
		if e.budgetReached(state, len(inflight)) && len(inflight) == 0 {
			break
		}
		if (fatal != nil || ctx.Err() != nil) && len(inflight) == 0 {
			break
		}

		var dispatch chan<- model.PendingURL
		var next model.PendingURL
		if held != nil && fatal == nil && ctx.Err() == nil && !e.budgetReached(state, len(inflight)) {
			dispatch = jobs
			next = *held
		}
		if dispatch == nil && len(inflight) == 0 {
			break
		}

		select {
		case dispatch <- next:
			inflight[next.URL] = next
			held = nil

		case res := <-results:
			delete(inflight, res.entry.URL)
			if err := e.handleResult(ctx, state, frontier, res, checkpoint); err != nil {
				fatal = err
			}

		case <-done:
			// Stop dispatching; keep receiving until the
			// inflight work drains.
			done = nil
		}
	}

	close(jobs)
	if err := g.Wait(); err != nil && fatal == nil && err != context.Canceled {
		fatal = err
	}

	if err := checkpoint(); err != nil && fatal == nil {
		fatal = err
	}
	if fatal != nil {
		return fatal
	}
	return ctx.Err()
}

// budgetReached reports whether successes plus inflight work already
// cover the page budget. Counting inflight keeps the budget strict:
// no page beyond MaxPages is ever dispatched.
func (e *Engine) budgetReached(state *model.CrawlState, inflight int) bool {
	if e.cfg.MaxPages <= 0 {
		return false
	}
	return state.SuccessCount()+inflight >= e.cfg.MaxPages
}

// nextEligible dequeues until it finds a URL worth fetching.
// URLs rejected by the include and exclude patterns or the platform
// skip rules are recorded as skipped with a reason and checkpointed.
// A write failure during checkpointing is fatal and is reported
// through fatalOut.
func (e *Engine) nextEligible(state *model.CrawlState, frontier *Frontier, checkpoint func() error, fatalOut *error) *model.PendingURL {
	for {
		entry, ok := frontier.Dequeue()
		if !ok {
			return nil
		}
		if state.IsTerminal(entry.URL) {
			continue
		}

		reason := e.skipReason(entry.URL)
		if reason == "" {
			return &entry
		}

		e.logger.Debug("skipping url", "url", entry.URL, "reason", reason)
		state.RecordOutcome(entry.URL, model.PageRecord{
			URL:     entry.URL,
			Outcome: model.OutcomeSkipped,
			Reason:  reason,
		})
		if err := checkpoint(); err != nil {
			*fatalOut = fmt.Errorf("checkpoint: %w", err)
			return nil
		}
	}
}

// skipReason returns why a URL should not be fetched, or the empty
// string when it is eligible. Exclude patterns win over includes.
func (e *Engine) skipReason(pageURL string) string {
	for _, re := range e.cfg.Excludes() {
		if re.MatchString(pageURL) {
			return fmt.Sprintf("matches exclude pattern %q", re.String())
		}
	}
	if includes := e.cfg.Includes(); len(includes) > 0 {
		matched := false
		for _, re := range includes {
			if re.MatchString(pageURL) {
				matched = true
				break
			}
		}
		if !matched {
			return "matches no include pattern"
		}
	}
	if e.adapter.ShouldSkip(pageURL) {
		return fmt.Sprintf("skipped by %s platform rules", e.adapter.Name)
	}
	return ""
}

// handleResult records one worker outcome and feeds discovered links
// back into the frontier. Page persistence failures are fatal; fetch
// and processing failures only mark the page as failed.
func (e *Engine) handleResult(ctx context.Context, state *model.CrawlState, frontier *Frontier, res result, checkpoint func() error) error {
	if res.err != nil {
		if ctx.Err() != nil {
			// The crawl is shutting down. Leave the URL pending
			// so a resumed crawl retries it.
			frontier.Readmit(res.entry)
			return nil
		}
		e.logger.Warn("page failed", "url", res.entry.URL, "error", res.err)
		state.RecordOutcome(res.entry.URL, model.PageRecord{
			URL:     res.entry.URL,
			Outcome: model.OutcomeFailed,
			Reason:  res.err.Error(),
		})
		return checkpointOrErr(checkpoint)
	}

	path, err := e.store.WritePage(res.page)
	if err != nil {
		return fmt.Errorf("write page %s: %w", res.page.URL, err)
	}

	e.logger.Info("page scraped",
		"url", res.page.URL,
		"title", res.page.Title,
		"words", res.page.WordCount)
	state.RecordOutcome(res.page.URL, model.PageRecord{
		URL:       res.page.URL,
		Path:      path,
		Title:     res.page.Title,
		WordCount: res.page.WordCount,
		Outcome:   model.OutcomeSuccess,
		ScrapedAt: res.page.ScrapedAt,
	})

	if e.followLinks {
		added := 0
		for _, link := range res.page.Links {
			normalized, err := e.norm.Normalize(link)
			if err != nil {
				continue
			}
			if frontier.Enqueue(model.PendingURL{
				URL:    normalized,
				Source: model.SourceRecursive,
				Depth:  res.entry.Depth + 1,
			}) {
				added++
			}
		}
		if added > 0 {
			e.logger.Debug("links discovered", "url", res.page.URL, "new", added)
		}
	}

	return checkpointOrErr(checkpoint)
}

func checkpointOrErr(checkpoint func() error) error {
	if err := checkpoint(); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}

// worker fetches and processes URLs until the jobs channel closes.
// It never touches the frontier or the ledger; everything it learns
// goes back through the results channel, which the arbiter drains
// before shutting down.
func (e *Engine) worker(ctx context.Context, jobs <-chan model.PendingURL, results chan<- result) error {
	for entry := range jobs {
		res := result{entry: entry}

		fetched, err := e.fetcher.Fetch(ctx, entry.URL)
		if err != nil {
			res.err = err
		} else {
			page, err := e.processor.Process(entry, fetched)
			if err != nil {
				res.err = fmt.Errorf("process %s: %w", entry.URL, err)
			} else {
				res.page = page
			}
		}

		results <- res
	}
	return nil
}
