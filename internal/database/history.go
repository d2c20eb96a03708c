package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/docscrape/internal/model"
)

// DBFileName is the SQLite database filename inside the data
// directory.
const DBFileName = "docscrape.db"

// HistoryDB archives finished crawls in SQLite.
// One database holds every run across all platforms, which keeps
// cross-run queries simple.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// With CreateIfNotExists false, a missing database is an error
// rather than an empty new file.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection strings: mode=rw prevents
	// creating new files, mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Runs store one row per crawl invocation
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		platform TEXT NOT NULL,
		base_url TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		completed_at DATETIME,
		pages_scraped INTEGER DEFAULT 0,
		pages_skipped INTEGER DEFAULT 0,
		pages_failed INTEGER DEFAULT 0,
		total_words INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_platform ON runs(platform);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Pages store per-URL outcomes for each run
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		url TEXT NOT NULL,
		title TEXT,
		path TEXT,
		word_count INTEGER DEFAULT 0,
		outcome TEXT NOT NULL,
		reason TEXT,
		scraped_at DATETIME,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// InsertRun records the start of a crawl and returns its run ID.
func (hdb *HistoryDB) InsertRun(ctx context.Context, manifest *model.Manifest) (int64, error) {
	query := `
	INSERT INTO runs (platform, base_url, output_dir, started_at)
	VALUES (?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		manifest.Platform,
		manifest.BaseURL,
		manifest.OutputDir,
		manifest.StartedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	return result.LastInsertId()
}

// CompleteRun fills in the final counters of a crawl and archives
// its page outcomes.
func (hdb *HistoryDB) CompleteRun(ctx context.Context, runID int64, manifest *model.Manifest) error {
	totalWords := 0
	for _, page := range manifest.Pages {
		if page.Outcome == model.OutcomeSuccess {
			totalWords += page.WordCount
		}
	}

	query := `
	UPDATE runs SET
		completed_at = ?,
		pages_scraped = ?,
		pages_skipped = ?,
		pages_failed = ?,
		total_words = ?
	WHERE id = ?
	`

	_, err := hdb.db.ExecContext(ctx, query,
		manifest.CompletedAt.UTC().Format(time.RFC3339),
		manifest.Successful(),
		manifest.Skipped(),
		manifest.Failed(),
		totalWords,
		runID,
	)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}

	for _, page := range manifest.Pages {
		if err := hdb.upsertPage(ctx, runID, page); err != nil {
			return err
		}
	}
	return nil
}

// upsertPage inserts or updates one page outcome for a run.
// Resumed crawls rewrite the same run's pages, so duplicates update
// in place.
func (hdb *HistoryDB) upsertPage(ctx context.Context, runID int64, page model.PageRecord) error {
	query := `
	INSERT INTO pages (run_id, url, title, path, word_count, outcome, reason, scraped_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, url) DO UPDATE SET
		title = excluded.title,
		path = excluded.path,
		word_count = excluded.word_count,
		outcome = excluded.outcome,
		reason = excluded.reason,
		scraped_at = excluded.scraped_at
	`

	_, err := hdb.db.ExecContext(ctx, query,
		runID,
		page.URL,
		page.Title,
		page.Path,
		page.WordCount,
		string(page.Outcome),
		page.Reason,
		page.ScrapedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert page %s: %w", page.URL, err)
	}
	return nil
}

// RunRecord is one archived crawl.
type RunRecord struct {
	// ID is the run's database identifier.
	ID int64

	// Platform is the adapter name used for the crawl.
	Platform string

	// BaseURL is the seed URL.
	BaseURL string

	// OutputDir is where the pages were written.
	OutputDir string

	// StartedAt is when the crawl began.
	StartedAt time.Time

	// CompletedAt is when the crawl finished. Zero for runs that
	// never completed.
	CompletedAt time.Time

	// PagesScraped, PagesSkipped, and PagesFailed are the outcome
	// counters.
	PagesScraped int
	PagesSkipped int
	PagesFailed  int

	// TotalWords is the word count across all scraped pages.
	TotalWords int
}

// ListRuns returns archived runs, newest first. platform filters to
// one adapter when non-empty; limit caps the result when positive.
func (hdb *HistoryDB) ListRuns(ctx context.Context, platform string, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, platform, base_url, output_dir, started_at, completed_at,
	       pages_scraped, pages_skipped, pages_failed, total_words
	FROM runs
	`
	args := make([]any, 0, 2)

	if platform != "" {
		query += " WHERE platform = ?"
		args = append(args, platform)
	}
	query += " ORDER BY started_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var run RunRecord
		var started string
		var completed sql.NullString

		if err := rows.Scan(
			&run.ID,
			&run.Platform,
			&run.BaseURL,
			&run.OutputDir,
			&started,
			&completed,
			&run.PagesScraped,
			&run.PagesSkipped,
			&run.PagesFailed,
			&run.TotalWords,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		run.StartedAt = parseTimestamp(started)
		if completed.Valid {
			run.CompletedAt = parseTimestamp(completed.String)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// ListPages returns the archived page outcomes of one run in URL
// order.
func (hdb *HistoryDB) ListPages(ctx context.Context, runID int64) ([]model.PageRecord, error) {
	query := `
	SELECT url, title, path, word_count, outcome, reason, scraped_at
	FROM pages
	WHERE run_id = ?
	ORDER BY url
	`

	rows, err := hdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var pages []model.PageRecord
	for rows.Next() {
		var page model.PageRecord
		var outcome string
		var scrapedAt sql.NullString

		if err := rows.Scan(
			&page.URL,
			&page.Title,
			&page.Path,
			&page.WordCount,
			&outcome,
			&page.Reason,
			&scrapedAt,
		); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}

		page.Outcome = model.Outcome(outcome)
		if scrapedAt.Valid {
			page.ScrapedAt = parseTimestamp(scrapedAt.String)
		}
		pages = append(pages, page)
	}

	return pages, rows.Err()
}

// GetRun retrieves one archived run by ID.
// It returns sql.ErrNoRows wrapped when the run does not exist.
func (hdb *HistoryDB) GetRun(ctx context.Context, runID int64) (*RunRecord, error) {
	query := `
	SELECT id, platform, base_url, output_dir, started_at, completed_at,
	       pages_scraped, pages_skipped, pages_failed, total_words
	FROM runs
	WHERE id = ?
	`

	var run RunRecord
	var started string
	var completed sql.NullString

	err := hdb.db.QueryRowContext(ctx, query, runID).Scan(
		&run.ID,
		&run.Platform,
		&run.BaseURL,
		&run.OutputDir,
		&started,
		&completed,
		&run.PagesScraped,
		&run.PagesSkipped,
		&run.PagesFailed,
		&run.TotalWords,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d not found: %w", runID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	run.StartedAt = parseTimestamp(started)
	if completed.Valid {
		run.CompletedAt = parseTimestamp(completed.String)
	}
	return &run, nil
}

// timestampFormats contains the timestamp formats that SQLite may
// return. The order matters: more specific formats come first.
var timestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts each known format in turn and returns the
// zero time when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
