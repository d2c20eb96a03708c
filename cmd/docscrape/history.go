package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/database"
	"github.com/nao1215/docscrape/internal/model"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past scrape runs from the history database",
		Long: `History lists the scrape runs recorded in the local history database.
With a run ID argument it shows the per-page outcomes of that run.

Examples:
  # List the most recent runs
  docscrape history

  # List runs for one platform
  docscrape history --platform livekit

  # Show the pages of run 3
  docscrape history 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("platform", "", "Only show runs for this platform")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no scrape history yet: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if len(args) == 1 {
		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run ID %q: %w", args[0], err)
		}
		return showRun(ctx, cmd, db, runID)
	}

	platform, err := cmd.Flags().GetString("platform")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	return listRuns(ctx, cmd, db, platform, limit)
}

// listRuns prints archived runs, newest first.
func listRuns(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, platform string, limit int) error {
	runs, err := db.ListRuns(ctx, platform, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No scrape runs recorded.")
		return nil
	}

	fmt.Fprintf(out, "%-5s %-12s %-35s %-17s %8s %7s %7s\n",
		"ID", "PLATFORM", "URL", "STARTED", "SCRAPED", "FAILED", "WORDS")
	for _, run := range runs {
		fmt.Fprintf(out, "%-5d %-12s %-35s %-17s %8d %7d %7d\n",
			run.ID,
			run.Platform,
			truncate(run.BaseURL, 35),
			run.StartedAt.Format("2006-01-02 15:04"),
			run.PagesScraped,
			run.PagesFailed,
			run.TotalWords,
		)
	}
	return nil
}

// showRun prints one run's summary and page outcomes.
func showRun(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, runID int64) error {
	run, err := db.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	pages, err := db.ListPages(ctx, runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %d: %s (%s)\n", run.ID, run.BaseURL, run.Platform)
	fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Format(time.RFC3339))
	if !run.CompletedAt.IsZero() {
		fmt.Fprintf(out, "Finished: %s\n", run.CompletedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(out, "Output:   %s\n", run.OutputDir)
	fmt.Fprintf(out, "Pages:    %d scraped, %d skipped, %d failed, %d words\n\n",
		run.PagesScraped, run.PagesSkipped, run.PagesFailed, run.TotalWords)

	for _, page := range pages {
		switch page.Outcome {
		case model.OutcomeSuccess:
			fmt.Fprintf(out, "  ok      %s (%d words)\n", page.URL, page.WordCount)
		case model.OutcomeSkipped:
			fmt.Fprintf(out, "  skip    %s (%s)\n", page.URL, page.Reason)
		case model.OutcomeFailed:
			fmt.Fprintf(out, "  failed  %s (%s)\n", page.URL, page.Reason)
		}
	}
	return nil
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
