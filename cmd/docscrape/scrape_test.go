package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/log"
	"github.com/nao1215/docscrape/internal/model"
	"github.com/nao1215/docscrape/internal/storage"
)

// parseScrapeFlags builds a config from scrape command flags.
func parseScrapeFlags(t *testing.T, url string, flags ...string) *config.Config {
	t.Helper()

	cmd := NewScrapeCmd()
	if err := cmd.ParseFlags(flags); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	cfg, err := buildConfig(cmd, []string{url})
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}
	return cfg
}

// TestNewScrapeCmd tests the scrape command creation.
func TestNewScrapeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScrapeCmd()

	t.Run("requires exactly one argument", func(t *testing.T) {
		t.Parallel()
		if err := cmd.Args(cmd, []string{}); err == nil {
			t.Error("expected error for missing URL")
		}
		if err := cmd.Args(cmd, []string{"a", "b"}); err == nil {
			t.Error("expected error for extra arguments")
		}
		if err := cmd.Args(cmd, []string{"https://docs.example.com"}); err != nil {
			t.Errorf("unexpected error for one argument: %v", err)
		}
	})

	t.Run("has expected flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{
			"output", "max-pages", "delay", "concurrency", "timeout",
			"retries", "resume", "include", "exclude", "platform",
			"config", "quiet", "no-archive",
		} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("missing flag %q", name)
			}
		}
	})
}

// TestBuildConfig tests flag to config mapping.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cfg := parseScrapeFlags(t, "https://docs.example.com")
		if cfg.SeedURL != "https://docs.example.com" {
			t.Errorf("unexpected seed URL %q", cfg.SeedURL)
		}
		if cfg.OutputDir != "example-docs" {
			t.Errorf("expected derived output dir, got %q", cfg.OutputDir)
		}
		if cfg.RequestDelay != config.DefaultRequestDelay {
			t.Errorf("expected default delay, got %v", cfg.RequestDelay)
		}
		if !cfg.ArchiveDB {
			t.Error("expected archiving enabled by default")
		}
	})

	t.Run("flags override defaults", func(t *testing.T) {
		t.Parallel()

		cfg := parseScrapeFlags(t, "https://docs.example.com",
			"-o", "custom-dir",
			"--max-pages", "25",
			"--delay", "2s",
			"--include", "/guides/",
			"--include", "/api/",
			"--exclude", "/deprecated/",
			"--no-archive",
			"--resume",
		)

		if cfg.OutputDir != "custom-dir" {
			t.Errorf("expected custom output dir, got %q", cfg.OutputDir)
		}
		if cfg.MaxPages != 25 {
			t.Errorf("expected max pages 25, got %d", cfg.MaxPages)
		}
		if cfg.RequestDelay != 2*time.Second {
			t.Errorf("expected 2s delay, got %v", cfg.RequestDelay)
		}
		if len(cfg.IncludePatterns) != 2 || len(cfg.ExcludePatterns) != 1 {
			t.Errorf("unexpected patterns %v %v", cfg.IncludePatterns, cfg.ExcludePatterns)
		}
		if cfg.ArchiveDB {
			t.Error("expected archiving disabled by --no-archive")
		}
		if !cfg.Resume {
			t.Error("expected resume enabled")
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewScrapeCmd()
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		if err := cmd.ParseFlags([]string{"-c", missing}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		if _, err := buildConfig(cmd, []string{"https://docs.example.com"}); err == nil {
			t.Fatal("expected error for missing config file")
		}
	})

	t.Run("site config overrides the delay", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), config.DefaultConfigFile)
		content := "sites:\n  docs.example.com:\n    delay: 3s\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg := parseScrapeFlags(t, "https://docs.example.com", "-c", path)
		if cfg.RequestDelay != 3*time.Second {
			t.Errorf("expected site delay 3s, got %v", cfg.RequestDelay)
		}
	})
}

// TestDeriveOutputDir tests output directory derivation.
func TestDeriveOutputDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"docs subdomain", "https://docs.livekit.io", "livekit-docs"},
		{"www prefix", "https://www.example.com/docs", "example-docs"},
		{"developer prefix", "https://developer.mozilla.org", "mozilla-docs"},
		{"bare host", "https://pipecat.ai", "pipecat-docs"},
		{"host without dots", "http://localhost:8080", "localhost-docs"},
		{"unparseable", "://bad", "docs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := deriveOutputDir(tt.url); got != tt.want {
				t.Errorf("deriveOutputDir(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

// TestResolveAdapter tests platform adapter selection.
func TestResolveAdapter(t *testing.T) {
	t.Parallel()

	t.Run("explicit platform wins", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.SeedURL = "https://docs.example.com"
		cfg.Platform = "livekit"

		ad, err := resolveAdapter(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ad.Name != "livekit" {
			t.Errorf("expected livekit, got %q", ad.Name)
		}
	})

	t.Run("unknown platform is an error", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.SeedURL = "https://docs.example.com"
		cfg.Platform = "confluence"

		if _, err := resolveAdapter(cfg); err == nil {
			t.Fatal("expected error for unknown platform")
		}
	})

	t.Run("auto-detects from the URL", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.SeedURL = "https://docs.pipecat.ai/intro"

		ad, err := resolveAdapter(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ad.Name != "pipecat" {
			t.Errorf("expected pipecat, got %q", ad.Name)
		}
	})
}

// TestLoadState tests resume state loading.
func TestLoadState(t *testing.T) {
	t.Parallel()

	logger := log.NewLogger(&bytes.Buffer{}, false)

	t.Run("fresh run ignores any ledger", func(t *testing.T) {
		t.Parallel()

		store, err := storage.NewStore(t.TempDir())
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		cfg := config.NewConfig()
		state, err := loadState(cfg, store, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(state.Visited) != 0 || len(state.Pending) != 0 {
			t.Errorf("expected empty state, got %+v", state)
		}
	})

	t.Run("resume without a ledger starts fresh", func(t *testing.T) {
		t.Parallel()

		store, err := storage.NewStore(t.TempDir())
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		cfg := config.NewConfig()
		cfg.Resume = true
		state, err := loadState(cfg, store, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(state.Visited) != 0 {
			t.Errorf("expected empty state, got %+v", state)
		}
	})

	t.Run("resume loads the ledger", func(t *testing.T) {
		t.Parallel()

		store, err := storage.NewStore(t.TempDir())
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		saved := model.NewCrawlState()
		saved.Seq = 4
		saved.SetPending([]model.PendingURL{{URL: "https://docs.example.com/a"}})
		if err := store.WriteState(saved); err != nil {
			t.Fatalf("failed to write state: %v", err)
		}

		cfg := config.NewConfig()
		cfg.Resume = true
		state, err := loadState(cfg, store, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state.Seq != 4 || len(state.Pending) != 1 {
			t.Errorf("unexpected loaded state %+v", state)
		}
	})
}

// TestTruncate tests URL truncation for table output.
func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short string unchanged", "short", 10, "short"},
		{"exact length unchanged", "12345", 5, "12345"},
		{"long string gets ellipsis", "https://docs.example.com/very/long", 20, "https://docs.exam..."},
		{"tiny max", "abcdef", 2, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := truncate(tt.in, tt.max); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
