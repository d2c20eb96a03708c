package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestGetSiteConfig tests merging site entries over defaults.
func TestGetSiteConfig(t *testing.T) {
	t.Parallel()

	file := &File{
		Defaults: SiteConfig{
			Delay:   Duration(time.Second),
			Headers: map[string]string{"Accept-Language": "en"},
		},
		Sites: map[string]SiteConfig{
			"docs.example.com": {
				Cookie: "session=abc",
				Delay:  Duration(2 * time.Second),
				Headers: map[string]string{
					"Authorization": "Bearer token",
				},
				ExcludePatterns: []string{"/changelog"},
			},
		},
	}

	t.Run("unknown host gets the defaults", func(t *testing.T) {
		t.Parallel()

		got := file.GetSiteConfig("docs.other.com")
		if got.Delay != Duration(time.Second) {
			t.Errorf("expected default delay, got %v", got.Delay)
		}
		if got.Cookie != "" {
			t.Errorf("expected no cookie, got %q", got.Cookie)
		}
	})

	t.Run("site entry overrides defaults", func(t *testing.T) {
		t.Parallel()

		got := file.GetSiteConfig("docs.example.com")
		if got.Delay != Duration(2*time.Second) {
			t.Errorf("expected overridden delay, got %v", got.Delay)
		}
		if got.Cookie != "session=abc" {
			t.Errorf("expected site cookie, got %q", got.Cookie)
		}
		if got.Headers["Authorization"] != "Bearer token" {
			t.Errorf("expected merged headers, got %v", got.Headers)
		}
		if got.Headers["Accept-Language"] != "en" {
			t.Errorf("expected default header preserved, got %v", got.Headers)
		}
		if len(got.ExcludePatterns) != 1 {
			t.Errorf("expected site exclude patterns, got %v", got.ExcludePatterns)
		}
	})
}

// TestLoadConfigFile tests YAML config loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads sites and defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `defaults:
  delay: 1s
sites:
  docs.example.com:
    cookie: "session=abc"
    delay: 2s
    headers:
      Authorization: "Bearer token"
    excludePatterns:
      - /changelog
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		file, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if file.Defaults.Delay != Duration(time.Second) {
			t.Errorf("expected default delay 1s, got %v", file.Defaults.Delay)
		}
		site := file.GetSiteConfig("docs.example.com")
		if site.Cookie != "session=abc" || site.Delay != Duration(2*time.Second) {
			t.Errorf("unexpected site config %+v", site)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed YAML is an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("sites: ["), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("invalid duration is an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("defaults:\n  delay: fast\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Fatal("expected error for unparseable duration")
		}
	})

	t.Run("empty file yields a usable config", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, nil, 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		file, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if got := file.GetSiteConfig("docs.example.com"); got.Cookie != "" {
			t.Errorf("expected zero site config, got %+v", got)
		}
	})
}

// TestFindConfigFile tests config file resolution.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path wins", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path yields empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}
