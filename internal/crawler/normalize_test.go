package crawler

import (
	"errors"
	"testing"
)

// TestNormalize tests URL canonicalization.
func TestNormalize(t *testing.T) {
	t.Parallel()

	norm, err := NewNormalizer("https://docs.example.com/guides", false, []string{"utm_source", "utm_medium", "ref"})
	if err != nil {
		t.Fatalf("failed to create normalizer: %v", err)
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "absolute URL unchanged",
			in:   "https://docs.example.com/guides/intro",
			want: "https://docs.example.com/guides/intro",
		},
		{
			name: "relative URL resolved against base",
			in:   "/api/tokens",
			want: "https://docs.example.com/api/tokens",
		},
		{
			name: "fragment stripped",
			in:   "https://docs.example.com/guides/intro#section-2",
			want: "https://docs.example.com/guides/intro",
		},
		{
			name: "tracking parameters stripped",
			in:   "https://docs.example.com/guides?utm_source=x&utm_medium=y&page=2",
			want: "https://docs.example.com/guides?page=2",
		},
		{
			name: "remaining query sorted",
			in:   "https://docs.example.com/search?z=1&a=2",
			want: "https://docs.example.com/search?a=2&z=1",
		},
		{
			name: "host lowercased",
			in:   "https://DOCS.Example.COM/guides",
			want: "https://docs.example.com/guides",
		},
		{
			name: "default https port dropped",
			in:   "https://docs.example.com:443/guides",
			want: "https://docs.example.com/guides",
		},
		{
			name: "trailing slash trimmed",
			in:   "https://docs.example.com/guides/",
			want: "https://docs.example.com/guides",
		},
		{
			name: "root path stays slash",
			in:   "https://docs.example.com",
			want: "https://docs.example.com/",
		},
		{
			name: "duplicate slashes collapsed",
			in:   "https://docs.example.com/guides//intro",
			want: "https://docs.example.com/guides/intro",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := norm.Normalize(tt.in)
			if err != nil {
				t.Fatalf("Normalize(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	t.Run("two spellings normalize identically", func(t *testing.T) {
		t.Parallel()

		a, err := norm.Normalize("https://docs.example.com/guides/intro/?ref=tw#top")
		if err != nil {
			t.Fatalf("normalize failed: %v", err)
		}
		b, err := norm.Normalize("/guides/intro")
		if err != nil {
			t.Fatalf("normalize failed: %v", err)
		}
		if a != b {
			t.Errorf("expected identical canonical forms, got %q and %q", a, b)
		}
	})

	t.Run("cross-host rejected", func(t *testing.T) {
		t.Parallel()

		_, err := norm.Normalize("https://other.example.com/page")
		if !errors.Is(err, ErrCrossHost) {
			t.Errorf("expected ErrCrossHost, got %v", err)
		}
	})

	t.Run("non-http scheme rejected", func(t *testing.T) {
		t.Parallel()

		_, err := norm.Normalize("ftp://docs.example.com/file")
		if !errors.Is(err, ErrUnsupportedScheme) {
			t.Errorf("expected ErrUnsupportedScheme, got %v", err)
		}
	})
}

// TestNormalizeCrossHostAllowed tests cross-host mode.
func TestNormalizeCrossHostAllowed(t *testing.T) {
	t.Parallel()

	norm, err := NewNormalizer("https://docs.example.com", true, nil)
	if err != nil {
		t.Fatalf("failed to create normalizer: %v", err)
	}

	got, err := norm.Normalize("https://cdn.example.net/page")
	if err != nil {
		t.Fatalf("expected cross-host URL to pass, got %v", err)
	}
	if got != "https://cdn.example.net/page" {
		t.Errorf("unexpected canonical form %q", got)
	}
}

// TestNewNormalizerRejectsBadBase tests constructor validation.
func TestNewNormalizerRejectsBadBase(t *testing.T) {
	t.Parallel()

	if _, err := NewNormalizer("ftp://example.com", false, nil); err == nil {
		t.Error("expected error for non-http base URL")
	}
}
