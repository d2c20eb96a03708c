package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings in
// time.ParseDuration syntax, such as "500ms" or "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"500ms\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// SiteConfig holds per-site overrides for a single documentation host.
// This allows customizing crawl behavior for sites that need cookies,
// extra headers, or different pacing.
type SiteConfig struct {
	// Cookie is an HTTP cookie sent with every request to this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers included in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Delay overrides the global request delay for this site.
	// Zero means the global delay is used.
	Delay Duration `yaml:"delay,omitempty"`

	// IncludePatterns are URL regexes to include for this site.
	IncludePatterns []string `yaml:"includePatterns,omitempty"`

	// ExcludePatterns are URL regexes to exclude for this site.
	ExcludePatterns []string `yaml:"excludePatterns,omitempty"`
}

// File represents the structure of the .docscrape configuration file.
type File struct {
	// Sites maps documentation hosts to their overrides.
	// Keys are hosts without scheme (e.g. "docs.example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to all sites unless overridden per site.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for host, merging the
// site-specific entry over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	siteConfig, ok := cf.Sites[host]
	if !ok {
		return result
	}
	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.Delay != 0 {
		result.Delay = siteConfig.Delay
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range siteConfig.Headers {
			result.Headers[k] = v
		}
	}
	if len(siteConfig.IncludePatterns) > 0 {
		result.IncludePatterns = siteConfig.IncludePatterns
	}
	if len(siteConfig.ExcludePatterns) > 0 {
		result.ExcludePatterns = siteConfig.ExcludePatterns
	}
	return result
}
