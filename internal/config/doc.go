// Package config defines scrape run configuration, validation, and the
// optional .docscrape YAML file with per-site overrides.
package config
