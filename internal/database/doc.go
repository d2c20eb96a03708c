// Package database provides the SQLite-backed crawl history
// archive. Every finished crawl is recorded as a run with its page
// outcomes, so past scrapes can be listed and compared without
// keeping their output directories around.
package database
