// Package model defines the core data types shared across docscrape:
// scraped pages, per-URL outcomes, the run manifest, and the resumable
// crawl state ledger.
//
// Types in this package are plain data carriers with no I/O. Persistence
// lives in the storage and database packages.
package model
