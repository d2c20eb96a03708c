// Package storage persists crawl output to the filesystem: one
// markdown file per page with YAML frontmatter, a _manifest.json
// summary, an _index.md table of contents, and the _state.json
// ledger that makes interrupted crawls resumable. The ledger and the
// manifest are written atomically through a temp file and rename so
// a crash never leaves a truncated file behind.
package storage
