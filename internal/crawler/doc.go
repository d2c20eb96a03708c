// Package crawler implements the crawl engine: URL normalization, the
// work frontier, paced fetching with retries, and the worker pool that
// drives pages from discovery to written Markdown.
//
// The engine follows a single-writer model. Fetching, extraction, and
// rendering run concurrently across workers, but every frontier and
// state mutation goes through one arbiter loop, so no URL is ever
// dispatched twice and the visited/pending invariant holds at each
// checkpoint.
package crawler
