// Package extract pulls the main documentation content out of
// fetched pages. It strips navigation chrome with the platform
// adapter's skip selectors, locates the content root with its
// content selectors, and resolves the page title from metadata.
// The Processor type ties extraction and markdown rendering together
// behind the crawl engine's processing interface.
package extract
