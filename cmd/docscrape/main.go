// Package main provides the entry point for the docscrape CLI.
//
// docscrape downloads documentation websites and converts them to
// clean markdown files, one per page, with a manifest and table of
// contents for the whole crawl.
//
// Usage:
//
//	docscrape scrape https://docs.example.com
//	docscrape scrape --resume -o example-docs https://docs.example.com
//
// See --help for all available options.
package main

// main is the entry point for docscrape.
func main() {
	Execute()
}
