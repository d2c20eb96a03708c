// Package adapter provides per-platform crawl configuration.
//
// An Adapter is a capability record rather than a type hierarchy: it
// carries the content selectors, skip rules, and discovery strategy
// order for one documentation platform. New platforms register a record
// keyed on host patterns; unknown hosts fall back to the generic record.
package adapter
