// Package discovery implements URL discovery strategies for
// documentation sites. A strategy inspects well-known entry points
// such as sitemap.xml or llms.txt and returns candidate URLs for the
// crawl engine to seed its frontier with. Strategies fail soft: a
// missing sitemap is not an error, just an empty result.
package discovery
