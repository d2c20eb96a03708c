// Package render converts extracted HTML content into markdown.
// It walks the DOM tree produced by golang.org/x/net/html and emits
// CommonMark-style output: ATX headings, fenced code blocks with
// language hints, nested lists, pipe tables, and blockquotes.
package render
