package render

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// skippedElements never contribute output.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"iframe":   true,
	"svg":      true,
	"head":     true,
	"button":   true,
}

// Markdown renders a DOM subtree as markdown text.
// The output ends with a single trailing newline and never contains
// more than one consecutive blank line.
func Markdown(root *html.Node) string {
	if root == nil {
		return ""
	}
	var r renderer
	r.node(root, 0)
	return tidy(r.sb.String())
}

// renderer accumulates markdown output while walking the DOM.
type renderer struct {
	sb strings.Builder
}

// node renders a single DOM node. listDepth tracks how many list
// levels enclose the node, for indenting nested list items.
func (r *renderer) node(n *html.Node, listDepth int) {
	switch n.Type {
	case html.TextNode:
		r.sb.WriteString(collapseSpace(n.Data))
		return
	case html.DocumentNode:
		r.children(n, listDepth)
		return
	case html.ElementNode:
		// handled below
	default:
		return
	}

	if skippedElements[n.Data] {
		return
	}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		text := strings.TrimSpace(r.inline(n))
		if text != "" {
			fmt.Fprintf(&r.sb, "\n\n%s %s\n\n", strings.Repeat("#", level), text)
		}

	case "p":
		text := strings.TrimSpace(r.inline(n))
		if text != "" {
			fmt.Fprintf(&r.sb, "\n\n%s\n\n", text)
		}

	case "br":
		r.sb.WriteString("\n")

	case "hr":
		r.sb.WriteString("\n\n---\n\n")

	case "pre":
		r.codeBlock(n)

	case "code":
		if text := rawText(n); text != "" {
			fmt.Fprintf(&r.sb, "`%s`", strings.TrimSpace(text))
		}

	case "strong", "b":
		if text := strings.TrimSpace(r.inline(n)); text != "" {
			fmt.Fprintf(&r.sb, "**%s**", text)
		}

	case "em", "i":
		if text := strings.TrimSpace(r.inline(n)); text != "" {
			fmt.Fprintf(&r.sb, "*%s*", text)
		}

	case "a":
		r.link(n)

	case "img":
		if src := attr(n, "src"); src != "" {
			fmt.Fprintf(&r.sb, "![%s](%s)", attr(n, "alt"), src)
		}

	case "ul":
		r.list(n, listDepth, false)

	case "ol":
		r.list(n, listDepth, true)

	case "blockquote":
		r.blockquote(n, listDepth)

	case "table":
		r.table(n)

	default:
		r.children(n, listDepth)
	}
}

// children renders all child nodes in order.
func (r *renderer) children(n *html.Node, listDepth int) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.node(c, listDepth)
	}
}

// inline renders a subtree into a standalone string with inline
// formatting only. Block elements inside are flattened to text.
func (r *renderer) inline(n *html.Node) string {
	var inner renderer
	inner.children(n, 0)
	return collapseSpace(inner.sb.String())
}

// link renders an anchor. Anchors without an href, or that wrap no
// text, fall back to their plain content.
func (r *renderer) link(n *html.Node) {
	text := strings.TrimSpace(r.inline(n))
	href := strings.TrimSpace(attr(n, "href"))
	if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "#") {
		r.sb.WriteString(text)
		return
	}
	if text == "" {
		return
	}
	fmt.Fprintf(&r.sb, "[%s](%s)", text, href)
}

// codeBlock renders a <pre> element as a fenced code block, taking
// the language hint from a language-* class on the pre or its code
// child.
func (r *renderer) codeBlock(n *html.Node) {
	lang := languageHint(n)
	if lang == "" {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "code" {
				lang = languageHint(c)
				break
			}
		}
	}

	code := strings.TrimRight(rawText(n), "\n")
	code = strings.TrimPrefix(code, "\n")
	fmt.Fprintf(&r.sb, "\n\n```%s\n%s\n```\n\n", lang, code)
}

// list renders ordered and unordered lists, indenting nested lists
// by two spaces per level.
func (r *renderer) list(n *html.Node, listDepth int, ordered bool) {
	if listDepth == 0 {
		r.sb.WriteString("\n\n")
	} else {
		r.sb.WriteString("\n")
	}

	indent := strings.Repeat("  ", listDepth)
	index := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		index++

		marker := "-"
		if ordered {
			marker = fmt.Sprintf("%d.", index)
		}

		var item renderer
		item.children(c, listDepth+1)
		text := strings.TrimSpace(tidy(item.sb.String()))
		if text == "" {
			continue
		}

		lines := strings.Split(text, "\n")
		fmt.Fprintf(&r.sb, "%s%s %s\n", indent, marker, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) == "" {
				continue
			}
			// Continuation lines keep nested list indentation.
			if strings.HasPrefix(line, "  ") {
				fmt.Fprintf(&r.sb, "%s%s\n", indent, line)
			} else {
				fmt.Fprintf(&r.sb, "%s  %s\n", indent, line)
			}
		}
	}

	if listDepth == 0 {
		r.sb.WriteString("\n")
	}
}

// blockquote renders a blockquote with every line prefixed by "> ".
func (r *renderer) blockquote(n *html.Node, listDepth int) {
	var inner renderer
	inner.children(n, listDepth)
	text := strings.TrimSpace(tidy(inner.sb.String()))
	if text == "" {
		return
	}

	r.sb.WriteString("\n\n")
	for line := range strings.Lines(text) {
		r.sb.WriteString("> ")
		r.sb.WriteString(strings.TrimRight(line, "\n"))
		r.sb.WriteString("\n")
	}
	r.sb.WriteString("\n")
}

// table renders a pipe table. The first row supplies the header;
// a separator row is synthesized from its cell count.
func (r *renderer) table(n *html.Node) {
	rows := tableRows(n)
	if len(rows) == 0 {
		return
	}

	r.sb.WriteString("\n\n")
	for i, row := range rows {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, strings.ReplaceAll(strings.TrimSpace(r.inline(cell)), "|", "\\|"))
		}
		fmt.Fprintf(&r.sb, "| %s |\n", strings.Join(cells, " | "))

		if i == 0 {
			seps := make([]string, len(cells))
			for j := range seps {
				seps[j] = "---"
			}
			fmt.Fprintf(&r.sb, "| %s |\n", strings.Join(seps, " | "))
		}
	}
	r.sb.WriteString("\n")
}

// tableRows collects the tr elements of a table in document order,
// each as its th and td cells.
func tableRows(n *html.Node) [][]*html.Node {
	rows := make([][]*html.Node, 0)

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "tr" {
			cells := make([]*html.Node, 0)
			for c := node.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "th" || c.Data == "td") {
					cells = append(cells, c)
				}
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return rows
}

// languageHint extracts a language name from a language-* or lang-*
// class attribute.
func languageHint(n *html.Node) string {
	for _, class := range strings.Fields(attr(n, "class")) {
		if after, ok := strings.CutPrefix(class, "language-"); ok {
			return after
		}
		if after, ok := strings.CutPrefix(class, "lang-"); ok {
			return after
		}
	}
	return ""
}

// rawText returns the concatenated text of a subtree without any
// whitespace collapsing. Used for code, where whitespace matters.
func rawText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// attr retrieves an attribute value from an HTML node.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// collapseSpace collapses runs of whitespace into single spaces,
// preserving leading and trailing boundaries as single spaces.
func collapseSpace(s string) string {
	if s == "" {
		return ""
	}
	fields := strings.Fields(s)
	joined := strings.Join(fields, " ")
	if joined == "" {
		return " "
	}
	if isSpace(s[0]) {
		joined = " " + joined
	}
	if isSpace(s[len(s)-1]) {
		joined += " "
	}
	return joined
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// tidy trims the output and collapses runs of blank lines into one.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true

	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, trimmed)
		blank = false
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}
