// Package markdown converts between Markdown source and rich-text
// documents, and imports pasted HTML by way of Markdown.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/eringen/folio/document"
)

var engine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlightExtension{},
	),
)

// GitHub alert markers mapped to callout variants.
var alertVariants = map[string]string{
	"[!NOTE]":      "info",
	"[!TIP]":       "success",
	"[!IMPORTANT]": "info",
	"[!WARNING]":   "warning",
	"[!CAUTION]":   "error",
}

// Parse converts Markdown source into a normalized document.
func Parse(src string) document.Document {
	source := []byte(src)
	root := engine.Parser().Parse(text.NewReader(source))
	var blocks []document.Node
	for c := root.FirstChild(); c != nil; c = c.NextSibling() {
		blocks = append(blocks, convertBlock(c, source)...)
	}
	return document.New(blocks...)
}

func convertBlock(n ast.Node, src []byte) []document.Node {
	switch n := n.(type) {
	case *ast.Heading:
		h := document.Node{Type: document.Heading, Level: n.Level, Children: inlines(n, src, 0)}
		return []document.Node{h}
	case *ast.Paragraph, *ast.TextBlock:
		if img, ok := n.FirstChild().(*ast.Image); ok && n.ChildCount() == 1 {
			return []document.Node{{
				Type:    document.Image,
				URL:     string(img.Destination),
				Alt:     plain(img, src),
				Caption: string(img.Title),
			}}
		}
		return []document.Node{{Type: document.Paragraph, Children: inlines(n, src, 0)}}
	case *ast.Blockquote:
		return convertQuote(n, src)
	case *ast.FencedCodeBlock:
		return []document.Node{codeBlock(n, src, string(n.Language(src)))}
	case *ast.CodeBlock:
		return []document.Node{codeBlock(n, src, "")}
	case *ast.ThematicBreak:
		return []document.Node{document.NewElement(document.Divider)}
	case *ast.List:
		return []document.Node{convertList(n, src)}
	case *extast.Table:
		return []document.Node{convertTable(n, src)}
	case *ast.HTMLBlock:
		return nil
	}
	var out []document.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, convertBlock(c, src)...)
	}
	return out
}

func codeBlock(n ast.Node, src []byte, lang string) document.Node {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return document.Node{
		Type:     document.CodeBlock,
		Language: lang,
		Children: []document.Node{document.NewText(strings.TrimRight(buf.String(), "\n"))},
	}
}

// convertQuote turns each paragraph of a blockquote into a quote block,
// or into a callout when the quote opens with a GitHub alert marker.
func convertQuote(n *ast.Blockquote, src []byte) []document.Node {
	var out []document.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		for _, b := range convertBlock(c, src) {
			if b.Type == document.Paragraph {
				b.Type = document.Quote
			}
			out = append(out, b)
		}
	}
	if len(out) == 0 || out[0].Type != document.Quote {
		return out
	}
	first := out[0].String()
	for marker, variant := range alertVariants {
		if !strings.HasPrefix(first, marker) {
			continue
		}
		callout := document.Node{Type: document.Callout, Variant: variant}
		for i, b := range out {
			if b.Type != document.Quote {
				continue
			}
			if i > 0 {
				callout.Children = append(callout.Children, document.NewText("\n"))
			}
			callout.Children = append(callout.Children, b.Children...)
		}
		// The marker may arrive split across text runs.
		callout = document.New(callout).Children[0]
		trimPrefix(&callout, marker)
		rest := make([]document.Node, 0, len(out))
		for _, b := range out {
			if b.Type != document.Quote {
				rest = append(rest, b)
			}
		}
		return append([]document.Node{callout}, rest...)
	}
	return out
}

// trimPrefix removes prefix and following whitespace from the start of a
// text block.
func trimPrefix(n *document.Node, prefix string) {
	for i := range n.Children {
		c := &n.Children[i]
		if !c.IsText() {
			return
		}
		if strings.HasPrefix(c.Text, prefix) {
			c.Text = strings.TrimLeft(strings.TrimPrefix(c.Text, prefix), " \n")
			return
		}
		if c.Text != "" {
			return
		}
	}
}

// convertList keeps nested lists as siblings of the item they follow.
func convertList(n *ast.List, src []byte) document.Node {
	list := document.Node{Type: document.BulletedList}
	if n.IsOrdered() {
		list.Type = document.NumberedList
	}
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.List:
				list.Children = append(list.Children, convertList(c, src))
			case *ast.Paragraph, *ast.TextBlock:
				list.Children = append(list.Children, document.Node{Type: document.ListItem, Children: inlines(c, src, 0)})
			default:
				for _, b := range convertBlock(c, src) {
					list.Children = append(list.Children, document.Node{Type: document.ListItem, Children: b.Children})
				}
			}
		}
	}
	return list
}

func convertTable(n *extast.Table, src []byte) document.Node {
	table := document.Node{Type: document.Table}
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		r := document.Node{Type: document.TableRow}
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			r.Children = append(r.Children, document.Node{Type: document.TableCell, Children: inlines(cell, src, 0)})
		}
		table.Children = append(table.Children, r)
	}
	return table
}

// inlines converts the inline children of n. Marks opened by inline HTML
// tags apply to the siblings up to the matching closing tag.
func inlines(n ast.Node, src []byte, marks document.MarkSet) []document.Node {
	var out []document.Node
	var tags []document.Mark
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		active := marks
		for _, m := range tags {
			active = active.With(m)
		}
		switch c := c.(type) {
		case *ast.Text:
			t := string(c.Segment.Value(src))
			switch {
			case c.HardLineBreak():
				t += "\n"
			case c.SoftLineBreak():
				t += " "
			}
			out = append(out, document.Node{Text: t, Marks: active})
		case *ast.String:
			out = append(out, document.Node{Text: string(c.Value), Marks: active})
		case *ast.CodeSpan:
			out = append(out, document.Node{Text: plain(c, src), Marks: active.With(document.Code)})
		case *ast.Emphasis:
			m := document.Italic
			if c.Level >= 2 {
				m = document.Bold
			}
			out = append(out, inlines(c, src, active.With(m))...)
		case *extast.Strikethrough:
			out = append(out, inlines(c, src, active.With(document.Strikethrough))...)
		case *ast.Link:
			out = append(out, document.Node{Type: document.Link, URL: string(c.Destination), Children: inlines(c, src, active)})
		case *ast.AutoLink:
			label := string(c.Label(src))
			out = append(out, document.Node{
				Type:     document.Link,
				URL:      string(c.URL(src)),
				Children: []document.Node{{Text: label, Marks: active}},
			})
		case *ast.Image:
			out = append(out, document.Node{Text: plain(c, src), Marks: active})
		case *Highlight:
			out = append(out, inlines(c, src, active.With(document.Highlight))...)
		case *ast.RawHTML:
			m, open, ok := htmlMark(rawHTML(c, src))
			switch {
			case !ok:
			case open:
				tags = append(tags, m)
			default:
				for i := len(tags) - 1; i >= 0; i-- {
					if tags[i] == m {
						tags = append(tags[:i], tags[i+1:]...)
						break
					}
				}
			}
		default:
			out = append(out, inlines(c, src, active)...)
		}
	}
	return out
}

// Inline HTML tags that map onto marks.
var htmlMarks = map[string]document.Mark{
	"u":    document.Underline,
	"ins":  document.Underline,
	"mark": document.Highlight,
	"sup":  document.Superscript,
	"sub":  document.Subscript,
}

// htmlMark reports the mark an inline tag such as <u> or </sup> stands for
// and whether the tag opens it.
func htmlMark(tag string) (document.Mark, bool, bool) {
	tag = strings.TrimSpace(tag)
	if !strings.HasPrefix(tag, "<") || !strings.HasSuffix(tag, ">") || strings.HasSuffix(tag, "/>") {
		return "", false, false
	}
	tag = tag[1 : len(tag)-1]
	open := !strings.HasPrefix(tag, "/")
	tag = strings.TrimPrefix(tag, "/")
	if i := strings.IndexAny(tag, " \t\n"); i >= 0 {
		tag = tag[:i]
	}
	m, ok := htmlMarks[strings.ToLower(tag)]
	return m, open, ok
}

func rawHTML(n *ast.RawHTML, src []byte) string {
	var b strings.Builder
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}

// plain collects the literal text below n.
func plain(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(src))
		case *ast.String:
			b.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
