package markdown

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"

	"github.com/eringen/folio/document"
)

// Elements the converter wraps in Markdown delimiters, which already take
// care of the whitespace around them.
var delimitedElements = map[string]bool{
	"a": true, "strong": true, "b": true, "i": true, "em": true,
	"del": true, "s": true, "strike": true, "code": true,
}

// inlineTags maps pasted elements with no Markdown syntax to the inline
// tag Parse reads back as a mark.
var inlineTags = map[string]string{
	"u":    "u",
	"ins":  "u",
	"mark": "mark",
	"sup":  "sup",
	"sub":  "sub",
}

func inlineTagRules() []md.Rule {
	filter := make([]string, 0, len(inlineTags))
	for name := range inlineTags {
		filter = append(filter, name)
	}
	return []md.Rule{
		{
			Filter: filter,
			Replacement: func(content string, selec *goquery.Selection, _ *md.Options) *string {
				if strings.TrimSpace(content) == "" {
					return md.String(content)
				}
				tag := inlineTags[goquery.NodeName(selec)]
				return md.String("<" + tag + ">" + content + "</" + tag + ">")
			},
		},
		{
			// The stock text rule drops whitespace-only nodes, which would
			// glue "<u>a</u> <mark>b</mark>" together.
			Filter: []string{"#text"},
			Replacement: func(_ string, selec *goquery.Selection, _ *md.Options) *string {
				if strings.TrimSpace(selec.Text()) != "" {
					return nil
				}
				siblings := selec.Parent().Contents()
				i := siblings.IndexOfSelection(selec)
				if i <= 0 || i >= siblings.Length()-1 {
					return nil
				}
				prev := goquery.NodeName(siblings.Eq(i - 1))
				next := goquery.NodeName(siblings.Eq(i + 1))
				_, prevTag := inlineTags[prev]
				_, nextTag := inlineTags[next]
				if !prevTag && !nextTag || delimitedElements[prev] || delimitedElements[next] {
					return nil
				}
				return md.String(" ")
			},
		},
	}
}

// HTMLToMarkdown converts an HTML fragment to GitHub-flavored Markdown.
// Scripts, styles and unknown elements are dropped. Underline, highlight,
// superscript and subscript survive as inline tags.
func HTMLToMarkdown(html string) (string, error) {
	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())
	conv.AddRules(inlineTagRules()...)
	conv.Remove("script", "style", "iframe", "form")
	out, err := conv.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return out, nil
}

// FromHTML imports pasted HTML as a document.
func FromHTML(html string) (document.Document, error) {
	src, err := HTMLToMarkdown(html)
	if err != nil {
		return document.Document{}, err
	}
	return Parse(src), nil
}
