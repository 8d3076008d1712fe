package document

import (
	"context"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var markTags = map[Mark]string{
	Code:          "code",
	Bold:          "strong",
	Italic:        "em",
	Underline:     "u",
	Strikethrough: "s",
	Highlight:     "mark",
	Superscript:   "sup",
	Subscript:     "sub",
}

// Component returns a templ.Component that renders d as HTML.
func Component(d Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, d.HTML())
		return err
	})
}

// HTML renders the document. All text is escaped and every URL passes
// through SafeURL.
func (d Document) HTML() string {
	var b strings.Builder
	imageCount := 0
	for _, n := range d.Children {
		renderBlock(&b, n, &imageCount)
	}
	return b.String()
}

func renderBlock(b *strings.Builder, n Node, imageCount *int) {
	switch n.Type {
	case Paragraph:
		b.WriteString("<p>")
		renderInlines(b, n.Children)
		b.WriteString("</p>")
	case Heading:
		tag := "h" + strconv.Itoa(clampLevel(n.Level))
		b.WriteString("<" + tag + ">")
		renderInlines(b, n.Children)
		b.WriteString("</" + tag + ">")
	case Quote:
		b.WriteString("<blockquote>")
		renderInlines(b, n.Children)
		b.WriteString("</blockquote>")
	case Callout:
		variant := html.EscapeString(n.Variant)
		b.WriteString(`<aside class="callout callout-` + variant + `" role="note">`)
		if n.Icon != "" {
			b.WriteString(`<span class="callout-icon">` + html.EscapeString(n.Icon) + `</span>`)
		}
		b.WriteString("<div>")
		renderInlines(b, n.Children)
		b.WriteString("</div></aside>")
	case CodeBlock:
		if n.Language != "" {
			lang := html.EscapeString(n.Language)
			b.WriteString(`<pre class="code-block"><code class="language-` + lang + `">`)
		} else {
			b.WriteString(`<pre class="code-block"><code>`)
		}
		b.WriteString(html.EscapeString(n.String()))
		b.WriteString("</code></pre>")
	case BulletedList, NumberedList:
		renderList(b, n, imageCount)
	case Table:
		b.WriteString("<table><tbody>")
		for _, row := range n.Children {
			b.WriteString("<tr>")
			for _, cell := range row.Children {
				b.WriteString("<td>")
				renderInlines(b, cell.Children)
				b.WriteString("</td>")
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody></table>")
	case Divider:
		b.WriteString("<hr/>")
	case Image:
		src := SafeURL(n.URL)
		if src == "" {
			return
		}
		*imageCount++
		load := `loading="lazy"`
		if *imageCount == 1 {
			load = `fetchpriority="high"`
		}
		b.WriteString(`<figure><img ` + load + ` src="` + src + `" alt="` + html.EscapeString(n.Alt) + `" decoding="async"/>`)
		writeCaption(b, n.Caption)
		b.WriteString("</figure>")
	case Video:
		src := SafeURL(n.URL)
		if src == "" {
			return
		}
		b.WriteString(`<figure><video controls preload="metadata" src="` + src + `"></video>`)
		writeCaption(b, n.Caption)
		b.WriteString("</figure>")
	case File:
		href := SafeURL(n.URL)
		if href == "" {
			return
		}
		name := n.Name
		if name == "" {
			name = n.URL
		}
		b.WriteString(`<p class="file"><a href="` + href + `" download>` + html.EscapeString(name) + `</a></p>`)
	case Embed:
		href := SafeURL(n.URL)
		if href == "" {
			return
		}
		b.WriteString(`<figure class="embed"><a href="` + href + `" rel="noopener noreferrer" target="_blank">`)
		if img := SafeURL(n.ImageURL); img != "" {
			b.WriteString(`<img loading="lazy" src="` + img + `" alt=""/>`)
		}
		title := n.Title
		if title == "" {
			title = n.URL
		}
		b.WriteString(`<strong>` + html.EscapeString(title) + `</strong>`)
		if n.Description != "" {
			b.WriteString(`<span>` + html.EscapeString(n.Description) + `</span>`)
		}
		if n.Site != "" {
			b.WriteString(`<small>` + html.EscapeString(n.Site) + `</small>`)
		}
		b.WriteString("</a></figure>")
	default:
		renderInlines(b, n.Children)
	}
}

func writeCaption(b *strings.Builder, caption string) {
	if caption != "" {
		b.WriteString("<figcaption>" + html.EscapeString(caption) + "</figcaption>")
	}
}

// renderList places nested lists inside the preceding <li>.
func renderList(b *strings.Builder, n Node, imageCount *int) {
	tag := "ul"
	if n.Type == NumberedList {
		tag = "ol"
	}
	b.WriteString("<" + tag + ">")
	open := false
	for _, c := range n.Children {
		if IsList(c.Type) {
			if !open {
				b.WriteString("<li>")
				open = true
			}
			renderList(b, c, imageCount)
			continue
		}
		if open {
			b.WriteString("</li>")
		}
		b.WriteString("<li>")
		renderInlines(b, c.Children)
		open = true
	}
	if open {
		b.WriteString("</li>")
	}
	b.WriteString("</" + tag + ">")
}

func renderInlines(b *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		if n.Type == Link {
			href := SafeURL(n.URL)
			if href == "" {
				renderInlines(b, n.Children)
				continue
			}
			b.WriteString(`<a href="` + href + `" rel="noopener noreferrer">`)
			renderInlines(b, n.Children)
			b.WriteString("</a>")
			continue
		}
		if !n.IsText() {
			renderInlines(b, n.Children)
			continue
		}
		marks := n.Marks.Marks()
		for _, m := range marks {
			b.WriteString("<" + markTags[m] + ">")
		}
		b.WriteString(strings.ReplaceAll(html.EscapeString(n.Text), "\n", "<br/>"))
		for i := len(marks) - 1; i >= 0; i-- {
			b.WriteString("</" + markTags[marks[i]] + ">")
		}
	}
}
