package markdown

import (
	"strconv"
	"strings"

	"github.com/eringen/folio/document"
)

var calloutMarkers = map[string]string{
	"info":    "[!NOTE]",
	"success": "[!TIP]",
	"warning": "[!WARNING]",
	"error":   "[!CAUTION]",
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"~", `\~`,
	"==", `\=\=`,
	"<", `\<`,
)

// Render serializes a document as GitHub-flavored Markdown. Marks with no
// Markdown syntax are written as inline HTML.
func Render(d document.Document) string {
	var blocks []string
	for _, n := range d.Children {
		if s := renderBlock(n, 0); s != "" {
			blocks = append(blocks, s)
		}
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func renderBlock(n document.Node, depth int) string {
	switch n.Type {
	case document.Heading:
		return strings.Repeat("#", n.Level) + " " + renderInlines(n.Children)
	case document.Quote:
		return quoteLines(renderInlines(n.Children))
	case document.Callout:
		marker := calloutMarkers[n.Variant]
		if marker == "" {
			marker = "[!NOTE]"
		}
		return "> " + marker + "\n" + quoteLines(renderInlines(n.Children))
	case document.CodeBlock:
		return "```" + n.Language + "\n" + n.String() + "\n```"
	case document.BulletedList, document.NumberedList:
		return strings.Join(renderList(n, depth), "\n")
	case document.Table:
		return renderTable(n)
	case document.Divider:
		return "---"
	case document.Image:
		s := "![" + escaper.Replace(n.Alt) + "](" + n.URL
		if n.Caption != "" {
			s += ` "` + strings.ReplaceAll(n.Caption, `"`, `\"`) + `"`
		}
		return s + ")"
	case document.Video, document.File, document.Embed:
		label := firstNonEmpty(n.Title, n.Name, n.Caption, n.URL)
		return "[" + escaper.Replace(label) + "](" + n.URL + ")"
	default:
		return renderInlines(n.Children)
	}
}

func quoteLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}

func renderList(n document.Node, depth int) []string {
	indent := strings.Repeat("  ", depth)
	var lines []string
	num := 1
	for _, c := range n.Children {
		if c.Type == document.BulletedList || c.Type == document.NumberedList {
			lines = append(lines, renderList(c, depth+1)...)
			continue
		}
		bullet := "- "
		if n.Type == document.NumberedList {
			bullet = strconv.Itoa(num) + ". "
			num++
		}
		lines = append(lines, indent+bullet+renderInlines(c.Children))
	}
	return lines
}

func renderTable(n document.Node) string {
	var rows []string
	for i, row := range n.Children {
		cells := make([]string, 0, len(row.Children))
		for _, cell := range row.Children {
			cells = append(cells, strings.ReplaceAll(renderInlines(cell.Children), "|", `\|`))
		}
		rows = append(rows, "| "+strings.Join(cells, " | ")+" |")
		if i == 0 {
			sep := make([]string, len(cells))
			for j := range sep {
				sep[j] = "---"
			}
			rows = append(rows, "| "+strings.Join(sep, " | ")+" |")
		}
	}
	return strings.Join(rows, "\n")
}

type wrapper struct {
	mark        document.Mark
	open, close string
}

// Outermost first.
var wrappers = []wrapper{
	{document.Bold, "**", "**"},
	{document.Italic, "_", "_"},
	{document.Strikethrough, "~~", "~~"},
	{document.Underline, "<u>", "</u>"},
	{document.Highlight, "<mark>", "</mark>"},
	{document.Superscript, "<sup>", "</sup>"},
	{document.Subscript, "<sub>", "</sub>"},
}

func renderInlines(nodes []document.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		if n.Type == document.Link {
			b.WriteString("[" + renderInlines(n.Children) + "](" + n.URL + ")")
			continue
		}
		if !n.IsText() {
			b.WriteString(renderInlines(n.Children))
			continue
		}
		b.WriteString(renderText(n))
	}
	return b.String()
}

func renderText(n document.Node) string {
	if n.Text == "" {
		return ""
	}
	body := n.Text
	if n.Marks.Has(document.Code) {
		fence := "`"
		if strings.Contains(body, "`") {
			fence = "``"
		}
		body = fence + body + fence
	} else {
		body = strings.ReplaceAll(escaper.Replace(body), "\n", "  \n")
	}
	// Emphasis delimiters must hug non-space text.
	lead := body[:len(body)-len(strings.TrimLeft(body, " "))]
	trail := body[len(strings.TrimRight(body, " ")):]
	core := strings.TrimSpace(body)
	if core == "" {
		return body
	}
	for i := len(wrappers) - 1; i >= 0; i-- {
		w := wrappers[i]
		if n.Marks.Has(w.mark) {
			core = w.open + core + w.close
		}
	}
	return lead + core + trail
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
