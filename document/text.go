package document

import (
	"strings"
	"unicode"
)

// PlainText returns the document's text with one line per block. Table
// cells are separated by tabs; void elements contribute their caption or
// alt text.
func (d Document) PlainText() string {
	var lines []string
	var visit func(nodes []Node)
	visit = func(nodes []Node) {
		for _, n := range nodes {
			switch {
			case n.Type == Table:
				for _, row := range n.Children {
					cells := make([]string, 0, len(row.Children))
					for _, c := range row.Children {
						cells = append(cells, c.String())
					}
					lines = append(lines, strings.Join(cells, "\t"))
				}
			case IsList(n.Type):
				visit(n.Children)
			case n.Type == Image:
				if s := firstNonEmpty(n.Caption, n.Alt); s != "" {
					lines = append(lines, s)
				}
			case n.Type == Video:
				if n.Caption != "" {
					lines = append(lines, n.Caption)
				}
			case n.Type == Embed:
				if s := firstNonEmpty(n.Title, n.URL); s != "" {
					lines = append(lines, s)
				}
			case IsVoid(n.Type):
			default:
				lines = append(lines, n.String())
			}
		}
	}
	visit(d.Children)
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// WordCount counts whitespace-separated words in the document text.
func (d Document) WordCount() int {
	return len(strings.FieldsFunc(d.PlainText(), unicode.IsSpace))
}

// ReadingTime estimates minutes to read at 200 words per minute, at least 1.
func (d Document) ReadingTime() int {
	minutes := (d.WordCount() + 199) / 200
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Excerpt returns at most limit runes of plain text, cut at a word
// boundary with an ellipsis when truncated.
func (d Document) Excerpt(limit int) string {
	text := strings.Join(strings.Fields(d.PlainText()), " ")
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	cut := string(r[:limit])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
