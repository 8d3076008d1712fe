package document

import "fmt"

// Limits enforced by Validate.
const (
	MaxDepth = 32
	MaxNodes = 50000
)

// Validate rejects unknown element types and documents that are too deep
// or too large.
func Validate(d Document) error {
	count := 0
	var check func(nodes []Node, depth int) error
	check = func(nodes []Node, depth int) error {
		if depth > MaxDepth {
			return fmt.Errorf("%w: nesting deeper than %d", ErrInvalidNode, MaxDepth)
		}
		for _, n := range nodes {
			count++
			if count > MaxNodes {
				return fmt.Errorf("%w: more than %d nodes", ErrInvalidNode, MaxNodes)
			}
			if n.IsText() {
				continue
			}
			if !Known(n.Type) {
				return fmt.Errorf("%w: unknown type %q", ErrInvalidNode, n.Type)
			}
			if err := check(n.Children, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return check(d.Children, 1)
}

// Normalize rewrites d into canonical form:
//   - every element has at least one child, void elements exactly one
//     empty text leaf;
//   - text blocks hold only text and links, adjacent leaves with equal
//     marks are merged and empty leaves dropped when siblings exist;
//   - lists hold list items and nested lists, tables hold rows of cells
//     padded to the widest row;
//   - empty containers are removed and an empty document gets one
//     paragraph.
func Normalize(d *Document) {
	d.Children = normalizeBlocks(d.Children)
	if len(d.Children) == 0 {
		d.Children = []Node{NewElement(Paragraph)}
	}
}

func normalizeBlocks(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	var run []Node
	flush := func() {
		if len(run) > 0 {
			out = append(out, normalizeElement(Node{Type: Paragraph, Children: run}))
			run = nil
		}
	}
	for _, n := range nodes {
		if n.IsText() || IsInline(n.Type) {
			run = append(run, n)
			continue
		}
		flush()
		switch {
		case !Known(n.Type), n.Type == ListItem, n.Type == TableCell:
			n = Node{Type: Paragraph, Children: n.Children}
		case n.Type == TableRow:
			n = Node{Type: Table, Children: []Node{n}}
		}
		n = normalizeElement(n)
		if isContainer(n.Type) && len(n.Children) == 0 {
			continue
		}
		out = append(out, n)
	}
	flush()
	return out
}

func isContainer(t Type) bool {
	return IsList(t) || t == Table || t == TableRow
}

func normalizeElement(n Node) Node {
	switch {
	case IsVoid(n.Type):
		n.Children = []Node{NewText("")}
	case n.Type == CodeBlock:
		n.Children = []Node{NewText(n.String())}
	case IsTextBlock(n.Type):
		if n.Type == Heading {
			n.Level = clampLevel(n.Level)
		}
		if n.Type == Callout && n.Variant == "" {
			n.Variant = "info"
		}
		n.Children = normalizeInlines(n.Children, false)
	case IsList(n.Type):
		n.Children = normalizeList(n.Children)
	case n.Type == Table:
		n.Children = normalizeTable(n.Children)
	case n.Type == TableRow:
		n.Children = normalizeCells(n.Children)
	case IsInline(n.Type):
		n.Children = normalizeInlines(n.Children, true)
	}
	return n
}

func normalizeInlines(nodes []Node, insideLink bool) []Node {
	var flat []Node
	for _, c := range nodes {
		switch {
		case c.IsText():
			flat = append(flat, c)
		case IsInline(c.Type) && !insideLink:
			c.Children = normalizeInlines(c.Children, true)
			if c.String() == "" {
				continue
			}
			flat = append(flat, c)
		case IsVoid(c.Type):
			// voids carry no inline content
		default:
			flat = append(flat, normalizeInlines(c.Children, insideLink)...)
		}
	}

	if len(flat) > 1 {
		kept := flat[:0]
		for _, c := range flat {
			if c.IsText() && c.Text == "" {
				continue
			}
			kept = append(kept, c)
		}
		flat = kept
	}

	var out []Node
	for _, c := range flat {
		if c.IsText() && len(out) > 0 {
			prev := &out[len(out)-1]
			if prev.IsText() && prev.Marks == c.Marks {
				prev.Text += c.Text
				continue
			}
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		out = []Node{NewText("")}
	}
	return out
}

func normalizeList(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, c := range nodes {
		switch {
		case c.IsText() || IsInline(c.Type):
			c = Node{Type: ListItem, Children: []Node{c}}
		case IsList(c.Type):
			c = normalizeElement(c)
			if len(c.Children) > 0 {
				out = append(out, c)
			}
			continue
		case IsVoid(c.Type):
			continue
		case c.Type != ListItem:
			c = Node{Type: ListItem, Children: c.Children}
		}
		out = append(out, normalizeElement(c))
	}
	return out
}

func normalizeTable(nodes []Node) []Node {
	rows := make([]Node, 0, len(nodes))
	cols := 0
	for _, c := range nodes {
		switch {
		case c.Type == TableRow:
		case c.Type == TableCell:
			c = Node{Type: TableRow, Children: []Node{c}}
		default:
			continue
		}
		c.Children = normalizeCells(c.Children)
		if len(c.Children) == 0 {
			continue
		}
		cols = max(cols, len(c.Children))
		rows = append(rows, c)
	}
	for i := range rows {
		for len(rows[i].Children) < cols {
			rows[i].Children = append(rows[i].Children, NewElement(TableCell))
		}
	}
	return rows
}

func normalizeCells(nodes []Node) []Node {
	cells := make([]Node, 0, len(nodes))
	for _, c := range nodes {
		switch {
		case c.Type == TableCell:
		case c.IsText() || IsInline(c.Type):
			c = Node{Type: TableCell, Children: []Node{c}}
		case IsTextBlock(c.Type):
			c = Node{Type: TableCell, Children: c.Children}
		default:
			continue
		}
		cells = append(cells, normalizeElement(c))
	}
	return cells
}
