package editor

import (
	"fmt"

	"github.com/eringen/folio/document"
)

// ToggleBlock converts the selected blocks to typ, or back to paragraphs
// when they all already are typ. List types wrap the blocks in a list or
// unwrap them. Heading toggles use level 1; see SetHeading.
func (e *Editor) ToggleBlock(typ document.Type) error {
	switch typ {
	case document.BulletedList, document.NumberedList:
		return e.toggleList(typ)
	case document.Heading:
		return e.SetHeading(1)
	case document.Paragraph, document.Quote, document.CodeBlock, document.Callout:
	default:
		return fmt.Errorf("%w: block %q", ErrUnsupported, typ)
	}
	target := typ
	if e.IsBlockActive(typ) {
		target = document.Paragraph
	}
	return e.apply("block", func(t *tx) error {
		start, end := t.edges()
		for i := start.block; i <= end.block; i++ {
			if err := t.setBlock(i, target, 0); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetHeading turns the selected blocks into headings of level, or into
// paragraphs when they already are headings of that level. Level 0 means
// paragraph.
func (e *Editor) SetHeading(level int) error {
	if level < 0 || level > 6 {
		return fmt.Errorf("%w: heading level %d", ErrUnsupported, level)
	}
	typ := document.Heading
	if level == 0 || e.IsHeadingActive(level) {
		typ = document.Paragraph
	}
	return e.apply("block", func(t *tx) error {
		start, end := t.edges()
		for i := start.block; i <= end.block; i++ {
			if err := t.setBlock(i, typ, level); err != nil {
				return err
			}
		}
		return nil
	})
}

// IsBlockActive reports whether every selected block is of type typ. For
// list types, the blocks must be items of such a list.
func (e *Editor) IsBlockActive(typ document.Type) bool {
	return e.allSelected(func(p document.Path, n document.Node) bool {
		if document.IsList(typ) {
			if n.Type != document.ListItem {
				return false
			}
			list, _ := e.doc.Get(p.Parent())
			return list.Type == typ
		}
		return n.Type == typ
	})
}

func (e *Editor) IsHeadingActive(level int) bool {
	return e.allSelected(func(_ document.Path, n document.Node) bool {
		return n.Type == document.Heading && n.Level == level
	})
}

// allSelected applies match to the selected non-void blocks.
func (e *Editor) allSelected(match func(document.Path, document.Node) bool) bool {
	seen := false
	for _, p := range e.selectedBlocks() {
		n, _ := e.doc.Get(p)
		if document.IsVoid(n.Type) {
			continue
		}
		if !match(p, n) {
			return false
		}
		seen = true
	}
	return seen
}

func (e *Editor) toggleList(typ document.Type) error {
	active := e.IsBlockActive(typ)
	return e.apply("block", func(t *tx) error {
		start, end := t.edges()
		if active {
			for i := start.block; i <= end.block; i++ {
				for t.node(i).Type == document.ListItem {
					if err := t.liftItem(i); err != nil {
						return err
					}
				}
			}
			return nil
		}
		var plain []int
		for i := start.block; i <= end.block; i++ {
			n := t.node(i)
			switch {
			case n.Type == document.ListItem:
				if err := t.doc.SetNode(t.path(i).Parent(), func(n *document.Node) { n.Type = typ }); err != nil {
					return err
				}
			case document.IsVoid(n.Type), n.Type == document.TableCell:
			default:
				plain = append(plain, i)
			}
		}
		return t.wrapInList(plain, typ)
	})
}

// wrapInList converts the blocks at the given ordinals into list items,
// one list per run of adjacent siblings.
func (t *tx) wrapInList(ords []int, typ document.Type) error {
	var groups [][]document.Path
	for _, i := range ords {
		p := t.path(i)
		if n := len(groups); n > 0 {
			g := groups[n-1]
			last := g[len(g)-1]
			if last.Parent().Equal(p.Parent()) && last.Last()+1 == p.Last() {
				groups[n-1] = append(g, p)
				continue
			}
		}
		groups = append(groups, []document.Path{p})
	}
	for g := len(groups) - 1; g >= 0; g-- {
		grp := groups[g]
		items := make([]document.Node, 0, len(grp))
		for _, p := range grp {
			n, _ := t.doc.Get(p)
			items = append(items, document.Node{Type: document.ListItem, Children: n.Children})
		}
		for k := len(grp) - 1; k >= 0; k-- {
			if _, err := t.doc.RemoveNode(grp[k]); err != nil {
				return err
			}
		}
		if err := t.doc.InsertNodes(grp[0], document.Node{Type: typ, Children: items}); err != nil {
			return err
		}
	}
	return nil
}

// liftItem moves the list item at ordinal i out of its list, splitting
// the list around it. Items of a nested list move to the parent list;
// top-level items become paragraphs.
func (t *tx) liftItem(i int) error {
	item := t.path(i)
	listPath := item.Parent()
	list, ok := t.doc.Get(listPath)
	if !ok || !document.IsList(list.Type) {
		return nil
	}
	idx := item.Last()
	it := list.Children[idx]
	nested := false
	if len(listPath) > 1 {
		parent, _ := t.doc.Get(listPath.Parent())
		nested = document.IsList(parent.Type)
	}
	if !nested {
		it = document.Node{Type: document.Paragraph, Children: it.Children}
	}
	var repl []document.Node
	if idx > 0 {
		repl = append(repl, document.Node{Type: list.Type, Children: list.Children[:idx:idx]})
	}
	repl = append(repl, it)
	if rest := list.Children[idx+1:]; len(rest) > 0 {
		repl = append(repl, document.Node{Type: list.Type, Children: rest})
	}
	if _, err := t.doc.RemoveNode(listPath); err != nil {
		return err
	}
	return t.doc.InsertNodes(listPath, repl...)
}

// IndentListItem nests the selected list items under their previous
// sibling.
func (e *Editor) IndentListItem() error {
	return e.apply("list", func(t *tx) error {
		changed := false
		start, end := t.edges()
		for i := start.block; i <= end.block; i++ {
			ok, err := t.indentItem(i)
			if err != nil {
				return err
			}
			changed = changed || ok
		}
		if !changed {
			return errNoChange
		}
		return nil
	})
}

func (t *tx) indentItem(i int) (bool, error) {
	item := t.path(i)
	if t.node(i).Type != document.ListItem || item.Last() == 0 {
		return false, nil
	}
	listPath := item.Parent()
	list, _ := t.doc.Get(listPath)
	idx := item.Last()
	it := list.Children[idx]
	prev := list.Children[idx-1]
	if _, err := t.doc.RemoveNode(item); err != nil {
		return false, err
	}
	if document.IsList(prev.Type) {
		err := t.doc.SetNode(listPath.Child(idx-1), func(n *document.Node) {
			n.Children = append(n.Children, it)
		})
		return err == nil, err
	}
	err := t.doc.InsertNodes(item, document.Node{Type: list.Type, Children: []document.Node{it}})
	return err == nil, err
}

// OutdentListItem lifts the selected list items one level.
func (e *Editor) OutdentListItem() error {
	return e.apply("list", func(t *tx) error {
		changed := false
		start, end := t.edges()
		for i := start.block; i <= end.block; i++ {
			if t.node(i).Type != document.ListItem {
				continue
			}
			if err := t.liftItem(i); err != nil {
				return err
			}
			changed = true
		}
		if !changed {
			return errNoChange
		}
		return nil
	})
}

// Media describes a void element to insert.
type Media struct {
	URL         string `json:"url"`
	Alt         string `json:"alt,omitempty"`
	Caption     string `json:"caption,omitempty"`
	Name        string `json:"name,omitempty"`
	Size        int64  `json:"size,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Site        string `json:"site,omitempty"`
}

func (m Media) node(typ document.Type) (document.Node, error) {
	if document.SafeURL(m.URL) == "" {
		if m.URL == "" {
			return document.Node{}, ErrURLRequired
		}
		return document.Node{}, fmt.Errorf("%w: %q", ErrUnsafeURL, m.URL)
	}
	n := document.NewElement(typ)
	n.URL = m.URL
	switch typ {
	case document.Image:
		n.Alt, n.Caption = m.Alt, m.Caption
	case document.Video:
		n.Caption = m.Caption
	case document.File:
		n.Name, n.Size = m.Name, m.Size
	case document.Embed:
		n.Title, n.Description, n.ImageURL, n.Site = m.Title, m.Description, m.Image, m.Site
	}
	return n, nil
}

func (e *Editor) InsertImage(m Media) error { return e.insertMedia(document.Image, m) }
func (e *Editor) InsertVideo(m Media) error { return e.insertMedia(document.Video, m) }
func (e *Editor) InsertFile(m Media) error  { return e.insertMedia(document.File, m) }
func (e *Editor) InsertEmbed(m Media) error { return e.insertMedia(document.Embed, m) }

// InsertDivider inserts a horizontal rule after the current block.
func (e *Editor) InsertDivider() error {
	return e.apply("insert", func(t *tx) error {
		return t.insertVoid(document.NewElement(document.Divider))
	})
}

func (e *Editor) insertMedia(typ document.Type, m Media) error {
	n, err := m.node(typ)
	if err != nil {
		return err
	}
	return e.apply("insert", func(t *tx) error { return t.insertVoid(n) })
}

// insertVoid inserts n and moves the cursor to the block after it.
func (t *tx) insertVoid(n document.Node) error {
	at, err := t.insertBlock(n)
	if err != nil {
		return err
	}
	t.collapse(pos{block: t.ordinal(at) + 1})
	return nil
}
