package editor

import (
	"fmt"
	"unicode/utf8"

	"github.com/eringen/folio/document"
)

// tx is a change in progress against a private copy of the document.
type tx struct {
	doc           document.Document
	anchor, focus pos

	// marks are the pending marks when the change started; nextMarks
	// become the pending marks after it.
	marks     *document.MarkSet
	nextMarks *document.MarkSet

	// moved records a selection change on a change that is otherwise
	// abandoned with errNoChange.
	moved bool
}

func (t *tx) blocks() []document.Path { return t.doc.LeafBlocks() }

func (t *tx) path(i int) document.Path {
	blocks := t.blocks()
	if i < 0 || i >= len(blocks) {
		return nil
	}
	return blocks[i]
}

func (t *tx) node(i int) document.Node {
	n, _ := t.doc.Get(t.path(i))
	return n
}

func (t *tx) textLen(i int) int {
	return utf8.RuneCountInString(t.node(i).String())
}

func (t *tx) collapsed() bool { return t.anchor == t.focus }

func (t *tx) edges() (pos, pos) {
	if t.focus.block < t.anchor.block || (t.focus.block == t.anchor.block && t.focus.offset < t.anchor.offset) {
		return t.focus, t.anchor
	}
	return t.anchor, t.focus
}

func (t *tx) collapse(p pos) {
	t.anchor, t.focus = p, p
}

// moveTo collapses the selection without changing the document.
func (t *tx) moveTo(p pos) error {
	t.collapse(p)
	t.moved = true
	return errNoChange
}

// ordinal returns the index of the first leaf block at or below p.
func (t *tx) ordinal(p document.Path) int {
	for i, b := range t.blocks() {
		if b.Equal(p) || p.IsAncestorOf(b) {
			return i
		}
	}
	return -1
}

// lastOrdinal returns the index of the last leaf block at or below p.
func (t *tx) lastOrdinal(p document.Path) int {
	last := -1
	for i, b := range t.blocks() {
		if b.Equal(p) || p.IsAncestorOf(b) {
			last = i
		}
	}
	return last
}

func (t *tx) point(p pos, forward bool) (document.Point, error) {
	b := t.path(p.block)
	if b == nil {
		return document.Point{}, fmt.Errorf("%w: block %d", document.ErrInvalidPath, p.block)
	}
	return t.doc.PointAt(b, p.offset, forward)
}

// deleteRange removes the content between two positions and returns the
// collapsed position left behind.
func (t *tx) deleteRange(from, to pos) (pos, error) {
	start, err := t.point(from, true)
	if err != nil {
		return pos{}, err
	}
	end, err := t.point(to, false)
	if err != nil {
		return pos{}, err
	}
	_, off, err := t.doc.DeleteRange(start, end)
	if err != nil {
		return pos{}, err
	}
	return pos{block: from.block, offset: off}, nil
}

// deleteSelection removes expanded selection content and collapses onto
// its start.
func (t *tx) deleteSelection() error {
	if t.collapsed() {
		return nil
	}
	p, err := t.deleteRange(t.edges())
	if err != nil {
		return err
	}
	t.collapse(p)
	return nil
}

// splitBlock splits the block at p in two, splitting every inline
// ancestor of the text leaf on the way up.
func (t *tx) splitBlock(p pos) error {
	bp := t.path(p.block)
	pt, err := t.point(p, false)
	if err != nil {
		return err
	}
	at := pt.Offset
	cur := pt.Path
	for len(cur) > len(bp) {
		if err := t.doc.SplitNode(cur, at); err != nil {
			return err
		}
		at = cur.Last() + 1
		cur = cur.Parent()
	}
	return t.doc.SplitNode(bp, at)
}

// mergeBlocks appends the content of block src to block dst, removes src
// and leaves the cursor at the join.
func (t *tx) mergeBlocks(dst, src int) error {
	dp, sp := t.path(dst), t.path(src)
	dn, sn := t.node(dst), t.node(src)
	join := utf8.RuneCountInString(dn.String())
	children := sn.Children
	if dn.Type == document.CodeBlock {
		children = []document.Node{document.NewText(sn.String())}
	}
	if _, err := t.doc.RemoveNode(sp); err != nil {
		return err
	}
	if err := t.doc.SetNode(dp, func(n *document.Node) {
		n.Children = append(n.Children, children...)
	}); err != nil {
		return err
	}
	t.collapse(pos{block: dst, offset: join})
	return nil
}

// setBlock converts the leaf block at ordinal i, lifting it out of any
// lists first. Voids and table cells are left alone.
func (t *tx) setBlock(i int, typ document.Type, level int) error {
	n := t.node(i)
	if document.IsVoid(n.Type) || n.Type == document.TableCell {
		return nil
	}
	for t.node(i).Type == document.ListItem {
		if err := t.liftItem(i); err != nil {
			return err
		}
	}
	return t.doc.SetNode(t.path(i), func(n *document.Node) { setType(n, typ, level) })
}

func setType(n *document.Node, typ document.Type, level int) {
	n.Type = typ
	n.Level = 0
	if typ == document.Heading {
		n.Level = max(1, min(level, 6))
	}
	if typ != document.CodeBlock {
		n.Language = ""
	}
	if typ != document.Callout {
		n.Variant, n.Icon = "", ""
	}
}

// insertBlock inserts a top-level block after the selection's top-level
// block, or in place of it when that block is an empty paragraph. A
// trailing paragraph is added when the new block would be last. It
// returns the path the block was inserted at.
func (t *tx) insertBlock(n document.Node) (document.Path, error) {
	if err := t.deleteSelection(); err != nil {
		return nil, err
	}
	bp := t.path(t.anchor.block)
	cur := t.node(t.anchor.block)
	var at document.Path
	if len(bp) == 1 && cur.Type == document.Paragraph && isBlank(cur) {
		if _, err := t.doc.RemoveNode(bp); err != nil {
			return nil, err
		}
		at = bp
	} else {
		at = document.Path{bp[0] + 1}
	}
	if err := t.doc.InsertNodes(at, n); err != nil {
		return nil, err
	}
	if at[0] == len(t.doc.Children)-1 {
		if err := t.doc.InsertNodes(at.Next(), document.NewElement(document.Paragraph)); err != nil {
			return nil, err
		}
	}
	return at, nil
}

// isBlank reports whether n holds only empty text.
func isBlank(n document.Node) bool {
	for _, c := range n.Children {
		if !c.IsText() || c.Text != "" {
			return false
		}
	}
	return true
}
