package document

import (
	"fmt"
	"unicode/utf8"
)

func (d *Document) childrenAt(p Path) (*[]Node, error) {
	children := &d.Children
	for _, i := range p {
		if i < 0 || i >= len(*children) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPath, p)
		}
		children = &(*children)[i].Children
	}
	return children, nil
}

// NodeAt returns a pointer to the node at p. The pointer is invalidated
// by any structural change to p's parent.
func (d *Document) NodeAt(p Path) (*Node, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	parent, err := d.childrenAt(p.Parent())
	if err != nil {
		return nil, err
	}
	idx := p.Last()
	if idx < 0 || idx >= len(*parent) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, p)
	}
	return &(*parent)[idx], nil
}

// Get returns a copy of the node at p.
func (d Document) Get(p Path) (Node, bool) {
	n, err := d.NodeAt(p)
	if err != nil {
		return Node{}, false
	}
	return *n, true
}

// InsertNodes inserts nodes before the node currently at the path (or
// appends when the index equals the sibling count).
func (d *Document) InsertNodes(at Path, nodes ...Node) error {
	if len(at) == 0 {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	parent, err := d.childrenAt(at.Parent())
	if err != nil {
		return err
	}
	idx := at.Last()
	if idx < 0 || idx > len(*parent) {
		return fmt.Errorf("%w: %v", ErrInvalidPath, at)
	}
	out := make([]Node, 0, len(*parent)+len(nodes))
	out = append(out, (*parent)[:idx]...)
	out = append(out, nodes...)
	out = append(out, (*parent)[idx:]...)
	*parent = out
	return nil
}

// RemoveNode removes and returns the node at the path.
func (d *Document) RemoveNode(at Path) (Node, error) {
	n, err := d.NodeAt(at)
	if err != nil {
		return Node{}, err
	}
	removed := *n
	parent, _ := d.childrenAt(at.Parent())
	idx := at.Last()
	*parent = append((*parent)[:idx:idx], (*parent)[idx+1:]...)
	return removed, nil
}

// SetNode applies fn to the node at the path.
func (d *Document) SetNode(at Path, fn func(*Node)) error {
	n, err := d.NodeAt(at)
	if err != nil {
		return err
	}
	fn(n)
	return nil
}

// SplitNode splits the node at the path in two. Text leaves split at a
// rune offset, elements split their children at an index; the right half
// becomes the next sibling and keeps the node's attributes.
func (d *Document) SplitNode(at Path, pos int) error {
	n, err := d.NodeAt(at)
	if err != nil {
		return err
	}
	right := *n
	if n.IsText() {
		r := []rune(n.Text)
		pos = clamp(pos, 0, len(r))
		right.Text = string(r[pos:])
		n.Text = string(r[:pos])
	} else {
		pos = clamp(pos, 0, len(n.Children))
		right.Children = append([]Node(nil), n.Children[pos:]...)
		n.Children = append([]Node(nil), n.Children[:pos]...)
		if len(right.Children) == 0 {
			right.Children = []Node{NewText("")}
		}
		if len(n.Children) == 0 {
			n.Children = []Node{NewText("")}
		}
	}
	return d.InsertNodes(at.Next(), right)
}

// MergeNode merges the node at the path into its previous sibling.
func (d *Document) MergeNode(at Path) error {
	prevPath, ok := at.Previous()
	if !ok {
		return fmt.Errorf("%w: no previous sibling for %v", ErrInvalidPath, at)
	}
	node, err := d.RemoveNode(at)
	if err != nil {
		return err
	}
	prev, err := d.NodeAt(prevPath)
	if err != nil {
		return err
	}
	switch {
	case prev.IsText() && node.IsText():
		prev.Text += node.Text
	case !prev.IsText() && !node.IsText():
		prev.Children = append(prev.Children, node.Children...)
	default:
		return fmt.Errorf("%w: cannot merge text with element at %v", ErrInvalidPath, at)
	}
	return nil
}

// InsertText inserts text inside the leaf addressed by pt.
func (d *Document) InsertText(pt Point, text string) error {
	n, err := d.NodeAt(pt.Path)
	if err != nil {
		return err
	}
	if !n.IsText() {
		return fmt.Errorf("%w: %v is not a text leaf", ErrInvalidPath, pt.Path)
	}
	r := []rune(n.Text)
	o := clamp(pt.Offset, 0, len(r))
	n.Text = string(r[:o]) + text + string(r[o:])
	return nil
}

// DeleteText removes up to count runes following pt inside its leaf.
func (d *Document) DeleteText(pt Point, count int) error {
	n, err := d.NodeAt(pt.Path)
	if err != nil {
		return err
	}
	if !n.IsText() {
		return fmt.Errorf("%w: %v is not a text leaf", ErrInvalidPath, pt.Path)
	}
	r := []rune(n.Text)
	from := clamp(pt.Offset, 0, len(r))
	to := clamp(from+count, from, len(r))
	n.Text = string(r[:from]) + string(r[to:])
	return nil
}

// Walk visits nodes in document order. Returning false from fn skips the
// node's descendants.
func (d Document) Walk(fn func(p Path, n Node) bool) {
	walk(d.Children, Path{}, fn)
}

func walk(nodes []Node, parent Path, fn func(Path, Node) bool) {
	for i, n := range nodes {
		p := parent.Child(i)
		if fn(p, n) && !n.IsText() {
			walk(n.Children, p, fn)
		}
	}
}

// LeafBlocks returns, in document order, the paths of text blocks and void
// elements: the blocks a selection can sit in.
func (d Document) LeafBlocks() []Path {
	var out []Path
	d.Walk(func(p Path, n Node) bool {
		if n.IsText() {
			return false
		}
		if IsTextBlock(n.Type) || IsVoid(n.Type) {
			out = append(out, p)
			return false
		}
		return true
	})
	return out
}

// TextPaths returns the paths of the text leaves below root in order.
func (d Document) TextPaths(root Path) []Path {
	var out []Path
	if len(root) == 0 {
		d.Walk(func(p Path, n Node) bool {
			if n.IsText() {
				out = append(out, p)
			}
			return true
		})
		return out
	}
	n, ok := d.Get(root)
	if !ok {
		return nil
	}
	if n.IsText() {
		return []Path{root.Clone()}
	}
	walk(n.Children, root, func(p Path, c Node) bool {
		if c.IsText() {
			out = append(out, p)
		}
		return true
	})
	return out
}

// BlockOf returns the nearest text block or void element containing p.
func (d Document) BlockOf(p Path) (Path, bool) {
	for i := len(p); i >= 1; i-- {
		n, ok := d.Get(p[:i])
		if !ok {
			return nil, false
		}
		if !n.IsText() && (IsTextBlock(n.Type) || IsVoid(n.Type)) {
			return p[:i].Clone(), true
		}
	}
	return nil, false
}

// Above returns the nearest ancestor of p (inclusive) whose type
// satisfies match.
func (d Document) Above(p Path, match func(Type) bool) (Path, bool) {
	for i := len(p); i >= 1; i-- {
		n, ok := d.Get(p[:i])
		if ok && !n.IsText() && match(n.Type) {
			return p[:i].Clone(), true
		}
	}
	return nil, false
}

// BlockOffset converts pt into its leaf block and a rune offset from the
// block start.
func (d Document) BlockOffset(pt Point) (Path, int, error) {
	block, ok := d.BlockOf(pt.Path)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %v is not inside a block", ErrInvalidPath, pt.Path)
	}
	off := 0
	for _, lp := range d.TextPaths(block) {
		leaf, _ := d.Get(lp)
		n := utf8.RuneCountInString(leaf.Text)
		if lp.Equal(pt.Path) {
			return block, off + clamp(pt.Offset, 0, n), nil
		}
		off += n
	}
	return nil, 0, fmt.Errorf("%w: %v is not a text leaf", ErrInvalidPath, pt.Path)
}

// PointAt resolves a rune offset inside a leaf block to a point on one of
// its text leaves. An offset on a leaf boundary resolves to the earlier
// leaf unless forward is set.
func (d Document) PointAt(block Path, offset int, forward bool) (Point, error) {
	leaves := d.TextPaths(block)
	if len(leaves) == 0 {
		return Point{}, fmt.Errorf("%w: %v holds no text", ErrInvalidPath, block)
	}
	if offset < 0 {
		offset = 0
	}
	acc := 0
	for i, lp := range leaves {
		leaf, _ := d.Get(lp)
		n := utf8.RuneCountInString(leaf.Text)
		last := i == len(leaves)-1
		if offset < acc+n || (offset == acc+n && (!forward || last)) {
			return Point{Path: lp, Offset: offset - acc}, nil
		}
		acc += n
	}
	lp := leaves[len(leaves)-1]
	leaf, _ := d.Get(lp)
	return Point{Path: lp, Offset: utf8.RuneCountInString(leaf.Text)}, nil
}

// Start returns the first point in the document.
func (d Document) Start() Point {
	leaves := d.TextPaths(Path{})
	if len(leaves) == 0 {
		return Point{Path: Path{0, 0}}
	}
	return Point{Path: leaves[0]}
}

// End returns the last point in the document.
func (d Document) End() Point {
	leaves := d.TextPaths(Path{})
	if len(leaves) == 0 {
		return Point{Path: Path{0, 0}}
	}
	lp := leaves[len(leaves)-1]
	leaf, _ := d.Get(lp)
	return Point{Path: lp, Offset: utf8.RuneCountInString(leaf.Text)}
}

// BlockText returns the concatenated text of the node at p.
func (d Document) BlockText(p Path) string {
	n, ok := d.Get(p)
	if !ok {
		return ""
	}
	return n.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
