package editor

import (
	"fmt"

	"github.com/eringen/folio/document"
)

// ToggleMark adds m across the selection, or removes it when every
// selected run already carries it. With a collapsed selection the change
// is held as pending marks for the next insertion.
func (e *Editor) ToggleMark(m document.Mark) error {
	if !document.ValidMark(m) {
		return fmt.Errorf("%w: %q", ErrUnknownMark, m)
	}
	if e.IsMarkActive(m) {
		return e.setMark(m, false)
	}
	return e.setMark(m, true)
}

func (e *Editor) AddMark(m document.Mark) error {
	if !document.ValidMark(m) {
		return fmt.Errorf("%w: %q", ErrUnknownMark, m)
	}
	return e.setMark(m, true)
}

func (e *Editor) RemoveMark(m document.Mark) error {
	if !document.ValidMark(m) {
		return fmt.Errorf("%w: %q", ErrUnknownMark, m)
	}
	return e.setMark(m, false)
}

func (e *Editor) setMark(m document.Mark, on bool) error {
	if e.sel == nil {
		return ErrNoSelection
	}
	update := func(s document.MarkSet) document.MarkSet {
		if on {
			return s.With(m)
		}
		return s.Without(m)
	}
	if e.sel.IsCollapsed() {
		marks := update(e.currentMarks())
		e.pending = &marks
		return nil
	}
	return e.apply("mark", func(t *tx) error {
		start, end := t.edges()
		sp, err := t.point(start, true)
		if err != nil {
			return err
		}
		ep, err := t.point(end, false)
		if err != nil {
			return err
		}
		return t.doc.ApplyMarks(sp, ep, update)
	})
}

// IsMarkActive reports whether m applies at the selection: the pending
// or current marks for a cursor, every selected run otherwise.
func (e *Editor) IsMarkActive(m document.Mark) bool {
	return e.activeMarks().Has(m)
}

func (e *Editor) activeMarks() document.MarkSet {
	if e.sel == nil {
		return 0
	}
	if e.sel.IsCollapsed() {
		return e.currentMarks()
	}
	start, end := e.sel.Edges()
	marks, err := e.doc.MarksInRange(start, end)
	if err != nil {
		return 0
	}
	return marks
}

// WrapLink links the selected text to url. A collapsed selection inserts
// the url itself as linked text.
func (e *Editor) WrapLink(url string) error {
	if document.SafeURL(url) == "" {
		return fmt.Errorf("%w: %q", ErrUnsafeURL, url)
	}
	return e.apply("link", func(t *tx) error {
		if t.collapsed() {
			at := t.anchor
			n := t.node(at.block)
			if document.IsVoid(n.Type) || n.Type == document.CodeBlock {
				return ErrUnsupported
			}
			pt, err := t.point(at, false)
			if err != nil {
				return err
			}
			if err := t.doc.SplitNode(pt.Path, pt.Offset); err != nil {
				return err
			}
			link := document.Node{Type: document.Link, URL: url, Children: []document.Node{document.NewText(url)}}
			if err := t.doc.InsertNodes(pt.Path.Next(), link); err != nil {
				return err
			}
			end := pos{block: at.block, offset: at.offset + len([]rune(url))}
			t.collapse(end)
			return nil
		}
		start, end := t.edges()
		for i := start.block; i <= end.block; i++ {
			n := t.node(i)
			if document.IsVoid(n.Type) || n.Type == document.CodeBlock {
				continue
			}
			from, to := 0, t.textLen(i)
			if i == start.block {
				from = start.offset
			}
			if i == end.block {
				to = end.offset
			}
			if from >= to {
				continue
			}
			bp := t.path(i)
			children := t.doc.Fragment(bp, 0, from)
			children = append(children, document.Node{Type: document.Link, URL: url, Children: t.doc.Fragment(bp, from, to)})
			children = append(children, t.doc.Fragment(bp, to, t.textLen(i))...)
			if err := t.doc.SetNode(bp, func(n *document.Node) { n.Children = children }); err != nil {
				return err
			}
		}
		return nil
	})
}

// UnwrapLink removes the link under the cursor, or every link in the
// selected blocks when the selection is expanded.
func (e *Editor) UnwrapLink() error {
	return e.apply("link", func(t *tx) error {
		if t.collapsed() {
			pt, err := t.point(t.anchor, false)
			if err != nil {
				return err
			}
			lp, ok := t.doc.Above(pt.Path, func(typ document.Type) bool { return typ == document.Link })
			if !ok {
				return errNoChange
			}
			link, err := t.doc.RemoveNode(lp)
			if err != nil {
				return err
			}
			return t.doc.InsertNodes(lp, link.Children...)
		}
		start, end := t.edges()
		for i := start.block; i <= end.block; i++ {
			if err := t.doc.SetNode(t.path(i), func(n *document.Node) {
				n.Children = unwrapLinks(n.Children)
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func unwrapLinks(nodes []document.Node) []document.Node {
	out := make([]document.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == document.Link {
			out = append(out, unwrapLinks(n.Children)...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// ActiveLink returns the URL of the link holding the selection anchor.
func (e *Editor) ActiveLink() string {
	if e.sel == nil {
		return ""
	}
	lp, ok := e.doc.Above(e.sel.Anchor.Path, func(typ document.Type) bool { return typ == document.Link })
	if !ok {
		return ""
	}
	n, _ := e.doc.Get(lp)
	return n.URL
}
