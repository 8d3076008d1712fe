package editor

import (
	"strings"
	"unicode/utf8"

	"github.com/eringen/folio/document"
	"github.com/eringen/folio/markdown"
)

// InsertText types text at the selection, replacing any selected content.
// Single characters run the typing plugins afterwards: markdown
// shortcuts, the slash menu and the emoji picker.
func (e *Editor) InsertText(text string) error {
	if text == "" {
		return nil
	}
	if err := e.apply("type", func(t *tx) error { return t.insertText(text) }); err != nil {
		return err
	}
	if utf8.RuneCountInString(text) == 1 {
		return e.afterTyping(text)
	}
	return nil
}

func (t *tx) insertText(text string) error {
	if err := t.deleteSelection(); err != nil {
		return err
	}
	at := t.anchor
	bp := t.path(at.block)
	n := t.node(at.block)
	if document.IsVoid(n.Type) {
		para := document.Node{Type: document.Paragraph, Children: []document.Node{{Text: text}}}
		if t.marks != nil {
			para.Children[0].Marks = *t.marks
		}
		if err := t.doc.InsertNodes(bp.Next(), para); err != nil {
			return err
		}
		t.collapse(pos{block: at.block + 1, offset: utf8.RuneCountInString(text)})
		return nil
	}
	pt, err := t.point(at, false)
	if err != nil {
		return err
	}
	if t.marks != nil && n.Type != document.CodeBlock {
		if err := t.doc.SplitNode(pt.Path, pt.Offset); err != nil {
			return err
		}
		if err := t.doc.InsertNodes(pt.Path.Next(), document.Node{Text: text, Marks: *t.marks}); err != nil {
			return err
		}
	} else if err := t.doc.InsertText(pt, text); err != nil {
		return err
	}
	t.collapse(pos{block: at.block, offset: at.offset + utf8.RuneCountInString(text)})
	return nil
}

// InsertBreak splits the block at the cursor. An empty list item leaves
// its list instead, code blocks take a newline, and a heading split at
// its end continues as a paragraph.
func (e *Editor) InsertBreak() error {
	return e.apply("break", func(t *tx) error {
		if err := t.deleteSelection(); err != nil {
			return err
		}
		at := t.anchor
		bp := t.path(at.block)
		n := t.node(at.block)
		switch {
		case document.IsVoid(n.Type):
			if err := t.doc.InsertNodes(bp.Next(), document.NewElement(document.Paragraph)); err != nil {
				return err
			}
			t.collapse(pos{block: at.block + 1})
			return nil
		case n.Type == document.CodeBlock:
			return t.insertText("\n")
		case n.Type == document.ListItem && isBlank(n):
			return t.liftItem(at.block)
		}
		atEnd := at.offset >= t.textLen(at.block)
		if err := t.splitBlock(at); err != nil {
			return err
		}
		if n.Type == document.Heading && atEnd {
			if err := t.doc.SetNode(bp.Next(), func(n *document.Node) {
				setType(n, document.Paragraph, 0)
			}); err != nil {
				return err
			}
		}
		t.collapse(pos{block: at.block + 1})
		return nil
	})
}

// InsertSoftBreak inserts a line break inside the current block.
func (e *Editor) InsertSoftBreak() error {
	return e.apply("break", func(t *tx) error { return t.insertText("\n") })
}

// DeleteBackward deletes the character before the cursor, or the
// selection when expanded. At the start of a block it lifts list items,
// resets styled blocks to paragraphs and otherwise merges the block into
// the previous one.
func (e *Editor) DeleteBackward() error {
	return e.apply("delete", func(t *tx) error {
		if !t.collapsed() {
			return t.deleteSelection()
		}
		at := t.anchor
		n := t.node(at.block)
		if document.IsVoid(n.Type) {
			if _, err := t.doc.RemoveNode(t.path(at.block)); err != nil {
				return err
			}
			if at.block > 0 {
				t.collapse(pos{block: at.block - 1, offset: t.textLen(at.block - 1)})
			} else {
				t.collapse(pos{})
			}
			return nil
		}
		if at.offset > 0 {
			p, err := t.deleteRange(pos{block: at.block, offset: at.offset - 1}, at)
			if err != nil {
				return err
			}
			t.collapse(p)
			return nil
		}
		switch n.Type {
		case document.ListItem:
			return t.liftItem(at.block)
		case document.Paragraph, document.TableCell:
		default:
			return t.doc.SetNode(t.path(at.block), func(n *document.Node) {
				setType(n, document.Paragraph, 0)
			})
		}
		if at.block == 0 {
			return errNoChange
		}
		prev := at.block - 1
		pn := t.node(prev)
		switch {
		case n.Type == document.TableCell || pn.Type == document.TableCell:
			return t.moveTo(pos{block: prev, offset: t.textLen(prev)})
		case document.IsVoid(pn.Type):
			if _, err := t.doc.RemoveNode(t.path(prev)); err != nil {
				return err
			}
			t.collapse(pos{block: prev})
			return nil
		case pn.Type == document.Paragraph && isBlank(pn) && len(t.path(prev)) == 1:
			if _, err := t.doc.RemoveNode(t.path(prev)); err != nil {
				return err
			}
			t.collapse(pos{block: prev})
			return nil
		}
		return t.mergeBlocks(prev, at.block)
	})
}

// DeleteForward deletes the character after the cursor, or the selection
// when expanded. At the end of a block the next block merges into it.
func (e *Editor) DeleteForward() error {
	return e.apply("delete", func(t *tx) error {
		if !t.collapsed() {
			return t.deleteSelection()
		}
		at := t.anchor
		n := t.node(at.block)
		if document.IsVoid(n.Type) {
			if _, err := t.doc.RemoveNode(t.path(at.block)); err != nil {
				return err
			}
			t.collapse(pos{block: at.block})
			return nil
		}
		if at.offset < t.textLen(at.block) {
			p, err := t.deleteRange(at, pos{block: at.block, offset: at.offset + 1})
			if err != nil {
				return err
			}
			t.collapse(p)
			return nil
		}
		next := at.block + 1
		if next >= len(t.blocks()) {
			return errNoChange
		}
		nn := t.node(next)
		switch {
		case n.Type == document.TableCell || nn.Type == document.TableCell:
			return t.moveTo(pos{block: next})
		case document.IsVoid(nn.Type):
			_, err := t.doc.RemoveNode(t.path(next))
			return err
		}
		return t.mergeBlocks(at.block, next)
	})
}

// DeleteFragment deletes the selected content. The block holding the end
// of the selection merges into the block holding its start.
func (e *Editor) DeleteFragment() error {
	return e.apply("delete", func(t *tx) error {
		if t.collapsed() {
			return errNoChange
		}
		return t.deleteSelection()
	})
}

// Paste inserts clipboard content at the selection. HTML is converted
// through Markdown into document nodes; without HTML each line of text
// becomes a paragraph.
func (e *Editor) Paste(html, text string) error {
	var frag document.Document
	if strings.TrimSpace(html) != "" {
		d, err := markdown.FromHTML(html)
		if err != nil {
			return err
		}
		frag = d
	} else {
		text = strings.ReplaceAll(text, "\r\n", "\n")
		if text == "" {
			return nil
		}
		var blocks []document.Node
		for _, line := range strings.Split(text, "\n") {
			blocks = append(blocks, document.NewParagraph(line))
		}
		frag = document.New(blocks...)
	}
	return e.apply("paste", func(t *tx) error { return t.insertFragment(frag) })
}

func (t *tx) insertFragment(frag document.Document) error {
	if err := t.deleteSelection(); err != nil {
		return err
	}
	blocks := frag.Children
	at := t.anchor
	bp := t.path(at.block)
	n := t.node(at.block)

	inline := len(blocks) == 1 && blocks[0].Type == document.Paragraph
	switch {
	case document.IsVoid(n.Type):
		if err := t.doc.InsertNodes(document.Path{bp[0] + 1}, blocks...); err != nil {
			return err
		}
		last := t.lastOrdinal(document.Path{bp[0] + len(blocks)})
		t.collapse(pos{block: last, offset: t.textLen(last)})
		return nil
	case n.Type == document.CodeBlock || (len(bp) > 1 && !inline):
		pt, err := t.point(at, false)
		if err != nil {
			return err
		}
		text := frag.PlainText()
		if err := t.doc.InsertText(pt, text); err != nil {
			return err
		}
		t.collapse(pos{block: at.block, offset: at.offset + utf8.RuneCountInString(text)})
		return nil
	case inline:
		pt, err := t.point(at, false)
		if err != nil {
			return err
		}
		if err := t.doc.SplitNode(pt.Path, pt.Offset); err != nil {
			return err
		}
		if err := t.doc.InsertNodes(pt.Path.Next(), blocks[0].Children...); err != nil {
			return err
		}
		t.collapse(pos{block: at.block, offset: at.offset + utf8.RuneCountInString(blocks[0].String())})
		return nil
	}

	if err := t.splitBlock(at); err != nil {
		return err
	}
	if err := t.doc.InsertNodes(bp.Next(), blocks...); err != nil {
		return err
	}
	first := bp[0] + 1
	lastTop := first + len(blocks) - 1
	if right := (document.Path{lastTop + 1}); isEmptyParagraph(t.doc, right) {
		if _, err := t.doc.RemoveNode(right); err != nil {
			return err
		}
	}
	if isEmptyParagraph(t.doc, bp) {
		if _, err := t.doc.RemoveNode(bp); err != nil {
			return err
		}
		lastTop--
	}
	last := t.lastOrdinal(document.Path{lastTop})
	t.collapse(pos{block: last, offset: t.textLen(last)})
	return nil
}

func isEmptyParagraph(d document.Document, p document.Path) bool {
	n, ok := d.Get(p)
	return ok && n.Type == document.Paragraph && isBlank(n)
}
