// Package editor implements a rich-text editing state machine over
// document trees: a selection, commands that transform the document,
// undo history, and the state behind the editing overlays (slash menu,
// emoji picker, floating toolbar and formatting ribbon).
//
// An Editor is not safe for concurrent use.
package editor

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/eringen/folio/document"
)

var (
	ErrNoSelection    = errors.New("editor: no selection")
	ErrUnknownCommand = errors.New("editor: unknown command")
	ErrUnknownMark    = errors.New("editor: unknown mark")
	ErrUnsupported    = errors.New("editor: not supported at the selection")
	ErrUnsafeURL      = errors.New("editor: unsafe url")
	ErrMenuClosed     = errors.New("editor: menu is not open")
	ErrURLRequired    = errors.New("editor: url required")
)

// errNoChange aborts a transaction without touching the document or
// history. The transaction's selection is still applied.
var errNoChange = errors.New("no change")

// Editor owns a document and the selection inside it.
type Editor struct {
	doc     document.Document
	sel     *document.Range
	version int
	pending *document.MarkSet
	hist    history
	slash   slashMenu
	emoji   emojiPicker
}

// New returns an editor over a normalized copy of doc with no selection.
func New(doc document.Document) *Editor {
	doc = doc.Clone()
	document.Normalize(&doc)
	return &Editor{doc: doc, hist: history{limit: HistoryLimit}}
}

// Document returns a copy of the current document.
func (e *Editor) Document() document.Document { return e.doc.Clone() }

// Selection returns the current selection or nil when the editor has none.
func (e *Editor) Selection() *document.Range {
	if e.sel == nil {
		return nil
	}
	r := *e.sel
	return &r
}

// Version counts document changes, including undo and redo.
func (e *Editor) Version() int { return e.version }

// Select sets the selection. Points are clamped to valid text positions.
func (e *Editor) Select(r document.Range) error {
	anchor, err := e.clampPoint(r.Anchor)
	if err != nil {
		return err
	}
	focus, err := e.clampPoint(r.Focus)
	if err != nil {
		return err
	}
	e.setSelection(&document.Range{Anchor: anchor, Focus: focus})
	return nil
}

// Collapse collapses the selection onto its start, or its end when toEnd
// is set.
func (e *Editor) Collapse(toEnd bool) error {
	if e.sel == nil {
		return ErrNoSelection
	}
	start, end := e.sel.Edges()
	p := start
	if toEnd {
		p = end
	}
	r := document.Collapsed(p)
	e.setSelection(&r)
	return nil
}

// SelectAll selects the whole document.
func (e *Editor) SelectAll() {
	e.setSelection(&document.Range{Anchor: e.doc.Start(), Focus: e.doc.End()})
}

// MoveTo places a collapsed cursor at a rune offset inside a block.
func (e *Editor) MoveTo(block document.Path, offset int) error {
	b, ok := e.doc.BlockOf(block)
	if !ok {
		return fmt.Errorf("%w: %v", document.ErrInvalidPath, block)
	}
	pt, err := e.doc.PointAt(b, offset, false)
	if err != nil {
		return err
	}
	r := document.Collapsed(pt)
	e.setSelection(&r)
	return nil
}

// Deselect drops the selection.
func (e *Editor) Deselect() { e.setSelection(nil) }

func (e *Editor) setSelection(r *document.Range) {
	e.sel = r
	e.pending = nil
	e.hist.breakRun()
	e.syncOverlays()
}

func (e *Editor) clampPoint(pt document.Point) (document.Point, error) {
	n, ok := e.doc.Get(pt.Path)
	if !ok {
		return document.Point{}, fmt.Errorf("%w: %v", document.ErrInvalidPath, pt.Path)
	}
	if n.IsText() {
		pt.Offset = max(0, min(pt.Offset, utf8.RuneCountInString(n.Text)))
		pt.Path = pt.Path.Clone()
		return pt, nil
	}
	if b, ok := e.doc.BlockOf(pt.Path); ok {
		return e.doc.PointAt(b, pt.Offset, false)
	}
	leaves := e.doc.TextPaths(pt.Path)
	if len(leaves) == 0 {
		return document.Point{}, fmt.Errorf("%w: %v holds no text", document.ErrInvalidPath, pt.Path)
	}
	return document.Point{Path: leaves[0]}, nil
}

// pos is a selection endpoint held as a leaf block ordinal and a rune
// offset inside that block. Unlike a Point it survives leaf splits and
// merges, and wrapping or unwrapping of the block.
type pos struct {
	block  int
	offset int
}

func toPos(d document.Document, pt document.Point) (pos, error) {
	b, off, err := d.BlockOffset(pt)
	if err != nil {
		return pos{}, err
	}
	for i, p := range d.LeafBlocks() {
		if p.Equal(b) {
			return pos{block: i, offset: off}, nil
		}
	}
	return pos{}, fmt.Errorf("%w: %v", document.ErrInvalidPath, pt.Path)
}

func toPoint(d document.Document, p pos) document.Point {
	blocks := d.LeafBlocks()
	if len(blocks) == 0 {
		return d.Start()
	}
	i := max(0, min(p.block, len(blocks)-1))
	pt, err := d.PointAt(blocks[i], p.offset, false)
	if err != nil {
		return d.Start()
	}
	return pt
}

// apply runs fn as one undoable change against a copy of the document.
func (e *Editor) apply(kind string, fn func(t *tx) error) error {
	if e.sel == nil {
		return ErrNoSelection
	}
	anchor, err := toPos(e.doc, e.sel.Anchor)
	if err != nil {
		return err
	}
	focus, err := toPos(e.doc, e.sel.Focus)
	if err != nil {
		return err
	}
	t := &tx{doc: e.doc.Clone(), anchor: anchor, focus: focus, marks: e.pending}
	if err := fn(t); err != nil {
		if !errors.Is(err, errNoChange) {
			return err
		}
		if t.moved {
			e.setSelection(&document.Range{Anchor: toPoint(e.doc, t.anchor), Focus: toPoint(e.doc, t.focus)})
		}
		return nil
	}
	document.Normalize(&t.doc)
	e.hist.record(e.snapshot(), kind, anchor.block)
	e.doc = t.doc
	e.sel = &document.Range{Anchor: toPoint(t.doc, t.anchor), Focus: toPoint(t.doc, t.focus)}
	e.pending = t.nextMarks
	e.version++
	e.syncOverlays()
	return nil
}

// currentMarks returns the marks the next inserted text would carry.
func (e *Editor) currentMarks() document.MarkSet {
	if e.pending != nil {
		return *e.pending
	}
	if e.sel == nil {
		return 0
	}
	n, ok := e.doc.Get(e.sel.Anchor.Path)
	if !ok || !n.IsText() {
		return 0
	}
	return n.Marks
}

// anchorBlock returns the leaf block holding the selection anchor.
func (e *Editor) anchorBlock() (document.Path, document.Node, bool) {
	if e.sel == nil {
		return nil, document.Node{}, false
	}
	b, ok := e.doc.BlockOf(e.sel.Anchor.Path)
	if !ok {
		return nil, document.Node{}, false
	}
	n, _ := e.doc.Get(b)
	return b, n, true
}

// selectedBlocks returns the paths of the leaf blocks the selection touches.
func (e *Editor) selectedBlocks() []document.Path {
	if e.sel == nil {
		return nil
	}
	start, end := e.sel.Edges()
	sp, err := toPos(e.doc, start)
	if err != nil {
		return nil
	}
	ep, err := toPos(e.doc, end)
	if err != nil {
		return nil
	}
	blocks := e.doc.LeafBlocks()
	if ep.block >= len(blocks) {
		ep.block = len(blocks) - 1
	}
	return blocks[sp.block : ep.block+1]
}
