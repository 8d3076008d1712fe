package editor

import "github.com/eringen/folio/document"

// HistoryLimit caps the number of undo entries kept.
const HistoryLimit = 100

type snapshot struct {
	doc document.Document
	sel *document.Range
}

func (e *Editor) snapshot() snapshot {
	return snapshot{doc: e.doc, sel: e.Selection()}
}

// history keeps undo and redo stacks of whole-document snapshots.
// Documents in the stacks are never mutated; edits always work on clones.
type history struct {
	undos, redos []snapshot
	limit        int

	// run tracks the last coalescable change.
	runKind  string
	runBlock int
	inRun    bool
}

// Kinds of change that merge into the previous entry when repeated in
// the same block.
var coalesced = map[string]bool{"type": true, "delete": true}

func (h *history) record(before snapshot, kind string, block int) {
	h.redos = nil
	if coalesced[kind] && h.inRun && h.runKind == kind && h.runBlock == block && len(h.undos) > 0 {
		return
	}
	h.undos = append(h.undos, before)
	if h.limit > 0 && len(h.undos) > h.limit {
		n := copy(h.undos, h.undos[len(h.undos)-h.limit:])
		h.undos = h.undos[:n]
	}
	h.runKind, h.runBlock, h.inRun = kind, block, coalesced[kind]
}

func (h *history) breakRun() { h.inRun = false }

func (h *history) undo(current snapshot) (snapshot, bool) {
	if len(h.undos) == 0 {
		return snapshot{}, false
	}
	s := h.undos[len(h.undos)-1]
	h.undos = h.undos[:len(h.undos)-1]
	h.redos = append(h.redos, current)
	h.breakRun()
	return s, true
}

func (h *history) redo(current snapshot) (snapshot, bool) {
	if len(h.redos) == 0 {
		return snapshot{}, false
	}
	s := h.redos[len(h.redos)-1]
	h.redos = h.redos[:len(h.redos)-1]
	h.undos = append(h.undos, current)
	h.breakRun()
	return s, true
}

// Undo reverts the last change. It reports whether anything was undone.
func (e *Editor) Undo() bool {
	s, ok := e.hist.undo(e.snapshot())
	if ok {
		e.restore(s)
	}
	return ok
}

// Redo reapplies the last undone change.
func (e *Editor) Redo() bool {
	s, ok := e.hist.redo(e.snapshot())
	if ok {
		e.restore(s)
	}
	return ok
}

func (e *Editor) CanUndo() bool { return len(e.hist.undos) > 0 }
func (e *Editor) CanRedo() bool { return len(e.hist.redos) > 0 }

func (e *Editor) restore(s snapshot) {
	e.doc = s.doc
	e.sel = s.sel
	e.pending = nil
	e.version++
	e.slash = slashMenu{}
	e.emoji = emojiPicker{}
	e.syncOverlays()
}
