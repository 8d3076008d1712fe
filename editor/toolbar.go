package editor

import (
	"github.com/eringen/folio/document"
)

// afterTyping runs the typing plugins for a single typed character.
func (e *Editor) afterTyping(typed string) error {
	fired, err := e.runShortcuts(typed)
	if err != nil || fired {
		return err
	}
	switch typed {
	case "/":
		e.openSlash()
	case ":":
		if _, err := e.completeEmoji(); err != nil {
			return err
		}
	}
	e.syncOverlays()
	return nil
}

func (e *Editor) syncOverlays() {
	e.syncSlash()
	e.syncEmoji()
}

// Toolbar is the floating toolbar shown over an expanded selection.
type Toolbar struct {
	Visible bool            `json:"visible"`
	Marks   []document.Mark `json:"marks,omitempty"`
	Block   document.Type   `json:"block,omitempty"`
	Link    string          `json:"link,omitempty"`
}

// Toolbar reports the floating toolbar. It is visible only for an
// expanded selection outside code blocks that does not sit on voids alone.
func (e *Editor) Toolbar() Toolbar {
	if e.sel == nil || e.sel.IsCollapsed() {
		return Toolbar{}
	}
	text := false
	for _, p := range e.selectedBlocks() {
		n, _ := e.doc.Get(p)
		if n.Type == document.CodeBlock {
			return Toolbar{}
		}
		if !document.IsVoid(n.Type) {
			text = true
		}
	}
	if !text {
		return Toolbar{}
	}
	return Toolbar{
		Visible: true,
		Marks:   e.activeMarks().Marks(),
		Block:   e.activeBlock(),
		Link:    e.ActiveLink(),
	}
}

// activeBlock returns the type of the anchor block, reporting list items
// by their list type.
func (e *Editor) activeBlock() document.Type {
	p, n, ok := e.anchorBlock()
	if !ok {
		return ""
	}
	if n.Type == document.ListItem {
		list, _ := e.doc.Get(p.Parent())
		return list.Type
	}
	return n.Type
}

// Ribbon is the always-visible formatting bar.
type Ribbon struct {
	Marks        []document.Mark `json:"marks"`
	Block        document.Type   `json:"block"`
	HeadingLevel int             `json:"headingLevel,omitempty"`
	ListDepth    int             `json:"listDepth,omitempty"`
	InTable      bool            `json:"inTable"`
	CanUndo      bool            `json:"canUndo"`
	CanRedo      bool            `json:"canRedo"`
}

func (e *Editor) Ribbon() Ribbon {
	r := Ribbon{
		Marks:   e.activeMarks().Marks(),
		Block:   e.activeBlock(),
		CanUndo: e.CanUndo(),
		CanRedo: e.CanRedo(),
	}
	p, n, ok := e.anchorBlock()
	if !ok {
		return r
	}
	if n.Type == document.Heading {
		r.HeadingLevel = n.Level
	}
	r.InTable = n.Type == document.TableCell
	for i := len(p) - 1; i >= 1; i-- {
		anc, _ := e.doc.Get(p[:i])
		if document.IsList(anc.Type) {
			r.ListDepth++
		}
	}
	return r
}

// State is a full snapshot of the editor for clients.
type State struct {
	Version   int               `json:"version"`
	Document  document.Document `json:"document"`
	Selection *document.Range   `json:"selection"`
	Toolbar   Toolbar           `json:"toolbar"`
	Ribbon    Ribbon            `json:"ribbon"`
	Slash     *SlashState       `json:"slash,omitempty"`
	Emoji     *EmojiState       `json:"emoji,omitempty"`
}

func (e *Editor) State() State {
	return State{
		Version:   e.version,
		Document:  e.Document(),
		Selection: e.Selection(),
		Toolbar:   e.Toolbar(),
		Ribbon:    e.Ribbon(),
		Slash:     e.Slash(),
		Emoji:     e.Emoji(),
	}
}
