package editor

import (
	"strings"
	"unicode"

	"github.com/eringen/folio/document"
)

// SlashItem is one entry of the slash command menu.
type SlashItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Group       string   `json:"group"`
	Keywords    []string `json:"keywords,omitempty"`
	NeedsURL    bool     `json:"needsUrl,omitempty"`
}

var slashItems = []SlashItem{
	{ID: "paragraph", Title: "Text", Description: "Plain paragraph", Group: "Basic", Keywords: []string{"paragraph", "plain"}},
	{ID: "heading1", Title: "Heading 1", Description: "Large section heading", Group: "Basic", Keywords: []string{"h1", "title"}},
	{ID: "heading2", Title: "Heading 2", Description: "Medium section heading", Group: "Basic", Keywords: []string{"h2", "subtitle"}},
	{ID: "heading3", Title: "Heading 3", Description: "Small section heading", Group: "Basic", Keywords: []string{"h3"}},
	{ID: "bulleted-list", Title: "Bulleted list", Description: "Simple bulleted list", Group: "Lists", Keywords: []string{"ul", "bullet", "unordered"}},
	{ID: "numbered-list", Title: "Numbered list", Description: "List with numbering", Group: "Lists", Keywords: []string{"ol", "ordered", "number"}},
	{ID: "quote", Title: "Quote", Description: "Capture a quote", Group: "Basic", Keywords: []string{"blockquote", "cite"}},
	{ID: "code-block", Title: "Code block", Description: "Preformatted code", Group: "Basic", Keywords: []string{"pre", "snippet", "code"}},
	{ID: "callout", Title: "Callout", Description: "Highlighted note", Group: "Basic", Keywords: []string{"note", "info", "warning", "tip"}},
	{ID: "divider", Title: "Divider", Description: "Horizontal rule", Group: "Basic", Keywords: []string{"hr", "separator", "line"}},
	{ID: "table", Title: "Table", Description: "3×3 table", Group: "Advanced", Keywords: []string{"grid", "rows", "columns"}},
	{ID: "image", Title: "Image", Description: "Embed an image by URL", Group: "Media", Keywords: []string{"img", "picture", "photo"}, NeedsURL: true},
	{ID: "video", Title: "Video", Description: "Embed a video by URL", Group: "Media", Keywords: []string{"movie", "clip"}, NeedsURL: true},
	{ID: "file", Title: "File", Description: "Link a downloadable file", Group: "Media", Keywords: []string{"attachment", "download", "pdf"}, NeedsURL: true},
	{ID: "embed", Title: "Embed", Description: "Link preview card", Group: "Media", Keywords: []string{"link", "preview", "bookmark"}, NeedsURL: true},
}

// SlashItems returns the menu entries in display order.
func SlashItems() []SlashItem { return append([]SlashItem(nil), slashItems...) }

// FilterSlash returns the items matching query: title or keyword prefix
// matches first, then substring matches.
func FilterSlash(query string) []SlashItem {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return SlashItems()
	}
	var prefix, sub []SlashItem
	for _, it := range slashItems {
		words := append([]string{strings.ToLower(it.Title)}, it.Keywords...)
		matched := false
		for _, w := range words {
			if strings.HasPrefix(w, q) {
				prefix = append(prefix, it)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		for _, w := range words {
			if strings.Contains(w, q) {
				sub = append(sub, it)
				break
			}
		}
	}
	return append(prefix, sub...)
}

type slashMenu struct {
	open   bool
	anchor pos
	query  string
	items  []SlashItem
	active int
}

// SlashState is the slash menu as shown to the user.
type SlashState struct {
	Anchor document.Point `json:"anchor"`
	Query  string         `json:"query"`
	Items  []SlashItem    `json:"items"`
	Active int            `json:"active"`
}

// Slash returns the open slash menu, or nil.
func (e *Editor) Slash() *SlashState {
	if !e.slash.open {
		return nil
	}
	return &SlashState{
		Anchor: toPoint(e.doc, e.slash.anchor),
		Query:  e.slash.query,
		Items:  append([]SlashItem(nil), e.slash.items...),
		Active: e.slash.active,
	}
}

// openSlash opens the menu when "/" was just typed at the start of a
// block or after whitespace.
func (e *Editor) openSlash() {
	if e.sel == nil || !e.sel.IsCollapsed() {
		return
	}
	at, err := toPos(e.doc, e.sel.Anchor)
	if err != nil || at.offset == 0 {
		return
	}
	_, n, ok := e.anchorBlock()
	if !ok || n.Type == document.CodeBlock {
		return
	}
	text := []rune(n.String())
	if at.offset > len(text) || text[at.offset-1] != '/' {
		return
	}
	if at.offset > 1 && !unicode.IsSpace(text[at.offset-2]) {
		return
	}
	e.emoji = emojiPicker{}
	e.slash = slashMenu{open: true, anchor: pos{block: at.block, offset: at.offset - 1}, items: SlashItems()}
}

// syncSlash refilters the open menu from the text after its anchor and
// closes it when the cursor has left the query.
func (e *Editor) syncSlash() {
	if !e.slash.open {
		return
	}
	if e.sel == nil || !e.sel.IsCollapsed() {
		e.slash = slashMenu{}
		return
	}
	at, err := toPos(e.doc, e.sel.Anchor)
	a := e.slash.anchor
	if err != nil || at.block != a.block || at.offset <= a.offset {
		e.slash = slashMenu{}
		return
	}
	_, n, _ := e.anchorBlock()
	text := []rune(n.String())
	if a.offset >= len(text) || text[a.offset] != '/' || at.offset > len(text) {
		e.slash = slashMenu{}
		return
	}
	query := string(text[a.offset+1 : at.offset])
	items := FilterSlash(query)
	if len(items) == 0 && strings.ContainsFunc(query, unicode.IsSpace) {
		e.slash = slashMenu{}
		return
	}
	if query != e.slash.query {
		e.slash.active = 0
	}
	e.slash.query = query
	e.slash.items = items
	if e.slash.active >= len(items) {
		e.slash.active = 0
	}
}

// MoveSlash moves the highlighted item by delta, wrapping around.
func (e *Editor) MoveSlash(delta int) error {
	if !e.slash.open {
		return ErrMenuClosed
	}
	n := len(e.slash.items)
	if n == 0 {
		return nil
	}
	e.slash.active = ((e.slash.active+delta)%n + n) % n
	return nil
}

// DismissSlash closes the menu and leaves the typed text in place.
func (e *Editor) DismissSlash() { e.slash = slashMenu{} }

// AcceptSlash deletes the "/query" text and runs the highlighted item.
// Media items need m.URL.
func (e *Editor) AcceptSlash(m Media) error {
	if !e.slash.open || len(e.slash.items) == 0 {
		return ErrMenuClosed
	}
	item := e.slash.items[e.slash.active]
	var void document.Node
	if item.NeedsURL {
		n, err := m.node(document.Type(item.ID))
		if err != nil {
			return err
		}
		void = n
	}
	anchor := e.slash.anchor
	e.slash = slashMenu{}
	return e.apply("slash", func(t *tx) error {
		p, err := t.deleteRange(anchor, t.anchor)
		if err != nil {
			return err
		}
		t.collapse(p)
		return t.runSlashItem(item.ID, void)
	})
}

func (t *tx) runSlashItem(id string, void document.Node) error {
	i := t.anchor.block
	switch id {
	case "paragraph":
		return t.setBlock(i, document.Paragraph, 0)
	case "heading1", "heading2", "heading3":
		return t.setBlock(i, document.Heading, int(id[len(id)-1]-'0'))
	case "quote":
		return t.setBlock(i, document.Quote, 0)
	case "code-block":
		return t.setBlock(i, document.CodeBlock, 0)
	case "callout":
		return t.setBlock(i, document.Callout, 0)
	case "bulleted-list", "numbered-list":
		typ := document.Type(id)
		n := t.node(i)
		if n.Type == document.ListItem {
			return t.doc.SetNode(t.path(i).Parent(), func(n *document.Node) { n.Type = typ })
		}
		if document.IsVoid(n.Type) || n.Type == document.TableCell {
			return ErrUnsupported
		}
		return t.wrapInList([]int{i}, typ)
	case "divider":
		return t.insertVoid(document.NewElement(document.Divider))
	case "table":
		at, err := t.insertBlock(newTable(3, 3))
		if err != nil {
			return err
		}
		t.collapse(pos{block: t.ordinal(at)})
		return nil
	case "image", "video", "file", "embed":
		return t.insertVoid(void)
	}
	return ErrUnknownCommand
}
