package editor

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"github.com/eringen/folio/document"
)

// EmojiLimit caps the picker's match list.
const EmojiLimit = 8

// Emoji is a named emoji character.
type Emoji struct {
	Name     string   `json:"name"`
	Char     string   `json:"char"`
	Keywords []string `json:"keywords,omitempty"`
}

//go:embed emoji.txt
var emojiData string

var (
	emojis      = parseEmoji(emojiData)
	emojiByName = indexEmoji(emojis)
)

func parseEmoji(data string) []Emoji {
	var out []Emoji
	for _, line := range strings.Split(data, "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f := strings.Split(line, "\t")
		if len(f) < 2 {
			continue
		}
		em := Emoji{Name: f[0], Char: f[1]}
		if len(f) > 2 {
			em.Keywords = strings.Fields(f[2])
		}
		out = append(out, em)
	}
	return out
}

func indexEmoji(list []Emoji) map[string]Emoji {
	m := make(map[string]Emoji, len(list))
	for _, em := range list {
		m[em.Name] = em
	}
	return m
}

// LookupEmoji finds an emoji by exact name.
func LookupEmoji(name string) (Emoji, bool) {
	em, ok := emojiByName[strings.ToLower(name)]
	return em, ok
}

// SearchEmoji returns up to limit emoji for query: name prefix matches,
// then keyword prefix matches, then name substring matches.
func SearchEmoji(query string, limit int) []Emoji {
	q := strings.ToLower(query)
	if q == "" || limit <= 0 {
		return nil
	}
	var name, keyword, sub []Emoji
	for _, em := range emojis {
		switch {
		case strings.HasPrefix(em.Name, q):
			name = append(name, em)
		case hasKeywordPrefix(em, q):
			keyword = append(keyword, em)
		case strings.Contains(em.Name, q):
			sub = append(sub, em)
		}
	}
	out := append(append(name, keyword...), sub...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func hasKeywordPrefix(em Emoji, q string) bool {
	for _, k := range em.Keywords {
		if strings.HasPrefix(k, q) {
			return true
		}
	}
	return false
}

func isEmojiNameRune(r rune) bool {
	return r == '_' || r == '+' || r == '-' || unicode.IsDigit(r) || (r >= 'a' && r <= 'z')
}

type emojiPicker struct {
	open      bool
	anchor    pos
	query     string
	matches   []Emoji
	active    int
	dismissed *pos
}

// EmojiState is the emoji picker as shown to the user.
type EmojiState struct {
	Anchor  document.Point `json:"anchor"`
	Query   string         `json:"query"`
	Matches []Emoji        `json:"matches"`
	Active  int            `json:"active"`
}

// Emoji returns the open emoji picker, or nil.
func (e *Editor) Emoji() *EmojiState {
	if !e.emoji.open {
		return nil
	}
	return &EmojiState{
		Anchor:  toPoint(e.doc, e.emoji.anchor),
		Query:   e.emoji.query,
		Matches: append([]Emoji(nil), e.emoji.matches...),
		Active:  e.emoji.active,
	}
}

// emojiTrigger finds a ":name" being typed right before the cursor and
// returns the offset of its colon. The colon must start the block or
// follow whitespace.
func emojiTrigger(before []rune) (int, string, bool) {
	i := len(before)
	for i > 0 && isEmojiNameRune(before[i-1]) {
		i--
	}
	if i == 0 || before[i-1] != ':' {
		return 0, "", false
	}
	colon := i - 1
	if colon > 0 && !unicode.IsSpace(before[colon-1]) {
		return 0, "", false
	}
	return colon, string(before[i:]), true
}

// cursorText returns the cursor position and the block text before it.
func (e *Editor) cursorText() (pos, []rune, document.Node, bool) {
	if e.sel == nil || !e.sel.IsCollapsed() {
		return pos{}, nil, document.Node{}, false
	}
	at, err := toPos(e.doc, e.sel.Anchor)
	if err != nil {
		return pos{}, nil, document.Node{}, false
	}
	_, n, ok := e.anchorBlock()
	if !ok {
		return pos{}, nil, document.Node{}, false
	}
	text := []rune(n.String())
	if at.offset > len(text) {
		return pos{}, nil, document.Node{}, false
	}
	return at, text[:at.offset], n, true
}

// completeEmoji replaces ":name:" with its emoji when the closing colon
// was just typed and the name matches exactly.
func (e *Editor) completeEmoji() (bool, error) {
	at, before, n, ok := e.cursorText()
	if !ok || n.Type == document.CodeBlock || len(before) < 3 {
		return false, nil
	}
	colon, name, ok := emojiTrigger(before[:len(before)-1])
	if !ok || name == "" {
		return false, nil
	}
	em, ok := LookupEmoji(name)
	if !ok {
		return false, nil
	}
	e.emoji = emojiPicker{}
	return true, e.replaceWith(pos{block: at.block, offset: colon}, em.Char)
}

// replaceWith replaces the text from start to the cursor with text.
func (e *Editor) replaceWith(start pos, text string) error {
	return e.apply("emoji", func(t *tx) error {
		p, err := t.deleteRange(start, t.anchor)
		if err != nil {
			return err
		}
		t.collapse(p)
		return t.insertText(text)
	})
}

// syncEmoji opens, refilters or closes the picker from the text before
// the cursor.
func (e *Editor) syncEmoji() {
	if e.slash.open {
		e.emoji = emojiPicker{dismissed: e.emoji.dismissed}
		return
	}
	at, before, n, ok := e.cursorText()
	if !ok || n.Type == document.CodeBlock || e.currentMarks().Has(document.Code) {
		e.emoji = emojiPicker{dismissed: e.emoji.dismissed}
		return
	}
	colon, query, ok := emojiTrigger(before)
	anchor := pos{block: at.block, offset: colon}
	if d := e.emoji.dismissed; d != nil && ok && *d == anchor {
		e.emoji.open = false
		return
	}
	if !ok || len([]rune(query)) < 2 {
		e.emoji = emojiPicker{}
		return
	}
	matches := SearchEmoji(query, EmojiLimit)
	if len(matches) == 0 {
		e.emoji = emojiPicker{}
		return
	}
	active := 0
	if e.emoji.open && e.emoji.anchor == anchor && e.emoji.query == query {
		active = min(e.emoji.active, len(matches)-1)
	}
	e.emoji = emojiPicker{open: true, anchor: anchor, query: query, matches: matches, active: active}
}

// MoveEmoji moves the highlighted match by delta, wrapping around.
func (e *Editor) MoveEmoji(delta int) error {
	if !e.emoji.open {
		return ErrMenuClosed
	}
	n := len(e.emoji.matches)
	e.emoji.active = ((e.emoji.active+delta)%n + n) % n
	return nil
}

// DismissEmoji closes the picker until a new ":" trigger starts.
func (e *Editor) DismissEmoji() {
	if e.emoji.open {
		a := e.emoji.anchor
		e.emoji = emojiPicker{dismissed: &a}
	}
}

// AcceptEmoji replaces ":query" with the highlighted emoji.
func (e *Editor) AcceptEmoji() error {
	if !e.emoji.open {
		return ErrMenuClosed
	}
	em := e.emoji.matches[e.emoji.active]
	anchor := e.emoji.anchor
	e.emoji = emojiPicker{}
	return e.replaceWith(anchor, em.Char)
}

// InsertEmoji inserts an emoji given by name or character at the cursor.
func (e *Editor) InsertEmoji(nameOrChar string) error {
	text := nameOrChar
	if em, ok := LookupEmoji(strings.Trim(nameOrChar, ":")); ok {
		text = em.Char
	} else if strings.IndexFunc(text, func(r rune) bool { return !isEmojiNameRune(r) && r != ':' }) < 0 {
		return fmt.Errorf("%w: emoji %q", ErrUnsupported, nameOrChar)
	}
	e.emoji = emojiPicker{}
	return e.apply("emoji", func(t *tx) error { return t.insertText(text) })
}
