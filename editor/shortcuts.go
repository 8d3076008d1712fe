package editor

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/eringen/folio/document"
)

var (
	reOrdered = regexp.MustCompile(`^\d+[.)]$`)
	reFence   = regexp.MustCompile("^```([A-Za-z0-9_+-]*)$")
)

type blockRule struct {
	typ      document.Type
	level    int
	language string
}

// blockShortcut matches the text typed before a space at the start of a
// paragraph.
func blockShortcut(prefix string) (blockRule, bool) {
	switch {
	case prefix == "":
		return blockRule{}, false
	case len(prefix) <= 6 && strings.Trim(prefix, "#") == "":
		return blockRule{typ: document.Heading, level: len(prefix)}, true
	case prefix == "-" || prefix == "*" || prefix == "+":
		return blockRule{typ: document.BulletedList}, true
	case reOrdered.MatchString(prefix):
		return blockRule{typ: document.NumberedList}, true
	case prefix == ">":
		return blockRule{typ: document.Quote}, true
	case prefix == "[!]":
		return blockRule{typ: document.Callout}, true
	case prefix == "---":
		return blockRule{typ: document.Divider}, true
	}
	if m := reFence.FindStringSubmatch(prefix); m != nil {
		return blockRule{typ: document.CodeBlock, language: m[1]}, true
	}
	return blockRule{}, false
}

// Inline delimiters, longest first.
var inlineRules = []struct {
	delim string
	mark  document.Mark
}{
	{"**", document.Bold},
	{"__", document.Bold},
	{"~~", document.Strikethrough},
	{"==", document.Highlight},
	{"*", document.Italic},
	{"_", document.Italic},
	{"`", document.Code},
}

// matchInline finds the opening delimiter for a closing delimiter that
// ends before. It returns the rune index of the opening delimiter.
func matchInline(before []rune, delim string) (int, bool) {
	d := []rune(delim)
	l, n := len(d), len(before)
	if n < 2*l+1 || string(before[n-l:]) != delim {
		return 0, false
	}
	if l == 1 && before[n-2] == d[0] {
		return 0, false
	}
	end := n - l
	for i := end - l; i >= 0; i-- {
		if string(before[i:i+l]) != delim {
			continue
		}
		if l == 1 && i > 0 && before[i-1] == d[0] {
			continue
		}
		content := before[i+l : end]
		if len(content) == 0 || unicode.IsSpace(content[0]) || unicode.IsSpace(content[len(content)-1]) {
			return 0, false
		}
		if l == 1 && content[0] == d[0] {
			return 0, false
		}
		if i > 0 && !unicode.IsSpace(before[i-1]) && !unicode.IsPunct(before[i-1]) {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// runShortcuts applies a markdown shortcut completed by the character just
// typed. It reports whether one fired.
func (e *Editor) runShortcuts(typed string) (bool, error) {
	if e.sel == nil || !e.sel.IsCollapsed() {
		return false, nil
	}
	at, err := toPos(e.doc, e.sel.Anchor)
	if err != nil {
		return false, nil
	}
	bp := e.doc.LeafBlocks()[at.block]
	n, _ := e.doc.Get(bp)
	if n.Type == document.CodeBlock || document.IsVoid(n.Type) {
		return false, nil
	}
	text := []rune(n.String())
	if at.offset == 0 || at.offset > len(text) {
		return false, nil
	}
	before := text[:at.offset]

	if n.Type == document.Paragraph {
		var rule blockRule
		ok := false
		switch typed {
		case " ":
			rule, ok = blockShortcut(string(before[:len(before)-1]))
		case "`":
			if string(before) == "```" {
				rule, ok = blockRule{typ: document.CodeBlock}, true
			}
		}
		if ok {
			return true, e.apply("shortcut", func(t *tx) error { return t.blockShortcut(at, rule) })
		}
	}

	if e.currentMarks().Has(document.Code) {
		return false, nil
	}
	for _, r := range inlineRules {
		if !strings.HasSuffix(typed, r.delim[len(r.delim)-1:]) {
			continue
		}
		open, ok := matchInline(before, r.delim)
		if !ok {
			continue
		}
		delim, mark := r.delim, r.mark
		return true, e.apply("shortcut", func(t *tx) error { return t.inlineShortcut(at, open, delim, mark) })
	}
	return false, nil
}

func (t *tx) blockShortcut(at pos, rule blockRule) error {
	if _, err := t.deleteRange(pos{block: at.block}, at); err != nil {
		return err
	}
	t.collapse(pos{block: at.block})
	switch rule.typ {
	case document.Divider:
		if err := t.doc.InsertNodes(t.path(at.block), document.NewElement(document.Divider)); err != nil {
			return err
		}
		t.collapse(pos{block: at.block + 1})
		return nil
	case document.BulletedList, document.NumberedList:
		return t.wrapInList([]int{at.block}, rule.typ)
	}
	return t.doc.SetNode(t.path(at.block), func(n *document.Node) {
		setType(n, rule.typ, rule.level)
		n.Language = rule.language
	})
}

func (t *tx) inlineShortcut(at pos, open int, delim string, mark document.Mark) error {
	l := len([]rune(delim))
	from, to := open+l, at.offset-l
	pt, err := t.point(at, false)
	if err != nil {
		return err
	}
	leaf, _ := t.doc.Get(pt.Path)
	rest := leaf.Marks.Without(mark)
	t.nextMarks = &rest

	sp, err := t.point(pos{block: at.block, offset: from}, true)
	if err != nil {
		return err
	}
	ep, err := t.point(pos{block: at.block, offset: to}, false)
	if err != nil {
		return err
	}
	if err := t.doc.ApplyMarks(sp, ep, func(s document.MarkSet) document.MarkSet { return s.With(mark) }); err != nil {
		return err
	}
	if _, err := t.deleteRange(pos{block: at.block, offset: to}, at); err != nil {
		return err
	}
	if _, err := t.deleteRange(pos{block: at.block, offset: open}, pos{block: at.block, offset: from}); err != nil {
		return err
	}
	t.collapse(pos{block: at.block, offset: at.offset - 2*l})
	return nil
}
