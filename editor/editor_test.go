package editor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/document"
)

func newEditor(t *testing.T, blocks ...document.Node) *Editor {
	t.Helper()
	return New(document.New(blocks...))
}

func moveTo(t *testing.T, e *Editor, block document.Path, offset int) {
	t.Helper()
	require.NoError(t, e.MoveTo(block, offset))
}

func typeText(t *testing.T, e *Editor, s string) {
	t.Helper()
	for _, r := range s {
		require.NoError(t, e.InsertText(string(r)))
	}
}

func pt(offset int, path ...int) document.Point {
	return document.Point{Path: document.Path(path), Offset: offset}
}

func TestCommandsRequireSelection(t *testing.T) {
	e := newEditor(t)
	assert.ErrorIs(t, e.InsertText("x"), ErrNoSelection)
	assert.ErrorIs(t, e.ToggleMark(document.Bold), ErrNoSelection)
	assert.ErrorIs(t, e.InsertBreak(), ErrNoSelection)
}

func TestSelectClampsOffsets(t *testing.T) {
	e := newEditor(t, document.NewParagraph("abc"))
	require.NoError(t, e.Select(document.Range{Anchor: pt(99, 0, 0), Focus: pt(-4, 0, 0)}))
	assert.Equal(t, pt(3, 0, 0), e.Selection().Anchor)
	assert.Equal(t, pt(0, 0, 0), e.Selection().Focus)

	assert.ErrorIs(t, e.Select(document.Collapsed(pt(0, 5, 0))), document.ErrInvalidPath)
}

func TestInsertTextCoalescesHistory(t *testing.T) {
	e := newEditor(t)
	moveTo(t, e, document.Path{0}, 0)
	typeText(t, e, "hello")
	assert.Equal(t, "hello", e.Document().Children[0].String())
	assert.Equal(t, 5, e.Version())

	require.True(t, e.Undo())
	assert.Equal(t, "", e.Document().Children[0].String())
	assert.False(t, e.CanUndo())

	require.True(t, e.Redo())
	assert.Equal(t, "hello", e.Document().Children[0].String())
	assert.Equal(t, 7, e.Version())
}

func TestSelectionChangeBreaksCoalescing(t *testing.T) {
	e := newEditor(t)
	moveTo(t, e, document.Path{0}, 0)
	typeText(t, e, "ab")
	moveTo(t, e, document.Path{0}, 2)
	typeText(t, e, "cd")

	require.True(t, e.Undo())
	assert.Equal(t, "ab", e.Document().Children[0].String())
}

func TestNewEditClearsRedo(t *testing.T) {
	e := newEditor(t)
	moveTo(t, e, document.Path{0}, 0)
	typeText(t, e, "a")
	e.Undo()
	assert.True(t, e.CanRedo())
	typeText(t, e, "b")
	assert.False(t, e.CanRedo())
}

func TestHistoryLimit(t *testing.T) {
	e := newEditor(t, document.NewParagraph("x"))
	moveTo(t, e, document.Path{0}, 0)
	for i := 0; i < HistoryLimit+5; i++ {
		require.NoError(t, e.ToggleBlock(document.Quote))
	}
	assert.Len(t, e.hist.undos, HistoryLimit)
}

func TestPendingMarks(t *testing.T) {
	e := newEditor(t, document.NewParagraph("ab"))
	moveTo(t, e, document.Path{0}, 2)
	require.NoError(t, e.ToggleMark(document.Bold))
	assert.True(t, e.IsMarkActive(document.Bold))
	assert.Equal(t, 0, e.Version(), "pending marks do not touch the document")

	typeText(t, e, "cd")
	assert.Equal(t, []document.Node{document.NewText("ab"), document.NewText("cd", document.Bold)}, e.Document().Children[0].Children)
	assert.True(t, e.IsMarkActive(document.Bold))
}

func TestToggleMarkOnRange(t *testing.T) {
	e := newEditor(t, document.NewParagraph("hello world"))
	require.NoError(t, e.Select(document.Range{Anchor: pt(0, 0, 0), Focus: pt(5, 0, 0)}))
	require.NoError(t, e.ToggleMark(document.Bold))
	assert.Equal(t, []document.Node{document.NewText("hello", document.Bold), document.NewText(" world")}, e.Document().Children[0].Children)
	assert.True(t, e.IsMarkActive(document.Bold))

	require.NoError(t, e.ToggleMark(document.Bold))
	assert.Equal(t, []document.Node{document.NewText("hello world")}, e.Document().Children[0].Children)

	assert.ErrorIs(t, e.ToggleMark("blink"), ErrUnknownMark)
}

func TestSuperscriptExcludesSubscript(t *testing.T) {
	e := newEditor(t, document.NewParagraph("x2"))
	require.NoError(t, e.Select(document.Range{Anchor: pt(1, 0, 0), Focus: pt(2, 0, 0)}))
	require.NoError(t, e.AddMark(document.Superscript))
	require.NoError(t, e.AddMark(document.Subscript))
	assert.True(t, e.IsMarkActive(document.Subscript))
	assert.False(t, e.IsMarkActive(document.Superscript))
}

func TestInsertBreak(t *testing.T) {
	e := newEditor(t, document.NewParagraph("abcd"))
	moveTo(t, e, document.Path{0}, 2)
	require.NoError(t, e.InsertBreak())
	d := e.Document()
	require.Len(t, d.Children, 2)
	assert.Equal(t, "ab", d.Children[0].String())
	assert.Equal(t, "cd", d.Children[1].String())
	assert.Equal(t, pt(0, 1, 0), e.Selection().Anchor)
}

func TestInsertBreakAfterHeading(t *testing.T) {
	e := newEditor(t, document.NewHeading(1, "Title"))
	moveTo(t, e, document.Path{0}, 5)
	require.NoError(t, e.InsertBreak())
	d := e.Document()
	require.Len(t, d.Children, 2)
	assert.Equal(t, document.Heading, d.Children[0].Type)
	assert.Equal(t, document.Paragraph, d.Children[1].Type)
}

func TestInsertBreakInCodeBlock(t *testing.T) {
	e := newEditor(t, document.Node{Type: document.CodeBlock, Children: []document.Node{document.NewText("ab")}})
	moveTo(t, e, document.Path{0}, 1)
	require.NoError(t, e.InsertBreak())
	d := e.Document()
	require.Len(t, d.Children, 1)
	assert.Equal(t, "a\nb", d.Children[0].String())
}

func TestInsertBreakOnEmptyListItemExitsList(t *testing.T) {
	e := newEditor(t, document.Node{Type: document.BulletedList, Children: []document.Node{
		document.NewElement(document.ListItem, document.NewText("a")),
		document.NewElement(document.ListItem),
	}})
	moveTo(t, e, document.Path{0, 1}, 0)
	require.NoError(t, e.InsertBreak())
	d := e.Document()
	require.Len(t, d.Children, 2)
	assert.Len(t, d.Children[0].Children, 1)
	assert.Equal(t, document.Paragraph, d.Children[1].Type)
}

func TestDeleteBackward(t *testing.T) {
	e := newEditor(t, document.NewParagraph("ab"), document.NewParagraph("cd"))
	moveTo(t, e, document.Path{1}, 1)
	require.NoError(t, e.DeleteBackward())
	assert.Equal(t, "d", e.Document().Children[1].String())

	require.NoError(t, e.DeleteBackward())
	d := e.Document()
	require.Len(t, d.Children, 1)
	assert.Equal(t, "abd", d.Children[0].String())
	assert.Equal(t, pt(2, 0, 0), e.Selection().Anchor)
}

func TestDeleteBackwardResetsHeading(t *testing.T) {
	e := newEditor(t, document.NewParagraph("a"), document.NewHeading(2, "b"))
	moveTo(t, e, document.Path{1}, 0)
	require.NoError(t, e.DeleteBackward())
	d := e.Document()
	require.Len(t, d.Children, 2)
	assert.Equal(t, document.Paragraph, d.Children[1].Type)
}

func TestDeleteBackwardRemovesVoid(t *testing.T) {
	e := newEditor(t, document.NewParagraph("a"), document.NewElement(document.Divider), document.NewParagraph(""))
	moveTo(t, e, document.Path{2}, 0)
	require.NoError(t, e.DeleteBackward())
	d := e.Document()
	require.Len(t, d.Children, 2)
	assert.Equal(t, document.Paragraph, d.Children[1].Type)
}

func TestDeleteForwardMergesNext(t *testing.T) {
	e := newEditor(t, document.NewParagraph("ab"), document.NewParagraph("cd"))
	moveTo(t, e, document.Path{0}, 2)
	require.NoError(t, e.DeleteForward())
	d := e.Document()
	require.Len(t, d.Children, 1)
	assert.Equal(t, "abcd", d.Children[0].String())
}

func TestDeleteFragment(t *testing.T) {
	e := newEditor(t, document.NewParagraph("abc"), document.NewParagraph("def"))
	require.NoError(t, e.Select(document.Range{Anchor: pt(2, 1, 0), Focus: pt(1, 0, 0)}))
	require.NoError(t, e.DeleteFragment())
	d := e.Document()
	require.Len(t, d.Children, 1)
	assert.Equal(t, "af", d.Children[0].String())
	assert.True(t, e.Selection().IsCollapsed())
}

func TestBlockShortcuts(t *testing.T) {
	tests := []struct {
		input string
		typ   document.Type
	}{
		{"## ", document.Heading},
		{"- ", document.BulletedList},
		{"* ", document.BulletedList},
		{"1. ", document.NumberedList},
		{"> ", document.Quote},
		{"[!] ", document.Callout},
		{"```", document.CodeBlock},
		{"--- ", document.Divider},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := newEditor(t)
			moveTo(t, e, document.Path{0}, 0)
			typeText(t, e, tt.input)
			d := e.Document()
			assert.Equal(t, tt.typ, d.Children[0].Type)
			if tt.typ != document.Divider {
				assert.Equal(t, "", d.PlainText())
			}
		})
	}
}

func TestHeadingShortcutUndo(t *testing.T) {
	e := newEditor(t)
	moveTo(t, e, document.Path{0}, 0)
	typeText(t, e, "## Title")
	d := e.Document()
	assert.Equal(t, document.Heading, d.Children[0].Type)
	assert.Equal(t, 2, d.Children[0].Level)
	assert.Equal(t, "Title", d.Children[0].String())

	e.Undo()
	e.Undo()
	d = e.Document()
	assert.Equal(t, document.Paragraph, d.Children[0].Type)
	assert.Equal(t, "## ", d.Children[0].String())
}

func TestShortcutsSkipCodeBlocks(t *testing.T) {
	e := newEditor(t, document.Node{Type: document.CodeBlock, Children: []document.Node{document.NewText("")}})
	moveTo(t, e, document.Path{0}, 0)
	typeText(t, e, "# **x**")
	d := e.Document()
	assert.Equal(t, document.CodeBlock, d.Children[0].Type)
	assert.Equal(t, "# **x**", d.Children[0].String())
}

func TestListShortcutThenExit(t *testing.T) {
	e := newEditor(t)
	moveTo(t, e, document.Path{0}, 0)
	typeText(t, e, "- item")
	require.NoError(t, e.InsertBreak())
	require.NoError(t, e.InsertBreak())
	d := e.Document()
	require.Len(t, d.Children, 2)
	assert.Equal(t, document.BulletedList, d.Children[0].Type)
	assert.Equal(t, "item", d.Children[0].String())
	assert.Equal(t, document.Paragraph, d.Children[1].Type)
}

func TestInlineShortcuts(t *testing.T) {
	tests := []struct {
		input string
		text  string
		mark  document.Mark
	}{
		{"a **bold**", "bold", document.Bold},
		{"a __bold__", "bold", document.Bold},
		{"a *it*", "it", document.Italic},
		{"a _it_", "it", document.Italic},
		{"a `x`", "x", document.Code},
		{"a ~~gone~~", "gone", document.Strikethrough},
		{"a ==hi==", "hi", document.Highlight},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := newEditor(t)
			moveTo(t, e, document.Path{0}, 0)
			typeText(t, e, tt.input)
			children := e.Document().Children[0].Children
			require.Len(t, children, 2)
			assert.Equal(t, document.NewText("a "), children[0])
			assert.Equal(t, document.NewText(tt.text, tt.mark), children[1])
			assert.False(t, e.IsMarkActive(tt.mark), "typing continues unmarked")
		})
	}
}

func TestInlineShortcutContinuesPlain(t *testing.T) {
	e := newEditor(t)
	moveTo(t, e, document.Path{0}, 0)
	typeText(t, e, "a **bold** x")
	assert.Equal(t, []document.Node{
		document.NewText("a "),
		document.NewText("bold", document.Bold),
		document.NewText(" x"),
	}, e.Document().Children[0].Children)
}

func TestToggleList(t *testing.T) {
	e := newEditor(t, document.NewParagraph("a"), document.NewParagraph("b"))
	e.SelectAll()
	require.NoError(t, e.ToggleBlock(document.BulletedList))
	d := e.Document()
	require.Len(t, d.Children, 1)
	assert.Len(t, d.Children[0].Children, 2)
	assert.True(t, e.IsBlockActive(document.BulletedList))

	require.NoError(t, e.ToggleBlock(document.NumberedList))
	assert.Equal(t, document.NumberedList, e.Document().Children[0].Type)

	require.NoError(t, e.ToggleBlock(document.NumberedList))
	d = e.Document()
	require.Len(t, d.Children, 2)
	assert.Equal(t, document.Paragraph, d.Children[0].Type)
	assert.Equal(t, "b", d.Children[1].String())
}

func TestToggleBlockAndHeading(t *testing.T) {
	e := newEditor(t, document.NewParagraph("a"))
	moveTo(t, e, document.Path{0}, 1)
	require.NoError(t, e.ToggleBlock(document.Quote))
	assert.True(t, e.IsBlockActive(document.Quote))
	require.NoError(t, e.ToggleBlock(document.Quote))
	assert.True(t, e.IsBlockActive(document.Paragraph))

	require.NoError(t, e.SetHeading(3))
	assert.True(t, e.IsHeadingActive(3))
	assert.Equal(t, 3, e.Ribbon().HeadingLevel)
	require.NoError(t, e.SetHeading(3))
	assert.True(t, e.IsBlockActive(document.Paragraph))

	assert.ErrorIs(t, e.ToggleBlock(document.Table), ErrUnsupported)
}

func TestIndentOutdent(t *testing.T) {
	e := newEditor(t, document.Node{Type: document.BulletedList, Children: []document.Node{
		document.NewElement(document.ListItem, document.NewText("a")),
		document.NewElement(document.ListItem, document.NewText("b")),
	}})
	moveTo(t, e, document.Path{0, 1}, 0)
	require.NoError(t, e.IndentListItem())
	list := e.Document().Children[0]
	require.Len(t, list.Children, 2)
	assert.Equal(t, document.BulletedList, list.Children[1].Type)
	assert.Equal(t, 2, e.Ribbon().ListDepth)

	require.NoError(t, e.OutdentListItem())
	list = e.Document().Children[0]
	require.Len(t, list.Children, 2)
	assert.Equal(t, document.ListItem, list.Children[1].Type)
	assert.Equal(t, 1, e.Ribbon().ListDepth)

	moveTo(t, e, document.Path{0, 0}, 0)
	require.NoError(t, e.IndentListItem(), "first item cannot indent; no change")
	assert.Len(t, e.Document().Children[0].Children, 2)
}

func TestLinks(t *testing.T) {
	e := newEditor(t, document.NewParagraph("click here"))
	require.NoError(t, e.Select(document.Range{Anchor: pt(6, 0, 0), Focus: pt(10, 0, 0)}))
	require.NoError(t, e.WrapLink("https://example.com"))
	p := e.Document().Children[0]
	require.Len(t, p.Children, 2)
	assert.Equal(t, document.Link, p.Children[1].Type)
	assert.Equal(t, "here", p.Children[1].String())

	moveTo(t, e, document.Path{0}, 8)
	assert.Equal(t, "https://example.com", e.ActiveLink())

	require.NoError(t, e.UnwrapLink())
	assert.Equal(t, []document.Node{document.NewText("click here")}, e.Document().Children[0].Children)
	assert.Equal(t, "", e.ActiveLink())

	assert.ErrorIs(t, e.WrapLink("javascript:alert(1)"), ErrUnsafeURL)
}

func TestWrapLinkCollapsedInsertsURL(t *testing.T) {
	e := newEditor(t, document.NewParagraph("see "))
	moveTo(t, e, document.Path{0}, 4)
	require.NoError(t, e.WrapLink("https://go.dev"))
	assert.Equal(t, "see https://go.dev", e.Document().Children[0].String())
	assert.Equal(t, "https://go.dev", e.ActiveLink())
}

func TestInsertImageReplacesEmptyParagraph(t *testing.T) {
	e := newEditor(t)
	moveTo(t, e, document.Path{0}, 0)
	require.NoError(t, e.InsertImage(Media{URL: "/public/cat.jpg", Alt: "cat"}))
	d := e.Document()
	require.Len(t, d.Children, 2)
	assert.Equal(t, document.Image, d.Children[0].Type)
	assert.Equal(t, "cat", d.Children[0].Alt)
	assert.Equal(t, document.Paragraph, d.Children[1].Type)
	assert.Equal(t, pt(0, 1, 0), e.Selection().Anchor)

	assert.ErrorIs(t, e.InsertVideo(Media{}), ErrURLRequired)
	assert.ErrorIs(t, e.InsertFile(Media{URL: "javascript:x"}), ErrUnsafeURL)
}

func TestInsertDividerAddsTrailingParagraph(t *testing.T) {
	e := newEditor(t, document.NewParagraph("text"))
	moveTo(t, e, document.Path{0}, 4)
	require.NoError(t, e.InsertDivider())
	d := e.Document()
	require.Len(t, d.Children, 3)
	assert.Equal(t, document.Divider, d.Children[1].Type)
	assert.Equal(t, document.Paragraph, d.Children[2].Type)
}

func TestTables(t *testing.T) {
	e := newEditor(t)
	moveTo(t, e, document.Path{0}, 0)
	require.NoError(t, e.InsertTable(2, 2))
	d := e.Document()
	require.Equal(t, document.Table, d.Children[0].Type)
	assert.Len(t, d.Children[0].Children, 2)
	assert.Equal(t, pt(0, 0, 0, 0, 0), e.Selection().Anchor)
	assert.True(t, e.Ribbon().InTable)

	require.NoError(t, e.InsertRow(true))
	assert.Len(t, e.Document().Children[0].Children, 3)
	assert.Equal(t, document.Path{0, 1, 0, 0}, e.Selection().Anchor.Path)

	require.NoError(t, e.InsertColumn(true))
	for _, row := range e.Document().Children[0].Children {
		assert.Len(t, row.Children, 3)
	}

	require.NoError(t, e.DeleteColumn())
	for _, row := range e.Document().Children[0].Children {
		assert.Len(t, row.Children, 2)
	}

	require.NoError(t, e.DeleteRow())
	assert.Len(t, e.Document().Children[0].Children, 2)

	require.NoError(t, e.DeleteTable())
	d = e.Document()
	require.Len(t, d.Children, 1)
	assert.Equal(t, document.Paragraph, d.Children[0].Type)
}

func TestDeletingLastRowRemovesTable(t *testing.T) {
	e := newEditor(t)
	moveTo(t, e, document.Path{0}, 0)
	require.NoError(t, e.InsertTable(1, 3))
	require.NoError(t, e.DeleteRow())
	for _, b := range e.Document().Children {
		assert.NotEqual(t, document.Table, b.Type)
	}
	assert.ErrorIs(t, e.InsertRow(false), ErrUnsupported)
}

func TestPasteHTMLInline(t *testing.T) {
	e := newEditor(t, document.NewParagraph("ab"))
	moveTo(t, e, document.Path{0}, 1)
	require.NoError(t, e.Paste("<p>Hello <strong>world</strong></p>", ""))
	p := e.Document().Children[0]
	assert.Equal(t, "aHello worldb", p.String())
	assert.Contains(t, p.Children, document.NewText("world", document.Bold))
	_, off, err := e.Document().BlockOffset(e.Selection().Anchor)
	require.NoError(t, err)
	assert.Equal(t, 12, off)
}

func TestPasteHTMLKeepsInlineTags(t *testing.T) {
	e := newEditor(t, document.NewParagraph(""))
	moveTo(t, e, document.Path{0}, 0)
	require.NoError(t, e.Paste("<p>a <u>x</u> <mark>y</mark> H<sub>2</sub>O</p>", ""))
	p := e.Document().Children[0]
	assert.Equal(t, "a x y H2O", p.String())
	assert.Contains(t, p.Children, document.NewText("x", document.Underline))
	assert.Contains(t, p.Children, document.NewText("y", document.Highlight))
	assert.Contains(t, p.Children, document.NewText("2", document.Subscript))
}

func TestPastePlainLines(t *testing.T) {
	e := newEditor(t, document.NewParagraph("ab"))
	moveTo(t, e, document.Path{0}, 2)
	require.NoError(t, e.Paste("", "x\r\ny"))
	d := e.Document()
	require.Len(t, d.Children, 3)
	assert.Equal(t, "ab", d.Children[0].String())
	assert.Equal(t, "x", d.Children[1].String())
	assert.Equal(t, "y", d.Children[2].String())
	assert.Equal(t, pt(1, 2, 0), e.Selection().Anchor)
}

func TestSlashMenu(t *testing.T) {
	e := newEditor(t)
	moveTo(t, e, document.Path{0}, 0)
	typeText(t, e, "/")
	require.NotNil(t, e.Slash())
	assert.Len(t, e.Slash().Items, len(slashItems))

	typeText(t, e, "hea")
	s := e.Slash()
	require.NotNil(t, s)
	assert.Equal(t, "hea", s.Query)
	require.Len(t, s.Items, 3)

	require.NoError(t, e.MoveSlash(1))
	assert.Equal(t, 1, e.Slash().Active)
	require.NoError(t, e.MoveSlash(-2))
	assert.Equal(t, 2, e.Slash().Active, "navigation wraps")
	require.NoError(t, e.MoveSlash(-1))

	require.NoError(t, e.AcceptSlash(Media{}))
	assert.Nil(t, e.Slash())
	b := e.Document().Children[0]
	assert.Equal(t, document.Heading, b.Type)
	assert.Equal(t, 2, b.Level)
	assert.Equal(t, "", b.String())
}

func TestSlashMenuCloses(t *testing.T) {
	e := newEditor(t)
	moveTo(t, e, document.Path{0}, 0)
	typeText(t, e, "a/")
	assert.Nil(t, e.Slash(), "no menu mid-word")

	typeText(t, e, " /zz")
	require.NotNil(t, e.Slash())
	assert.Empty(t, e.Slash().Items)
	typeText(t, e, " ")
	assert.Nil(t, e.Slash(), "space with no matches closes")

	typeText(t, e, "/")
	require.NotNil(t, e.Slash())
	require.NoError(t, e.DeleteBackward())
	assert.Nil(t, e.Slash(), "deleting the slash closes")

	typeText(t, e, "/")
	e.DismissSlash()
	assert.Nil(t, e.Slash())
	assert.ErrorIs(t, e.AcceptSlash(Media{}), ErrMenuClosed)
}

func TestSlashMediaNeedsURL(t *testing.T) {
	e := newEditor(t)
	moveTo(t, e, document.Path{0}, 0)
	typeText(t, e, "/image")
	require.NotNil(t, e.Slash())
	assert.Equal(t, "image", e.Slash().Items[0].ID)
	assert.ErrorIs(t, e.AcceptSlash(Media{}), ErrURLRequired)
	require.NoError(t, e.AcceptSlash(Media{URL: "/a.png"}))
	assert.Equal(t, document.Image, e.Document().Children[0].Type)
}

func TestFilterSlashOrdersPrefixFirst(t *testing.T) {
	items := FilterSlash("list")
	require.NotEmpty(t, items)
	for _, it := range items {
		assert.Contains(t, []string{"bulleted-list", "numbered-list"}, it.ID)
	}
	items = FilterSlash("co")
	require.NotEmpty(t, items)
	assert.Equal(t, "code-block", items[0].ID, "title prefix before substring")
}

func TestEmojiPicker(t *testing.T) {
	e := newEditor(t)
	moveTo(t, e, document.Path{0}, 0)
	typeText(t, e, ":s")
	assert.Nil(t, e.Emoji(), "needs two characters")
	typeText(t, e, "mi")
	em := e.Emoji()
	require.NotNil(t, em)
	assert.LessOrEqual(t, len(em.Matches), EmojiLimit)
	assert.Equal(t, "smile", em.Matches[0].Name)

	require.NoError(t, e.AcceptEmoji())
	assert.Equal(t, "😄", e.Document().Children[0].String())
	assert.Nil(t, e.Emoji())
}

func TestEmojiClosingColon(t *testing.T) {
	e := newEditor(t)
	moveTo(t, e, document.Path{0}, 0)
	typeText(t, e, "hot :fire:")
	assert.Equal(t, "hot 🔥", e.Document().Children[0].String())
}

func TestEmojiDismissAndInsert(t *testing.T) {
	e := newEditor(t)
	moveTo(t, e, document.Path{0}, 0)
	typeText(t, e, ":ta")
	require.NotNil(t, e.Emoji())
	e.DismissEmoji()
	assert.Nil(t, e.Emoji())
	typeText(t, e, "d")
	assert.Nil(t, e.Emoji(), "stays dismissed for the same trigger")

	require.NoError(t, e.InsertEmoji("rocket"))
	assert.Equal(t, ":tad🚀", e.Document().Children[0].String())
	assert.ErrorIs(t, e.InsertEmoji("nope"), ErrUnsupported)
}

func TestToolbar(t *testing.T) {
	e := newEditor(t, document.NewParagraph("hello world"), document.Node{Type: document.CodeBlock, Children: []document.Node{document.NewText("x")}})
	moveTo(t, e, document.Path{0}, 2)
	assert.False(t, e.Toolbar().Visible)

	require.NoError(t, e.Select(document.Range{Anchor: pt(0, 0, 0), Focus: pt(5, 0, 0)}))
	require.NoError(t, e.ToggleMark(document.Italic))
	tb := e.Toolbar()
	assert.True(t, tb.Visible)
	assert.Equal(t, []document.Mark{document.Italic}, tb.Marks)
	assert.Equal(t, document.Paragraph, tb.Block)

	require.NoError(t, e.Select(document.Range{Anchor: pt(0, 1, 0), Focus: pt(1, 1, 0)}))
	assert.False(t, e.Toolbar().Visible, "hidden in code blocks")
}

func TestExecJSONCommands(t *testing.T) {
	e := newEditor(t)
	cmds := []string{
		`{"command":"moveTo","path":[0],"offset":0}`,
		`{"command":"insertText","text":"hello"}`,
		`{"command":"selectAll"}`,
		`{"command":"toggleMark","mark":"bold"}`,
		`{"command":"toggleBlock","block":"heading","level":2}`,
	}
	for _, raw := range cmds {
		var c Command
		require.NoError(t, json.Unmarshal([]byte(raw), &c))
		require.NoError(t, e.Exec(c), raw)
	}
	d := e.Document()
	assert.Equal(t, document.Heading, d.Children[0].Type)
	assert.Equal(t, 2, d.Children[0].Level)
	assert.Equal(t, document.NewText("hello", document.Bold), d.Children[0].Children[0])

	var c Command
	require.NoError(t, json.Unmarshal([]byte(`{"command":"insertImage","url":"/x.png","alt":"x"}`), &c))
	require.NoError(t, e.Exec(c))

	assert.ErrorIs(t, e.Exec(Command{Command: "explode"}), ErrUnknownCommand)
}

func TestStateJSON(t *testing.T) {
	e := newEditor(t, document.NewParagraph("a"))
	moveTo(t, e, document.Path{0}, 1)
	data, err := json.Marshal(e.State())
	require.NoError(t, err)
	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Contains(t, got, "version")
	assert.Contains(t, got, "document")
	assert.Contains(t, got, "selection")
	assert.NotContains(t, got, "slash")
	assert.JSONEq(t, `[{"type":"paragraph","children":[{"text":"a"}]}]`, string(got["document"]))
}
