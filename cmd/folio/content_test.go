package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio"
	"github.com/eringen/folio/document"
)

func TestSplitFrontMatter(t *testing.T) {
	header, body := splitFrontMatter([]byte("---\ntitle: Hi\n---\n# Body\n"))
	assert.Equal(t, "title: Hi\n", string(header))
	assert.Equal(t, "# Body\n", string(body))

	header, body = splitFrontMatter([]byte("# No header\n"))
	assert.Nil(t, header)
	assert.Equal(t, "# No header\n", string(body))

	header, body = splitFrontMatter([]byte("---\ntitle: unterminated\n"))
	assert.Nil(t, header)
	assert.Equal(t, "---\ntitle: unterminated\n", string(body))
}

func TestParsePostFile(t *testing.T) {
	src := []byte("---\ntitle: Hello World\ntags: [go, web]\nstatus: published\n---\nSome **bold** text.\n")
	post, err := parsePostFile("notes/hello.md", src)
	require.NoError(t, err)

	assert.Equal(t, "Hello World", post.Title)
	assert.Equal(t, "hello", post.Slug)
	assert.Equal(t, []string{"go", "web"}, post.Tags)
	assert.Equal(t, folio.StatusPublished, post.Status)
	assert.Contains(t, post.Body.PlainText(), "Some bold text.")
}

func TestParsePostFileTitleFromHeading(t *testing.T) {
	post, err := parsePostFile("x.md", []byte("# First Heading\n\nbody\n"))
	require.NoError(t, err)
	assert.Equal(t, "First Heading", post.Title)
}

func TestFormatPostFileRoundTrip(t *testing.T) {
	in := folio.Post{
		Slug:   "round-trip",
		Title:  "Round Trip",
		Tags:   []string{"a"},
		Status: folio.StatusDraft,
		Body: document.New(
			document.NewParagraph("Hello there."),
			document.Node{Type: document.Paragraph, Children: []document.Node{
				document.NewText("H"),
				document.NewText("2", document.Subscript),
				document.NewText("O is "),
				document.NewText("wet", document.Underline, document.Highlight),
			}},
		),
	}
	out, err := formatPostFile(in)
	require.NoError(t, err)

	back, err := parsePostFile("whatever.md", out)
	require.NoError(t, err)
	assert.Equal(t, in.Slug, back.Slug)
	assert.Equal(t, in.Title, back.Title)
	assert.Equal(t, in.Tags, back.Tags)
	assert.Equal(t, in.Status, back.Status)
	assert.Equal(t, "Hello there.\nH2O is wet", back.Body.PlainText())
	assert.Equal(t, in.Body.HTML(), back.Body.HTML())
}
