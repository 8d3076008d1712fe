// Package document models the rich-text content tree stored in post and
// page bodies: typed block elements, inline links and marked text leaves.
package document

import "errors"

// ErrInvalidNode is returned when a document fails validation.
var ErrInvalidNode = errors.New("document: invalid node")

// ErrInvalidPath is returned when a path does not address a node.
var ErrInvalidPath = errors.New("document: invalid path")

// Type identifies an element kind. Text leaves have the empty type.
type Type string

const (
	Paragraph    Type = "paragraph"
	Heading      Type = "heading"
	BulletedList Type = "bulleted-list"
	NumberedList Type = "numbered-list"
	ListItem     Type = "list-item"
	Table        Type = "table"
	TableRow     Type = "table-row"
	TableCell    Type = "table-cell"
	Quote        Type = "block-quote"
	CodeBlock    Type = "code-block"
	Callout      Type = "callout"
	Divider      Type = "divider"
	Image        Type = "image"
	Video        Type = "video"
	File         Type = "file"
	Embed        Type = "embed"
	Link         Type = "link"
)

var knownTypes = map[Type]bool{
	Paragraph: true, Heading: true, BulletedList: true, NumberedList: true,
	ListItem: true, Table: true, TableRow: true, TableCell: true, Quote: true,
	CodeBlock: true, Callout: true, Divider: true, Image: true, Video: true,
	File: true, Embed: true, Link: true,
}

// Known reports whether t is a recognized element type.
func Known(t Type) bool { return knownTypes[t] }

// IsVoid reports whether elements of type t hold no editable text.
func IsVoid(t Type) bool {
	switch t {
	case Divider, Image, Video, File, Embed:
		return true
	}
	return false
}

// IsInline reports whether t is an inline element living inside text blocks.
func IsInline(t Type) bool { return t == Link }

// IsList reports whether t is a list container.
func IsList(t Type) bool { return t == BulletedList || t == NumberedList }

// IsTextBlock reports whether elements of type t directly hold text and
// inline children.
func IsTextBlock(t Type) bool {
	switch t {
	case Paragraph, Heading, ListItem, TableCell, Quote, CodeBlock, Callout:
		return true
	}
	return false
}

// Mark is a boolean text style carried by text leaves.
type Mark string

const (
	Bold          Mark = "bold"
	Italic        Mark = "italic"
	Underline     Mark = "underline"
	Strikethrough Mark = "strikethrough"
	Code          Mark = "code"
	Highlight     Mark = "highlight"
	Superscript   Mark = "superscript"
	Subscript     Mark = "subscript"
)

// AllMarks lists every mark in rendering order.
var AllMarks = []Mark{Code, Bold, Italic, Underline, Strikethrough, Highlight, Superscript, Subscript}

// MarkSet is a compact set of marks.
type MarkSet uint16

func markBit(m Mark) MarkSet {
	for i, k := range AllMarks {
		if k == m {
			return 1 << uint(i)
		}
	}
	return 0
}

// ValidMark reports whether m is a recognized mark.
func ValidMark(m Mark) bool { return markBit(m) != 0 }

// NewMarkSet builds a set from marks, ignoring unknown ones.
func NewMarkSet(marks ...Mark) MarkSet {
	var s MarkSet
	for _, m := range marks {
		s = s.With(m)
	}
	return s
}

func (s MarkSet) Has(m Mark) bool {
	b := markBit(m)
	return b != 0 && s&b != 0
}

// With returns s plus m. Superscript and subscript exclude each other.
func (s MarkSet) With(m Mark) MarkSet {
	switch m {
	case Superscript:
		s = s.Without(Subscript)
	case Subscript:
		s = s.Without(Superscript)
	}
	return s | markBit(m)
}

func (s MarkSet) Without(m Mark) MarkSet { return s &^ markBit(m) }

// Marks returns the members of s in rendering order.
func (s MarkSet) Marks() []Mark {
	var out []Mark
	for _, m := range AllMarks {
		if s.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

// Node is either an element (Type set, Children populated) or a text leaf
// (Type empty, Text and Marks set). Attribute fields apply to the element
// types noted beside them.
type Node struct {
	Type  Type
	Text  string
	Marks MarkSet

	Level       int    // heading
	URL         string // link, image, video, file, embed
	Alt         string // image
	Caption     string // image, video
	Name        string // file
	Size        int64  // file
	Language    string // code-block
	Variant     string // callout
	Icon        string // callout
	Title       string // embed
	Description string // embed
	ImageURL    string // embed
	Site        string // embed

	Children []Node
}

// NewText returns a text leaf.
func NewText(text string, marks ...Mark) Node {
	return Node{Text: text, Marks: NewMarkSet(marks...)}
}

// NewElement returns an element of type t. An element without children
// gets a single empty text leaf.
func NewElement(t Type, children ...Node) Node {
	if len(children) == 0 {
		children = []Node{NewText("")}
	}
	return Node{Type: t, Children: children}
}

// NewParagraph is shorthand for a paragraph holding one plain text leaf.
func NewParagraph(text string) Node {
	return NewElement(Paragraph, NewText(text))
}

// NewHeading returns a heading of the given level holding text.
func NewHeading(level int, text string) Node {
	n := NewElement(Heading, NewText(text))
	n.Level = clampLevel(level)
	return n
}

// IsText reports whether n is a text leaf.
func (n Node) IsText() bool { return n.Type == "" }

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	c := n
	if n.Children != nil {
		c.Children = make([]Node, len(n.Children))
		for i := range n.Children {
			c.Children[i] = n.Children[i].Clone()
		}
	}
	return c
}

// String returns the concatenated text of n.
func (n Node) String() string {
	if n.IsText() {
		return n.Text
	}
	var s []byte
	for _, c := range n.Children {
		s = append(s, c.String()...)
	}
	return string(s)
}

// sameProps reports whether two elements carry identical attributes.
func sameProps(a, b Node) bool {
	return a.Type == b.Type && a.Marks == b.Marks && a.Level == b.Level &&
		a.URL == b.URL && a.Alt == b.Alt && a.Caption == b.Caption &&
		a.Name == b.Name && a.Size == b.Size && a.Language == b.Language &&
		a.Variant == b.Variant && a.Icon == b.Icon && a.Title == b.Title &&
		a.Description == b.Description && a.ImageURL == b.ImageURL && a.Site == b.Site
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

// Document is an ordered sequence of top-level blocks.
type Document struct {
	Children []Node
}

// New returns a document holding the given blocks, or a single empty
// paragraph when none are given.
func New(blocks ...Node) Document {
	d := Document{Children: blocks}
	Normalize(&d)
	return d
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	c := Document{Children: make([]Node, len(d.Children))}
	for i := range d.Children {
		c.Children[i] = d.Children[i].Clone()
	}
	return c
}

// IsEmpty reports whether d holds no text and no void elements.
func (d Document) IsEmpty() bool {
	empty := true
	d.Walk(func(_ Path, n Node) bool {
		if IsVoid(n.Type) || (n.IsText() && n.Text != "") {
			empty = false
		}
		return empty
	})
	return empty
}
