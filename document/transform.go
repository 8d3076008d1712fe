package document

import (
	"fmt"
	"unicode/utf8"
)

// span is a run of leaf blocks touched by a range, with rune offsets
// inside the first and last block.
type span struct {
	blocks   []Path
	from, to int
}

func (d Document) span(start, end Point) (span, error) {
	sb, so, err := d.BlockOffset(start)
	if err != nil {
		return span{}, err
	}
	eb, eo, err := d.BlockOffset(end)
	if err != nil {
		return span{}, err
	}
	all := d.LeafBlocks()
	si, ei := -1, -1
	for i, p := range all {
		if p.Equal(sb) {
			si = i
		}
		if p.Equal(eb) {
			ei = i
		}
	}
	if si < 0 || ei < 0 || ei < si {
		return span{}, fmt.Errorf("%w: range %v..%v", ErrInvalidPath, start.Path, end.Path)
	}
	return span{blocks: all[si : ei+1], from: so, to: eo}, nil
}

// bounds returns the rune interval of the i-th block covered by the span.
func (s span) bounds(d Document, i int) (int, int) {
	from, to := 0, utf8.RuneCountInString(d.BlockText(s.blocks[i]))
	if i == 0 {
		from = s.from
	}
	if i == len(s.blocks)-1 {
		to = s.to
	}
	return from, to
}

// ApplyMarks rewrites the marks of every text run between start and end
// with fn, splitting leaves at the range edges. Code blocks and voids are
// left untouched.
func (d *Document) ApplyMarks(start, end Point, fn func(MarkSet) MarkSet) error {
	s, err := d.span(start, end)
	if err != nil {
		return err
	}
	for i, bp := range s.blocks {
		from, to := s.bounds(*d, i)
		if from >= to {
			continue
		}
		block, _ := d.NodeAt(bp)
		if IsVoid(block.Type) || block.Type == CodeBlock {
			continue
		}
		acc := 0
		block.Children = markRange(block.Children, from, to, &acc, fn)
	}
	return nil
}

func markRange(nodes []Node, from, to int, acc *int, fn func(MarkSet) MarkSet) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if !n.IsText() {
			n.Children = markRange(n.Children, from, to, acc, fn)
			out = append(out, n)
			continue
		}
		r := []rune(n.Text)
		a, b := *acc, *acc+len(r)
		*acc = b
		lo, hi := max(a, from), min(b, to)
		if lo >= hi {
			out = append(out, n)
			continue
		}
		if lo > a {
			out = append(out, Node{Text: string(r[:lo-a]), Marks: n.Marks})
		}
		out = append(out, Node{Text: string(r[lo-a : hi-a]), Marks: fn(n.Marks)})
		if hi < b {
			out = append(out, Node{Text: string(r[hi-a:]), Marks: n.Marks})
		}
	}
	return out
}

// MarksInRange returns the marks shared by every non-empty text run
// between start and end. A collapsed range reports the marks of the leaf
// it sits in.
func (d Document) MarksInRange(start, end Point) (MarkSet, error) {
	if start.Equal(end) {
		n, ok := d.Get(start.Path)
		if !ok || !n.IsText() {
			return 0, fmt.Errorf("%w: %v", ErrInvalidPath, start.Path)
		}
		return n.Marks, nil
	}
	s, err := d.span(start, end)
	if err != nil {
		return 0, err
	}
	var shared MarkSet
	seen := false
	for i, bp := range s.blocks {
		from, to := s.bounds(d, i)
		if from >= to {
			continue
		}
		block, _ := d.Get(bp)
		acc := 0
		visitRuns(block.Children, &acc, func(a, b int, m MarkSet) {
			if max(a, from) >= min(b, to) {
				return
			}
			if !seen {
				shared, seen = m, true
				return
			}
			shared &= m
		})
	}
	return shared, nil
}

func visitRuns(nodes []Node, acc *int, fn func(a, b int, m MarkSet)) {
	for _, n := range nodes {
		if !n.IsText() {
			visitRuns(n.Children, acc, fn)
			continue
		}
		l := utf8.RuneCountInString(n.Text)
		fn(*acc, *acc+l, n.Marks)
		*acc += l
	}
}

// DeleteRange removes the content between start and end. When the range
// spans several blocks, the blocks strictly inside it are removed and the
// remainder of the last block is merged into the first. It returns the
// block and offset where the collapsed cursor belongs.
func (d *Document) DeleteRange(start, end Point) (Path, int, error) {
	s, err := d.span(start, end)
	if err != nil {
		return nil, 0, err
	}
	first := s.blocks[0]
	if len(s.blocks) == 1 {
		if s.from < s.to {
			block, _ := d.NodeAt(first)
			acc := 0
			block.Children = cutRange(block.Children, s.from, s.to, &acc)
		}
		return first, s.from, nil
	}

	last := s.blocks[len(s.blocks)-1]
	lastNode, _ := d.NodeAt(last)
	var tail []Node
	if !IsVoid(lastNode.Type) {
		acc := 0
		tail = cutRange(lastNode.Children, 0, s.to, &acc)
	}
	if _, err := d.RemoveNode(last); err != nil {
		return nil, 0, err
	}
	for i := len(s.blocks) - 2; i >= 1; i-- {
		if _, err := d.RemoveNode(s.blocks[i]); err != nil {
			return nil, 0, err
		}
	}

	firstNode, _ := d.NodeAt(first)
	if IsVoid(firstNode.Type) {
		*firstNode = NewElement(Paragraph)
		s.from = 0
	}
	acc := 0
	end0 := utf8.RuneCountInString(firstNode.String())
	firstNode.Children = cutRange(firstNode.Children, s.from, end0, &acc)
	firstNode.Children = append(firstNode.Children, tail...)
	return first, s.from, nil
}

func cutRange(nodes []Node, from, to int, acc *int) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if !n.IsText() {
			n.Children = cutRange(n.Children, from, to, acc)
			out = append(out, n)
			continue
		}
		r := []rune(n.Text)
		a, b := *acc, *acc+len(r)
		*acc = b
		lo, hi := max(a, from), min(b, to)
		if lo >= hi {
			out = append(out, n)
			continue
		}
		n.Text = string(r[:lo-a]) + string(r[hi-a:])
		out = append(out, n)
	}
	return out
}

// Fragment returns a copy of the inline content of one block between two
// rune offsets.
func (d Document) Fragment(block Path, from, to int) []Node {
	n, ok := d.Get(block)
	if !ok {
		return nil
	}
	n = n.Clone()
	total := utf8.RuneCountInString(n.String())
	acc := 0
	kept := cutRange(n.Children, to, total, &acc)
	acc = 0
	return cutRange(kept, 0, from, &acc)
}
