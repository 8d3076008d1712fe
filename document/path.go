package document

// Path addresses a node by child indexes from the document root.
type Path []int

func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return append(Path{}, p...)
}

// Parent returns the path of p's parent; the root's parent is empty.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p[:len(p)-1].Clone()
}

func (p Path) Last() int {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

func (p Path) Child(i int) Path {
	c := make(Path, len(p)+1)
	copy(c, p)
	c[len(p)] = i
	return c
}

// Next returns the path of the following sibling.
func (p Path) Next() Path {
	c := p.Clone()
	if len(c) > 0 {
		c[len(c)-1]++
	}
	return c
}

// Previous returns the path of the preceding sibling, if any.
func (p Path) Previous() (Path, bool) {
	if len(p) == 0 || p[len(p)-1] == 0 {
		return nil, false
	}
	c := p.Clone()
	c[len(c)-1]--
	return c, true
}

func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Compare orders paths in document (pre-order) order: an ancestor sorts
// before its descendants.
func (p Path) Compare(q Path) int {
	for i := 0; i < len(p) && i < len(q); i++ {
		switch {
		case p[i] < q[i]:
			return -1
		case p[i] > q[i]:
			return 1
		}
	}
	switch {
	case len(p) < len(q):
		return -1
	case len(p) > len(q):
		return 1
	}
	return 0
}

// IsAncestorOf reports whether p is a strict ancestor of q.
func (p Path) IsAncestorOf(q Path) bool {
	if len(p) >= len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Point is a position inside a text leaf, counted in runes.
type Point struct {
	Path   Path `json:"path"`
	Offset int  `json:"offset"`
}

func (a Point) Compare(b Point) int {
	if c := a.Path.Compare(b.Path); c != 0 {
		return c
	}
	switch {
	case a.Offset < b.Offset:
		return -1
	case a.Offset > b.Offset:
		return 1
	}
	return 0
}

func (a Point) Equal(b Point) bool { return a.Compare(b) == 0 }

// Range spans from Anchor (where the selection started) to Focus (where
// it ends); Focus may precede Anchor.
type Range struct {
	Anchor Point `json:"anchor"`
	Focus  Point `json:"focus"`
}

// Collapsed returns an empty range at p.
func Collapsed(p Point) Range { return Range{Anchor: p, Focus: p} }

func (r Range) IsCollapsed() bool { return r.Anchor.Equal(r.Focus) }

func (r Range) IsBackward() bool { return r.Focus.Compare(r.Anchor) < 0 }

// Edges returns the range boundaries in document order.
func (r Range) Edges() (start, end Point) {
	if r.IsBackward() {
		return r.Focus, r.Anchor
	}
	return r.Anchor, r.Focus
}
