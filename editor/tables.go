package editor

import (
	"github.com/eringen/folio/document"
)

// MaxTableSize bounds the rows and columns of an inserted table.
const MaxTableSize = 20

func newCell() document.Node { return document.NewElement(document.TableCell) }

func newRow(cols int) document.Node {
	row := document.Node{Type: document.TableRow}
	for c := 0; c < cols; c++ {
		row.Children = append(row.Children, newCell())
	}
	return row
}

func newTable(rows, cols int) document.Node {
	rows = max(1, min(rows, MaxTableSize))
	cols = max(1, min(cols, MaxTableSize))
	table := document.Node{Type: document.Table}
	for r := 0; r < rows; r++ {
		table.Children = append(table.Children, newRow(cols))
	}
	return table
}

// InsertTable inserts an empty rows×cols table and puts the cursor in its
// first cell.
func (e *Editor) InsertTable(rows, cols int) error {
	return e.apply("table", func(t *tx) error {
		at, err := t.insertBlock(newTable(rows, cols))
		if err != nil {
			return err
		}
		t.collapse(pos{block: t.ordinal(at)})
		return nil
	})
}

// tableAt locates the cell holding the cursor.
func (t *tx) tableAt() (cell, row, table document.Path, err error) {
	bp := t.path(t.anchor.block)
	if t.node(t.anchor.block).Type != document.TableCell {
		return nil, nil, nil, ErrUnsupported
	}
	row = bp.Parent()
	return bp, row, row.Parent(), nil
}

// InsertRow adds an empty row above or below the cursor's row.
func (e *Editor) InsertRow(below bool) error {
	return e.apply("table", func(t *tx) error {
		cell, row, table, err := t.tableAt()
		if err != nil {
			return err
		}
		r, _ := t.doc.Get(row)
		at := row.Last()
		if below {
			at++
		}
		if err := t.doc.InsertNodes(table.Child(at), newRow(len(r.Children))); err != nil {
			return err
		}
		t.collapse(pos{block: t.ordinal(table.Child(at).Child(cell.Last()))})
		return nil
	})
}

// InsertColumn adds an empty column left or right of the cursor's column.
func (e *Editor) InsertColumn(right bool) error {
	return e.apply("table", func(t *tx) error {
		cell, row, table, err := t.tableAt()
		if err != nil {
			return err
		}
		col := cell.Last()
		if right {
			col++
		}
		tbl, _ := t.doc.Get(table)
		for r := range tbl.Children {
			at := min(col, len(tbl.Children[r].Children))
			if err := t.doc.InsertNodes(table.Child(r).Child(at), newCell()); err != nil {
				return err
			}
		}
		t.collapse(pos{block: t.ordinal(row.Child(col))})
		return nil
	})
}

// DeleteRow removes the cursor's row; removing the last row removes the
// table.
func (e *Editor) DeleteRow() error {
	return e.apply("table", func(t *tx) error {
		cell, row, table, err := t.tableAt()
		if err != nil {
			return err
		}
		tbl, _ := t.doc.Get(table)
		if len(tbl.Children) <= 1 {
			return t.removeTable(table)
		}
		if _, err := t.doc.RemoveNode(row); err != nil {
			return err
		}
		r := min(row.Last(), len(tbl.Children)-2)
		next, _ := t.doc.Get(table.Child(r))
		col := min(cell.Last(), len(next.Children)-1)
		t.collapse(pos{block: t.ordinal(table.Child(r).Child(col))})
		return nil
	})
}

// DeleteColumn removes the cursor's column; removing the last column
// removes the table.
func (e *Editor) DeleteColumn() error {
	return e.apply("table", func(t *tx) error {
		cell, row, table, err := t.tableAt()
		if err != nil {
			return err
		}
		r, _ := t.doc.Get(row)
		if len(r.Children) <= 1 {
			return t.removeTable(table)
		}
		col := cell.Last()
		tbl, _ := t.doc.Get(table)
		for i := range tbl.Children {
			if col < len(tbl.Children[i].Children) {
				if _, err := t.doc.RemoveNode(table.Child(i).Child(col)); err != nil {
					return err
				}
			}
		}
		t.collapse(pos{block: t.ordinal(row.Child(min(col, len(r.Children)-2)))})
		return nil
	})
}

// DeleteTable removes the table holding the cursor.
func (e *Editor) DeleteTable() error {
	return e.apply("table", func(t *tx) error {
		_, _, table, err := t.tableAt()
		if err != nil {
			return err
		}
		return t.removeTable(table)
	})
}

func (t *tx) removeTable(table document.Path) error {
	first := t.ordinal(table)
	if _, err := t.doc.RemoveNode(table); err != nil {
		return err
	}
	t.collapse(pos{block: first})
	return nil
}
