package entity

// Table is the immutable row set of one collection, in insertion order and
// indexed by id. Tables are shared between concurrent readers; callers must
// not modify the rows they get from one.
type Table struct {
	rows []*Row
	byID map[string]*Row
}

// NewTable builds a Table. A repeated id replaces the earlier row but keeps
// its position.
func NewTable(rows []*Row) *Table {
	t := &Table{
		rows: make([]*Row, 0, len(rows)),
		byID: make(map[string]*Row, len(rows)),
	}
	for _, r := range rows {
		if _, dup := t.byID[r.ID]; dup {
			for i := range t.rows {
				if t.rows[i].ID == r.ID {
					t.rows[i] = r
					break
				}
			}
		} else {
			t.rows = append(t.rows, r)
		}
		t.byID[r.ID] = r
	}
	return t
}

// Rows returns every row in order.
func (t *Table) Rows() []*Row { return t.rows }

// Row returns the row with the given id.
func (t *Table) Row(id string) (*Row, bool) {
	r, ok := t.byID[id]
	return r, ok
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }
