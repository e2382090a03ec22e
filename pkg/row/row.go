// Package row defines the row and composite-key value types every physical
// index operates on (row-id plus a value tuple aligned with the table's
// columns, and a total-ordered composite search key built from one or more
// of those values).
package row

import (
	"tablecore/pkg/dberr"
	"tablecore/pkg/primitives"
	"tablecore/pkg/types"
)

// Row is one table row: its internal row-id plus a value tuple aligned with
// the table's column list.
type Row struct {
	ID     primitives.RowID
	Values []types.Field
}

// New creates a row with the given id and column values.
func New(id primitives.RowID, values []types.Field) *Row {
	return &Row{ID: id, Values: values}
}

// Field returns the value at column position i.
func (r *Row) Field(i int) (types.Field, error) {
	if i < 0 || i >= len(r.Values) {
		return nil, dberr.Newf(dberr.InternalCheck, "row field access",
			"field index %d out of bounds [0,%d)", i, len(r.Values))
	}
	return r.Values[i], nil
}

// NumFields returns the number of values in the row.
func (r *Row) NumFields() int { return len(r.Values) }
