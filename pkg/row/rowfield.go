package row

import (
	"fmt"

	"tablecore/pkg/primitives"
	"tablecore/pkg/types"
)

// RowFieldType is the Type reported by RowField and RowIDListField, the two
// storage-value wrappers that let a *Row and a list of row-ids travel
// through a kvstore.Map, whose Get/Put/Remove are typed over types.Field.
const RowFieldType types.Type = -2

// RowField wraps a *Row so the primary clustered index can store it as a
// kvstore.Map value under its row-id key (§4.2).
type RowField struct {
	Row *Row
}

func NewRowField(r *Row) *RowField { return &RowField{Row: r} }

func (f *RowField) Type() types.Type { return RowFieldType }

func (f *RowField) String() string { return fmt.Sprintf("row#%d", int64(f.Row.ID)) }

func (f *RowField) Equals(other types.Field) bool {
	o, ok := other.(*RowField)
	return ok && f.Row.ID == o.Row.ID
}

func (f *RowField) Hash() uint32 { return uint32(f.Row.ID) }

func (f *RowField) CompareTo(other types.Field) int {
	o := other.(*RowField)
	switch {
	case f.Row.ID < o.Row.ID:
		return -1
	case f.Row.ID > o.Row.ID:
		return 1
	default:
		return 0
	}
}

// RowIDListField wraps a set of row-ids, the value a non-unique hash index
// stores under one key (§4.2: "non-unique stores key → list<row-id>").
type RowIDListField struct {
	RowIDs []primitives.RowID
}

func NewRowIDListField(ids ...primitives.RowID) *RowIDListField {
	return &RowIDListField{RowIDs: ids}
}

func (f *RowIDListField) Type() types.Type { return RowFieldType }

func (f *RowIDListField) String() string { return fmt.Sprintf("%v", f.RowIDs) }

func (f *RowIDListField) Equals(other types.Field) bool {
	o, ok := other.(*RowIDListField)
	if !ok || len(o.RowIDs) != len(f.RowIDs) {
		return false
	}
	for i := range f.RowIDs {
		if f.RowIDs[i] != o.RowIDs[i] {
			return false
		}
	}
	return true
}

func (f *RowIDListField) Hash() uint32 {
	var h uint32 = 2166136261
	for _, id := range f.RowIDs {
		h = (h ^ uint32(id)) * 16777619
	}
	return h
}

func (f *RowIDListField) CompareTo(other types.Field) int {
	o := other.(*RowIDListField)
	return len(f.RowIDs) - len(o.RowIDs)
}

// Contains reports whether id is already present.
func (f *RowIDListField) Contains(id primitives.RowID) bool {
	for _, v := range f.RowIDs {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns a copy with id removed, if present.
func (f *RowIDListField) Without(id primitives.RowID) *RowIDListField {
	out := make([]primitives.RowID, 0, len(f.RowIDs))
	for _, v := range f.RowIDs {
		if v != id {
			out = append(out, v)
		}
	}
	return &RowIDListField{RowIDs: out}
}

var (
	_ types.Field = (*RowField)(nil)
	_ types.Field = (*RowIDListField)(nil)
)
