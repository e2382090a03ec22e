package row

import (
	"fmt"
	"strings"

	"tablecore/pkg/catalog/schema"
	"tablecore/pkg/types"
)

// CompositeKeyType is the Type reported by a Key with more than one
// component field. Keys are only ever compared against other keys built
// from the same column list, so a single sentinel is sufficient.
const CompositeKeyType types.Type = -1

// Key is the composite search key a secondary sorted index stores against,
// implementing types.Field so it can be used directly as a kvstore.Map key.
// Per-field ordering follows each column's schema.SortOrder, giving the
// lexicographic combination of per-column ASC/DESC orders the secondary
// index requires.
type Key struct {
	Fields []types.Field
	Orders []schema.SortOrder
}

// NewKey builds a composite key from fields and their per-column sort
// orders. len(fields) must equal len(orders).
func NewKey(fields []types.Field, orders []schema.SortOrder) *Key {
	return &Key{Fields: fields, Orders: orders}
}

func (k *Key) Type() types.Type {
	if len(k.Fields) == 1 {
		return k.Fields[0].Type()
	}
	return CompositeKeyType
}

func (k *Key) String() string {
	parts := make([]string, len(k.Fields))
	for i, f := range k.Fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, "|")
}

func (k *Key) Equals(other types.Field) bool {
	o, ok := other.(*Key)
	if !ok || len(o.Fields) != len(k.Fields) {
		return false
	}
	for i := range k.Fields {
		if !k.Fields[i].Equals(o.Fields[i]) {
			return false
		}
	}
	return true
}

func (k *Key) Hash() uint32 {
	var h uint32 = 2166136261
	for _, f := range k.Fields {
		h = (h ^ f.Hash()) * 16777619
	}
	return h
}

// CompareTo establishes the total order over composite keys: fields compare
// left to right, each honoring its column's sort order, stopping at the
// first unequal field.
func (k *Key) CompareTo(other types.Field) int {
	o := other.(*Key)
	n := len(k.Fields)
	if len(o.Fields) < n {
		n = len(o.Fields)
	}
	for i := 0; i < n; i++ {
		c := k.Fields[i].CompareTo(o.Fields[i])
		if k.Orders[i] == schema.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return len(k.Fields) - len(o.Fields)
}

var _ types.Field = (*Key)(nil)

// KeyOf projects r's values at columns into a composite Key ordered per
// orders, building the search key a secondary index stores against (§4.2).
func KeyOf(r *Row, columns []int, orders []schema.SortOrder) (*Key, error) {
	fields := make([]types.Field, len(columns))
	for i, col := range columns {
		f, err := r.Field(col)
		if err != nil {
			return nil, fmt.Errorf("project column %d: %w", col, err)
		}
		fields[i] = f
	}
	return NewKey(fields, orders), nil
}
