package types

import "strconv"

// BoolField is a boolean value.
type BoolField struct {
	Value bool
}

func NewBoolField(v bool) *BoolField {
	return &BoolField{Value: v}
}

func (f *BoolField) Type() Type { return BoolType }

func (f *BoolField) String() string { return strconv.FormatBool(f.Value) }

func (f *BoolField) Equals(other Field) bool {
	o, ok := other.(*BoolField)
	return ok && f.Value == o.Value
}

func (f *BoolField) Hash() uint32 {
	if f.Value {
		return 1
	}
	return 0
}

func (f *BoolField) CompareTo(other Field) int {
	o := other.(*BoolField)
	if f.Value == o.Value {
		return 0
	}
	if !f.Value && o.Value {
		return -1
	}
	return 1
}
