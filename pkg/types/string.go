package types

import (
	"hash/fnv"
	"strings"
)

// StringField is a UTF-8 text value.
type StringField struct {
	Value string
}

func NewStringField(v string) *StringField {
	return &StringField{Value: v}
}

func (f *StringField) Type() Type { return StringType }

func (f *StringField) String() string { return f.Value }

func (f *StringField) Equals(other Field) bool {
	o, ok := other.(*StringField)
	return ok && f.Value == o.Value
}

func (f *StringField) Hash() uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(f.Value))
	return h.Sum32()
}

func (f *StringField) CompareTo(other Field) int {
	o := other.(*StringField)
	return strings.Compare(f.Value, o.Value)
}
