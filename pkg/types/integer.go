package types

import (
	"hash/fnv"
	"strconv"
)

// IntField is a 64-bit signed integer value. It is the only type eligible
// to back a "main index column" (§4.2).
type IntField struct {
	Value int64
}

func NewIntField(v int64) *IntField {
	return &IntField{Value: v}
}

func (f *IntField) Type() Type { return IntType }

func (f *IntField) String() string { return strconv.FormatInt(f.Value, 10) }

func (f *IntField) Equals(other Field) bool {
	o, ok := other.(*IntField)
	return ok && f.Value == o.Value
}

func (f *IntField) Hash() uint32 {
	h := fnv.New32a()
	var b [8]byte
	for i := range b {
		b[i] = byte(f.Value >> (8 * i))
	}
	_, _ = h.Write(b[:])
	return h.Sum32()
}

func (f *IntField) CompareTo(other Field) int {
	o := other.(*IntField)
	switch {
	case f.Value < o.Value:
		return -1
	case f.Value > o.Value:
		return 1
	default:
		return 0
	}
}
