package types

// Field is a single typed column value. Implementations are immutable and
// comparable only to other fields of the same Type.
type Field interface {
	// Type returns the runtime type of this value.
	Type() Type

	// String returns a human-readable representation, used in error detail
	// strings and the tablectl inspector.
	String() string

	// Equals reports value equality. Fields of different types are never equal.
	Equals(other Field) bool

	// Hash returns a stable hash used by hash indexes for equality lookup.
	Hash() uint32

	// CompareTo returns -1, 0, or 1 as this value is less than, equal to, or
	// greater than other, establishing the total order §4.1 requires of
	// compareRows. Comparing fields of different types panics: callers must
	// only compare fields drawn from the same column.
	CompareTo(other Field) int
}

// Compare evaluates predicate p between a and b, e.g. Compare(a, LessThan, b)
// reports whether a < b.
func Compare(a Field, p Predicate, b Field) bool {
	c := a.CompareTo(b)
	switch p {
	case Equals:
		return c == 0
	case NotEqual:
		return c != 0
	case LessThan:
		return c < 0
	case LessThanOrEqual:
		return c <= 0
	case GreaterThan:
		return c > 0
	case GreaterThanOrEqual:
		return c >= 0
	default:
		return false
	}
}
