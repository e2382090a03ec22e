// Package index implements the polymorphic index contract every physical
// index type satisfies (§4.1) and the four physical index variants (§4.2):
// primary clustered, delegate, hash (unique/non-unique), and secondary
// sorted.
package index

import (
	"tablecore/pkg/primitives"
	"tablecore/pkg/row"
	"tablecore/pkg/session"
)

// Kind identifies which physical index variant an Index is.
type Kind int

const (
	Primary Kind = iota
	Delegate
	HashUnique
	HashNonUnique
	Secondary
)

func (k Kind) String() string {
	switch k {
	case Primary:
		return "PRIMARY"
	case Delegate:
		return "DELEGATE"
	case HashUnique:
		return "HASH_UNIQUE"
	case HashNonUnique:
		return "HASH_NONUNIQUE"
	case Secondary:
		return "SECONDARY"
	default:
		return "UNKNOWN"
	}
}

// Cursor is a lazy, single-direction, restartable-by-reissue sequence of
// rows produced by Index.Find. Next must be called before the first Row.
// A cursor whose owning transaction ends mid-iteration fails with
// dberr.TransactionClosed on the next Next call (§4.1).
type Cursor interface {
	Next() (bool, error)
	Row() *row.Row
}

// RowFetcher materializes a full row from its internal row-id. Hash and
// secondary indexes store only row-ids (or key→row-id) and rely on a
// RowFetcher — always the table's primary index — to produce the rows a
// Find cursor yields.
type RowFetcher interface {
	FetchRow(s *session.Session, id primitives.RowID) (*row.Row, error)
}

// Index is the surface every physical index implements (§4.1). Search
// bounds (first, last) are half-open on the side they are non-nil; a nil
// bound is open on that side.
type Index interface {
	ID() primitives.IndexID
	Kind() Kind

	Add(s *session.Session, r *row.Row) error
	Remove(s *session.Session, r *row.Row) error
	Truncate(s *session.Session) error

	Find(s *session.Session, first, last *row.Key) (Cursor, error)

	RowCount(s *session.Session) (int64, error)
	RowCountApproximation() int64

	// NeedsRebuild reports whether this index's contents are known stale,
	// e.g. right after ADD INDEX before the Index Builder has populated it.
	NeedsRebuild() bool

	// CompareRows establishes the total order over this index's key
	// columns, used by the Index Builder's sort step (§4.5).
	CompareRows(a, b *row.Row) int

	// MapName identifies the backing kvstore.Map this index reads/writes,
	// "index.<id>" per §6, or the delegate's zero-storage alias of it.
	MapName() string
}
