// Package kvstore declares the external key-value store contract the table
// core consumes (§6): named ordered and hash maps, each supporting point
// get/put/remove, bounded range scans, and size accounting. The table core
// never manages files, pages, or persistence itself — it only asks a Store
// for maps by name.
package kvstore

import (
	"tablecore/pkg/txn"
	"tablecore/pkg/types"
)

// Store opens and names the maps a table's indexes are backed by.
type Store interface {
	// OpenMap opens (creating if absent) a persistent ordered map, keyed by
	// keyType and storing valueType values, supporting range scans.
	OpenMap(name string, keyType, valueType types.Type) (Map, error)

	// OpenHashMap opens (creating if absent) a hash map: equality lookup
	// only, no ordering guarantee.
	OpenHashMap(name string, keyType, valueType types.Type) (Map, error)

	// NextTemporaryMapName allocates a unique name for a scratch map used
	// during block-merge index builds (§4.5).
	NextTemporaryMapName() string

	// HasMap reports whether a map with the given name already exists,
	// used by primary-index promotion (§4.2) to decide eligibility.
	HasMap(name string) bool

	// RemoveMap deletes a map and releases its name.
	RemoveMap(name string) error

	// IsPersistent reports whether this store durably persists maps to
	// disk. The Index Builder uses this to choose between the buffered and
	// block-merge strategies (§4.5).
	IsPersistent() bool
}

// Cursor iterates a Map's entries in key order within a requested range. It
// is lazy and single-direction: Next must be called before the first Key/
// Value.
type Cursor interface {
	Next() bool
	Key() types.Field
	Value() types.Field
}

// Clearer is an optional Map capability for removing every entry at once,
// used by truncate (§4.4) on maps — like hash maps — that cannot be
// range-scanned to enumerate keys for individual removal.
type Clearer interface {
	Clear(tx txn.Transaction)
}

// Map is one named collection inside a Store.
type Map interface {
	Name() string

	// Get returns the value stored under key, if any.
	Get(key types.Field) (types.Field, bool)

	// Put stores value under key, recording an undo action with tx if tx
	// supports txn.Journal.
	Put(tx txn.Transaction, key, value types.Field) error

	// Remove deletes key, if present, recording an undo action with tx if
	// tx supports txn.Journal.
	Remove(tx txn.Transaction, key types.Field) error

	// Scan returns a cursor over [first, last]. first/last may be nil for
	// an open bound. Hash maps reject this with dberr.UnsupportedScan.
	Scan(first, last types.Field) (Cursor, error)

	// Size returns the exact number of entries.
	Size() int64

	// SizeApproximation returns a cheap, possibly stale, entry-count
	// estimate (§4.7's getRowCountApproximation).
	SizeApproximation() int64

	// DiskSpaceUsed reports the map's on-disk footprint in bytes, or 0 for
	// a non-persistent store.
	DiskSpaceUsed() int64
}
