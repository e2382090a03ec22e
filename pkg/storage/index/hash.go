package index

import (
	"sync/atomic"

	"tablecore/pkg/dberr"
	"tablecore/pkg/kvstore"
	"tablecore/pkg/primitives"
	"tablecore/pkg/row"
	"tablecore/pkg/session"
	"tablecore/pkg/types"
)

// HashIndex is an in-memory, single-column equality-lookup index (§4.2).
// It always stores its entries in a private memory-only map regardless of
// the table's own backing store, since hash indexes are specified as
// "in-memory only" independent of table persistence; the Unique variant
// rejects duplicate keys with dberr.DuplicateKey, the non-unique variant
// stores key → list<row-id>. Range scans are rejected with
// dberr.UnsupportedScan.
type HashIndex struct {
	id       primitives.IndexID
	unique   bool
	column   int
	backing  kvstore.Map
	fetcher  RowFetcher
	rowCount atomic.Int64
	rebuild  atomic.Bool
}

// NewHashIndex wraps backing (expected to come from a private in-memory
// kvstore.Store) as a unique or non-unique hash index over a single column.
// fetcher resolves row-ids to full rows, normally the table's primary
// index.
func NewHashIndex(id primitives.IndexID, unique bool, column int, backing kvstore.Map, fetcher RowFetcher) *HashIndex {
	h := &HashIndex{id: id, unique: unique, column: column, backing: backing, fetcher: fetcher}
	h.rebuild.Store(true)
	return h
}

func (h *HashIndex) ID() primitives.IndexID { return h.id }

func (h *HashIndex) Kind() Kind {
	if h.unique {
		return HashUnique
	}
	return HashNonUnique
}

func (h *HashIndex) MapName() string { return h.backing.Name() }

func (h *HashIndex) NeedsRebuild() bool { return h.rebuild.Load() }

// MarkBuilt clears the needs-rebuild flag; called by the Index Builder once
// it has finished populating this index (§4.5).
func (h *HashIndex) MarkBuilt() { h.rebuild.Store(false) }

func (h *HashIndex) keyOf(r *row.Row) (types.Field, error) { return r.Field(h.column) }

func (h *HashIndex) Add(s *session.Session, r *row.Row) error {
	key, err := h.keyOf(r)
	if err != nil {
		return err
	}
	tx := s.Transaction()

	if h.unique {
		if _, found := h.backing.Get(key); found {
			return dberr.Newf(dberr.DuplicateKey, "hash index add", "duplicate key %v on unique index", key)
		}
		if err := h.backing.Put(tx, key, types.NewIntField(int64(r.ID))); err != nil {
			return err
		}
		h.rowCount.Add(1)
		return nil
	}

	var list *row.RowIDListField
	if v, found := h.backing.Get(key); found {
		list = v.(*row.RowIDListField)
		if list.Contains(r.ID) {
			return dberr.Newf(dberr.InternalCheck, "hash index add", "row-id %d already indexed under key %v", r.ID, key)
		}
	} else {
		list = row.NewRowIDListField()
	}
	updated := row.NewRowIDListField(append(append([]primitives.RowID{}, list.RowIDs...), r.ID)...)
	if err := h.backing.Put(tx, key, updated); err != nil {
		return err
	}
	h.rowCount.Add(1)
	return nil
}

func (h *HashIndex) Remove(s *session.Session, r *row.Row) error {
	key, err := h.keyOf(r)
	if err != nil {
		return err
	}
	tx := s.Transaction()

	if h.unique {
		if _, found := h.backing.Get(key); !found {
			return dberr.Newf(dberr.InternalCheck, "hash index remove", "key %v not present", key)
		}
		if err := h.backing.Remove(tx, key); err != nil {
			return err
		}
		h.rowCount.Add(-1)
		return nil
	}

	v, found := h.backing.Get(key)
	if !found {
		return dberr.Newf(dberr.InternalCheck, "hash index remove", "key %v not present", key)
	}
	list := v.(*row.RowIDListField).Without(r.ID)
	if len(list.RowIDs) == 0 {
		if err := h.backing.Remove(tx, key); err != nil {
			return err
		}
	} else if err := h.backing.Put(tx, key, list); err != nil {
		return err
	}
	h.rowCount.Add(-1)
	return nil
}

func (h *HashIndex) Truncate(s *session.Session) error {
	c, ok := h.backing.(kvstore.Clearer)
	if !ok {
		return dberr.New(dberr.InternalCheck, "hash index backing map does not support Clear")
	}
	c.Clear(s.Transaction())
	h.rowCount.Store(0)
	return nil
}

func (h *HashIndex) Find(s *session.Session, first, last *row.Key) (Cursor, error) {
	if first == nil || last == nil || len(first.Fields) == 0 || len(last.Fields) == 0 || !first.Fields[0].Equals(last.Fields[0]) {
		return nil, dberr.New(dberr.UnsupportedScan, "hash indexes support equality lookup only")
	}
	key := first.Fields[0]
	v, found := h.backing.Get(key)
	if !found {
		return newSliceCursor(s, nil), nil
	}

	var ids []primitives.RowID
	if h.unique {
		ids = []primitives.RowID{primitives.RowID(v.(*types.IntField).Value)}
	} else {
		ids = v.(*row.RowIDListField).RowIDs
	}

	rows := make([]*row.Row, 0, len(ids))
	for _, id := range ids {
		r, err := h.fetcher.FetchRow(s, id)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return newSliceCursor(s, rows), nil
}

func (h *HashIndex) RowCount(s *session.Session) (int64, error) {
	return h.rowCount.Load(), nil
}

func (h *HashIndex) RowCountApproximation() int64 { return h.rowCount.Load() }

func (h *HashIndex) CompareRows(a, b *row.Row) int {
	ka, _ := h.keyOf(a)
	kb, _ := h.keyOf(b)
	if c := ka.CompareTo(kb); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}

var _ Index = (*HashIndex)(nil)
