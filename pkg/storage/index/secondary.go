package index

import (
	"math"
	"sync/atomic"

	"tablecore/pkg/catalog/schema"
	"tablecore/pkg/dberr"
	"tablecore/pkg/kvstore"
	"tablecore/pkg/primitives"
	"tablecore/pkg/row"
	"tablecore/pkg/session"
	"tablecore/pkg/types"
)

// SecondaryIndex stores composite_key → row-id in an ordered map (§4.2).
// The composite key's order is the lexicographic combination of each
// indexed column's ASC/DESC sort order. A trailing ascending row-id
// component disambiguates rows that share identical indexed-column values,
// since the backing ordered map requires unique keys. The unique variant
// rejects a row whose indexed-column values already appear under a
// different row-id with dberr.DuplicateKey (§4.2, §8 scenario 3) — the row-id
// tiebreaker means the backing map's own key uniqueness can't catch this,
// so Add checks the indexed-column prefix range explicitly.
type SecondaryIndex struct {
	id       primitives.IndexID
	unique   bool
	columns  []int
	orders   []schema.SortOrder
	backing  kvstore.Map
	fetcher  RowFetcher
	rowCount atomic.Int64
	rebuild  atomic.Bool
}

// NewSecondaryIndex wraps backing as a sorted secondary index over columns,
// ordered per orders (len(columns) == len(orders)).
func NewSecondaryIndex(id primitives.IndexID, unique bool, columns []int, orders []schema.SortOrder, backing kvstore.Map, fetcher RowFetcher) *SecondaryIndex {
	si := &SecondaryIndex{id: id, unique: unique, columns: columns, orders: orders, backing: backing, fetcher: fetcher}
	si.rebuild.Store(true)
	return si
}

func (si *SecondaryIndex) ID() primitives.IndexID { return si.id }
func (si *SecondaryIndex) Kind() Kind             { return Secondary }
func (si *SecondaryIndex) MapName() string        { return si.backing.Name() }
func (si *SecondaryIndex) NeedsRebuild() bool     { return si.rebuild.Load() }

// MarkBuilt clears the needs-rebuild flag; called by the Index Builder once
// it has finished populating this index (§4.5).
func (si *SecondaryIndex) MarkBuilt() { si.rebuild.Store(false) }

// storageKey builds the full backing-map key: the indexed columns followed
// by the row's id as an ascending tiebreaker.
func (si *SecondaryIndex) storageKey(r *row.Row) (*row.Key, error) {
	k, err := row.KeyOf(r, si.columns, si.orders)
	if err != nil {
		return nil, err
	}
	fields := append(append([]types.Field{}, k.Fields...), types.NewIntField(int64(r.ID)))
	orders := append(append([]schema.SortOrder{}, k.Orders...), schema.Ascending)
	return row.NewKey(fields, orders), nil
}

func (si *SecondaryIndex) Add(s *session.Session, r *row.Row) error {
	if si.unique {
		conflict, err := si.hasConflict(r)
		if err != nil {
			return err
		}
		if conflict {
			k, _ := row.KeyOf(r, si.columns, si.orders)
			return dberr.Newf(dberr.DuplicateKey, "secondary index add", "duplicate key %v on unique index", k)
		}
	}
	key, err := si.storageKey(r)
	if err != nil {
		return err
	}
	if err := si.backing.Put(s.Transaction(), key, types.NewIntField(int64(r.ID))); err != nil {
		return err
	}
	si.rowCount.Add(1)
	return nil
}

// hasConflict reports whether a different row already occupies r's indexed
// column values. Scoped to the indexed-column prefix range (bound's
// row-id sentinel spans the full prefix), since the backing map's key
// includes r's own row-id and would never collide by itself.
func (si *SecondaryIndex) hasConflict(r *row.Row) (bool, error) {
	k, err := row.KeyOf(r, si.columns, si.orders)
	if err != nil {
		return false, err
	}
	cur, err := si.backing.Scan(si.bound(k, false), si.bound(k, true))
	if err != nil {
		return false, err
	}
	for cur.Next() {
		if primitives.RowID(cur.Value().(*types.IntField).Value) != r.ID {
			return true, nil
		}
	}
	return false, nil
}

func (si *SecondaryIndex) Remove(s *session.Session, r *row.Row) error {
	key, err := si.storageKey(r)
	if err != nil {
		return err
	}
	if _, found := si.backing.Get(key); !found {
		return dberr.Newf(dberr.InternalCheck, "secondary index remove", "key %v not present", key)
	}
	if err := si.backing.Remove(s.Transaction(), key); err != nil {
		return err
	}
	si.rowCount.Add(-1)
	return nil
}

func (si *SecondaryIndex) Truncate(s *session.Session) error {
	cur, err := si.backing.Scan(nil, nil)
	if err != nil {
		return err
	}
	var keys []types.Field
	for cur.Next() {
		keys = append(keys, cur.Key())
	}
	for _, k := range keys {
		if err := si.backing.Remove(s.Transaction(), k); err != nil {
			return err
		}
	}
	si.rowCount.Store(0)
	return nil
}

// bound extends a caller-supplied logical key (over si.columns only) with a
// row-id sentinel so the inclusive range scan includes every row sharing
// the same indexed-column prefix.
func (si *SecondaryIndex) bound(k *row.Key, sentinelMax bool) *row.Key {
	if k == nil {
		return nil
	}
	sentinel := int64(math.MinInt64)
	if sentinelMax {
		sentinel = math.MaxInt64
	}
	fields := append(append([]types.Field{}, k.Fields...), types.NewIntField(sentinel))
	orders := append(append([]schema.SortOrder{}, si.orders[:len(k.Fields)]...), schema.Ascending)
	return row.NewKey(fields, orders)
}

func (si *SecondaryIndex) decode(s *session.Session) func(kvstore.Cursor) (*row.Row, error) {
	return func(c kvstore.Cursor) (*row.Row, error) {
		rowID := primitives.RowID(c.Value().(*types.IntField).Value)
		return si.fetcher.FetchRow(s, rowID)
	}
}

func (si *SecondaryIndex) Find(s *session.Session, first, last *row.Key) (Cursor, error) {
	// Scan takes types.Field bounds; assigning only when non-nil avoids
	// wrapping a nil *row.Key in a non-nil interface value.
	var firstF, lastF types.Field
	if b := si.bound(first, false); b != nil {
		firstF = b
	}
	if b := si.bound(last, true); b != nil {
		lastF = b
	}
	cur, err := si.backing.Scan(firstF, lastF)
	if err != nil {
		return nil, err
	}
	return newMapCursor(s, cur, si.decode(s)), nil
}

func (si *SecondaryIndex) RowCount(s *session.Session) (int64, error) {
	return si.rowCount.Load(), nil
}

func (si *SecondaryIndex) RowCountApproximation() int64 { return si.rowCount.Load() }

func (si *SecondaryIndex) CompareRows(a, b *row.Row) int {
	ka, _ := row.KeyOf(a, si.columns, si.orders)
	kb, _ := row.KeyOf(b, si.columns, si.orders)
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

var _ Index = (*SecondaryIndex)(nil)
