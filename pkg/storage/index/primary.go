package index

import (
	"tablecore/pkg/dberr"
	"tablecore/pkg/kvstore"
	"tablecore/pkg/primitives"
	"tablecore/pkg/row"
	"tablecore/pkg/session"
	"tablecore/pkg/types"
)

// PrimaryIndex stores row-id → row (§4.2). When mainColumn is valid, the
// index is "promoted": the designated column's value must equal the row's
// internal row-id, letting lookups on that column skip straight to the
// backing map without a second index.
type PrimaryIndex struct {
	id         primitives.IndexID
	backing    kvstore.Map
	mainColumn primitives.ColumnID
}

// NewPrimaryIndex wraps backing as a primary clustered index. mainColumn is
// primitives.InvalidColumnID when no column is promoted.
func NewPrimaryIndex(id primitives.IndexID, backing kvstore.Map, mainColumn primitives.ColumnID) *PrimaryIndex {
	return &PrimaryIndex{id: id, backing: backing, mainColumn: mainColumn}
}

func (p *PrimaryIndex) ID() primitives.IndexID { return p.id }
func (p *PrimaryIndex) Kind() Kind             { return Primary }
func (p *PrimaryIndex) MapName() string        { return p.backing.Name() }
func (p *PrimaryIndex) NeedsRebuild() bool     { return false }

// IsPromoted reports whether this index has a main index column.
func (p *PrimaryIndex) IsPromoted() bool { return p.mainColumn != primitives.InvalidColumnID }

// MainColumn returns the promoted column's position, or
// primitives.InvalidColumnID if the index is not promoted.
func (p *PrimaryIndex) MainColumn() primitives.ColumnID { return p.mainColumn }

func (p *PrimaryIndex) rowKey(r *row.Row) (types.Field, error) {
	return types.NewIntField(int64(r.ID)), nil
}

func (p *PrimaryIndex) Add(s *session.Session, r *row.Row) error {
	if p.IsPromoted() {
		f, err := r.Field(int(p.mainColumn))
		if err != nil {
			return err
		}
		iv, ok := f.(*types.IntField)
		if !ok || iv.Value != int64(r.ID) {
			return dberr.Newf(dberr.InternalCheck, "primary index add",
				"main index column value %v does not equal row-id %d", f, r.ID)
		}
	}
	key, _ := p.rowKey(r)
	if _, found := p.backing.Get(key); found {
		return dberr.Newf(dberr.InternalCheck, "primary index add", "row-id %d already present", r.ID)
	}
	return p.backing.Put(s.Transaction(), key, row.NewRowField(r))
}

func (p *PrimaryIndex) Remove(s *session.Session, r *row.Row) error {
	key, _ := p.rowKey(r)
	if _, found := p.backing.Get(key); !found {
		return dberr.Newf(dberr.InternalCheck, "primary index remove", "row-id %d not present", r.ID)
	}
	return p.backing.Remove(s.Transaction(), key)
}

func (p *PrimaryIndex) Truncate(s *session.Session) error {
	cur, err := p.backing.Scan(nil, nil)
	if err != nil {
		return err
	}
	var keys []types.Field
	for cur.Next() {
		keys = append(keys, cur.Key())
	}
	for _, k := range keys {
		if err := p.backing.Remove(s.Transaction(), k); err != nil {
			return err
		}
	}
	return nil
}

func (p *PrimaryIndex) decode(c kvstore.Cursor) (*row.Row, error) {
	rf, ok := c.Value().(*row.RowField)
	if !ok {
		return nil, dberr.New(dberr.InternalCheck, "primary index: non-row value in backing map")
	}
	return rf.Row, nil
}

func (p *PrimaryIndex) Find(s *session.Session, first, last *row.Key) (Cursor, error) {
	var firstF, lastF types.Field
	if first != nil {
		firstF = first.Fields[0]
	}
	if last != nil {
		lastF = last.Fields[0]
	}
	cur, err := p.backing.Scan(firstF, lastF)
	if err != nil {
		return nil, err
	}
	return newMapCursor(s, cur, p.decode), nil
}

func (p *PrimaryIndex) RowCount(s *session.Session) (int64, error) {
	return p.backing.Size(), nil
}

func (p *PrimaryIndex) RowCountApproximation() int64 {
	return p.backing.SizeApproximation()
}

// FetchRow implements RowFetcher for hash and secondary indexes, which
// store only row-ids and look the full row up through the primary.
func (p *PrimaryIndex) FetchRow(s *session.Session, id primitives.RowID) (*row.Row, error) {
	key := types.NewIntField(int64(id))
	v, found := p.backing.Get(key)
	if !found {
		return nil, dberr.Newf(dberr.InternalCheck, "fetch row", "row-id %d not found in primary index", id)
	}
	return v.(*row.RowField).Row, nil
}

func (p *PrimaryIndex) CompareRows(a, b *row.Row) int {
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}

var (
	_ Index      = (*PrimaryIndex)(nil)
	_ RowFetcher = (*PrimaryIndex)(nil)
)
