package index

import (
	"tablecore/pkg/primitives"
	"tablecore/pkg/row"
	"tablecore/pkg/session"
)

// DelegateIndex is a zero-storage view over a promoted PrimaryIndex's main
// column (§4.2): since the main column's value equals the row-id, every
// operation reduces to the identical operation on the primary, and Add/
// Remove/Truncate are no-ops because the primary already owns the data.
type DelegateIndex struct {
	id      primitives.IndexID
	primary *PrimaryIndex
}

// NewDelegateIndex creates a delegate over primary, which must be promoted
// (§4.2 selection policy: "primary-key with a single promotable integral
// ascending column → Delegate").
func NewDelegateIndex(id primitives.IndexID, primary *PrimaryIndex) *DelegateIndex {
	return &DelegateIndex{id: id, primary: primary}
}

func (d *DelegateIndex) ID() primitives.IndexID { return d.id }
func (d *DelegateIndex) Kind() Kind             { return Delegate }
func (d *DelegateIndex) MapName() string        { return d.primary.MapName() }
func (d *DelegateIndex) NeedsRebuild() bool     { return false }

func (d *DelegateIndex) Add(s *session.Session, r *row.Row) error    { return nil }
func (d *DelegateIndex) Remove(s *session.Session, r *row.Row) error { return nil }
func (d *DelegateIndex) Truncate(s *session.Session) error           { return nil }

func (d *DelegateIndex) Find(s *session.Session, first, last *row.Key) (Cursor, error) {
	return d.primary.Find(s, first, last)
}

func (d *DelegateIndex) RowCount(s *session.Session) (int64, error) {
	return d.primary.RowCount(s)
}

func (d *DelegateIndex) RowCountApproximation() int64 {
	return d.primary.RowCountApproximation()
}

func (d *DelegateIndex) CompareRows(a, b *row.Row) int {
	return d.primary.CompareRows(a, b)
}

var _ Index = (*DelegateIndex)(nil)
