package index

import (
	"tablecore/pkg/dberr"
	"tablecore/pkg/kvstore"
	"tablecore/pkg/row"
	"tablecore/pkg/session"
	"tablecore/pkg/txn"
)

// mapCursor adapts a kvstore.Cursor into an index Cursor: it decodes each
// entry into a row via decode and fails with dberr.TransactionClosed if the
// owning session's transaction ends mid-iteration (§4.1).
type mapCursor struct {
	sess   *session.Session
	inner  kvstore.Cursor
	decode func(kvstore.Cursor) (*row.Row, error)
	cur    *row.Row
}

func newMapCursor(sess *session.Session, inner kvstore.Cursor, decode func(kvstore.Cursor) (*row.Row, error)) *mapCursor {
	return &mapCursor{sess: sess, inner: inner, decode: decode}
}

func checkTransactionLive(sess *session.Session) error {
	tx := sess.Transaction()
	if tx == nil {
		return nil
	}
	if live, ok := tx.(txn.Liveness); ok && !live.IsActive() {
		return dberr.New(dberr.TransactionClosed, "cursor used after its owning transaction ended")
	}
	return nil
}

func (c *mapCursor) Next() (bool, error) {
	if err := checkTransactionLive(c.sess); err != nil {
		return false, err
	}
	if !c.inner.Next() {
		c.cur = nil
		return false, nil
	}
	r, err := c.decode(c.inner)
	if err != nil {
		return false, err
	}
	c.cur = r
	return true, nil
}

func (c *mapCursor) Row() *row.Row { return c.cur }

// sliceCursor iterates a pre-materialized slice of rows, used where a
// single backing-map entry can expand to several rows (non-unique hash
// index fan-out).
type sliceCursor struct {
	sess  *session.Session
	rows  []*row.Row
	pos   int
}

func newSliceCursor(sess *session.Session, rows []*row.Row) *sliceCursor {
	return &sliceCursor{sess: sess, rows: rows, pos: -1}
}

func (c *sliceCursor) Next() (bool, error) {
	if err := checkTransactionLive(c.sess); err != nil {
		return false, err
	}
	c.pos++
	return c.pos < len(c.rows), nil
}

func (c *sliceCursor) Row() *row.Row {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil
	}
	return c.rows[c.pos]
}

var (
	_ Cursor = (*mapCursor)(nil)
	_ Cursor = (*sliceCursor)(nil)
)
