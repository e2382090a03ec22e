package table

import (
	"tablecore/pkg/dberr"
	"tablecore/pkg/logging"
	"tablecore/pkg/primitives"
	"tablecore/pkg/row"
	"tablecore/pkg/session"
	"tablecore/pkg/txn"
	"tablecore/pkg/types"
)

// convertIndexError wraps a raw index-level error into the §7 taxonomy,
// preserving an already-typed dberr.DBError's kind (DuplicateKey,
// ConcurrentUpdate, InternalCheck, ...) and otherwise falling back to
// InternalCheck.
func convertIndexError(err error, operation string) error {
	return dberr.Wrap(err, operation, "mutator")
}

// AddRow implements the Transactional Mutator's addRow (§4.4): bump
// last_modification_id, establish a savepoint, add to every index in
// insertion order, and roll back atomically on any failure, converting the
// raw error into the §7 taxonomy before re-raising.
func (t *Table) AddRow(s *session.Session, values []types.Field) (*row.Row, error) {
	t.lastModificationID.Add(1)

	tx := s.Transaction()
	sp, err := tx.SetSavepoint()
	if err != nil {
		return nil, dberr.Wrap(err, "add row: set savepoint", "mutator")
	}

	id := primitives.RowID(t.nextRowID.Add(1) - 1)
	r := row.New(id, values)

	for _, idx := range t.GetIndexes() {
		if err := idx.Add(s, r); err != nil {
			rollback(tx, sp, t.name)
			return nil, convertIndexError(err, "add row")
		}
	}

	t.afterMutation()
	return r, nil
}

// RemoveRow implements removeRow (§4.4): symmetric to AddRow, iterating
// indexes in reverse insertion order.
func (t *Table) RemoveRow(s *session.Session, id primitives.RowID) error {
	t.lastModificationID.Add(1)

	r, err := t.primary.FetchRow(s, id)
	if err != nil {
		return convertIndexError(err, "remove row: fetch")
	}

	tx := s.Transaction()
	sp, err := tx.SetSavepoint()
	if err != nil {
		return dberr.Wrap(err, "remove row: set savepoint", "mutator")
	}

	indexes := t.GetIndexes()
	for i := len(indexes) - 1; i >= 0; i-- {
		if err := indexes[i].Remove(s, r); err != nil {
			rollback(tx, sp, t.name)
			return convertIndexError(err, "remove row")
		}
	}

	t.afterMutation()
	return nil
}

// Truncate implements truncate (§4.4): reverse-order truncate of every
// index, resetting changesSinceAnalyze.
func (t *Table) Truncate(s *session.Session) error {
	t.lastModificationID.Add(1)

	tx := s.Transaction()
	sp, err := tx.SetSavepoint()
	if err != nil {
		return dberr.Wrap(err, "truncate: set savepoint", "mutator")
	}

	indexes := t.GetIndexes()
	for i := len(indexes) - 1; i >= 0; i-- {
		if err := indexes[i].Truncate(s); err != nil {
			rollback(tx, sp, t.name)
			return convertIndexError(err, "truncate")
		}
	}

	t.changesSinceAnalyze.Store(0)
	return nil
}

// rollback undoes a failed mutation's partial index work (§4.4: "on any
// failure: roll back to the savepoint and re-raise").
func rollback(tx txn.Transaction, sp txn.SavepointID, tableName string) {
	if err := tx.RollbackToSavepoint(sp); err != nil {
		logging.WithTable(tableName).Error("rollback to savepoint failed after a mutation error", "error", err)
	}
}
