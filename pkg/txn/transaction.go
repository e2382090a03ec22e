// Package txn declares the transaction-engine contract the table core
// consumes (§6). The table core never begins, commits, or owns a
// Transaction outright: a Session carries its current transaction, and the
// table core borrows it for exactly the span of one mutation.
package txn

// SavepointID identifies a point a transaction can be rolled back to
// without aborting the whole transaction.
type SavepointID int64

// Transaction is the subset of the external transaction engine's contract
// the table core consumes: setSavepoint/rollbackToSavepoint/commit/rollback
// (§6).
type Transaction interface {
	SetSavepoint() (SavepointID, error)
	RollbackToSavepoint(SavepointID) error
	Commit() error
	Rollback() error
}

// Journal is an optional capability a Transaction implementation can
// support: recording an undo action to run if the transaction is rolled
// back (to a savepoint or entirely). Map implementations backed by storage
// with no native multi-version history of their own (§6.1) use this to
// make RollbackToSavepoint observable; a real MVCC-backed engine would not
// need it, since the underlying store already retains prior versions.
type Journal interface {
	Record(undo func())
}

// Liveness is an optional capability reporting whether a Transaction is
// still open. Index cursors use this to fail with dberr.TransactionClosed
// if their owning transaction ends mid-iteration (§4.1).
type Liveness interface {
	IsActive() bool
}
