// Package localtxn is an in-memory reference implementation of
// tablecore/pkg/txn.Transaction, built for tests and the tablectl
// inspector. It is not a production transaction engine (§6.1): it has no
// durability, no isolation between transactions beyond a single goroutine's
// view, and keeps its entire undo history in RAM for the transaction's
// lifetime.
package localtxn

import (
	"sync"

	"tablecore/pkg/dberr"
	"tablecore/pkg/txn"
)

type undoEntry struct {
	undo func()
}

// Transaction rolls back by replaying undo closures in reverse order,
// recorded via Record. Map implementations that have no native
// multi-version history (tablecore/pkg/kvstore/memstore) call Record for
// every mutation so that RollbackToSavepoint and Rollback actually undo
// them.
type Transaction struct {
	mu         sync.Mutex
	log        []undoEntry
	savepoints []int
	closed     bool
}

// New creates a fresh, open transaction.
func New() *Transaction {
	return &Transaction{}
}

// Record appends an undo action to the transaction's log. It is a no-op
// error to call Record on a closed transaction; callers only ever do so
// while holding an open savepoint, so this should not happen in practice.
func (t *Transaction) Record(undo func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.log = append(t.log, undoEntry{undo})
}

func (t *Transaction) SetSavepoint() (txn.SavepointID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, dberr.New(dberr.TransactionClosed, "cannot set savepoint on a closed transaction")
	}
	t.savepoints = append(t.savepoints, len(t.log))
	return txn.SavepointID(len(t.savepoints) - 1), nil
}

func (t *Transaction) RollbackToSavepoint(id txn.SavepointID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return dberr.New(dberr.TransactionClosed, "cannot roll back a closed transaction")
	}
	if int(id) < 0 || int(id) >= len(t.savepoints) {
		return dberr.New(dberr.InternalCheck, "unknown savepoint id")
	}
	mark := t.savepoints[id]
	for i := len(t.log) - 1; i >= mark; i-- {
		t.log[i].undo()
	}
	t.log = t.log[:mark]
	t.savepoints = t.savepoints[:id]
	return nil
}

func (t *Transaction) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return dberr.New(dberr.TransactionClosed, "transaction already closed")
	}
	t.closed = true
	t.log = nil
	t.savepoints = nil
	return nil
}

func (t *Transaction) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return dberr.New(dberr.TransactionClosed, "transaction already closed")
	}
	for i := len(t.log) - 1; i >= 0; i-- {
		t.log[i].undo()
	}
	t.closed = true
	t.log = nil
	t.savepoints = nil
	return nil
}

// Closed reports whether the transaction has committed or rolled back.
func (t *Transaction) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// IsActive implements txn.Liveness.
func (t *Transaction) IsActive() bool {
	return !t.Closed()
}

var _ txn.Transaction = (*Transaction)(nil)
var _ txn.Journal = (*Transaction)(nil)
var _ txn.Liveness = (*Transaction)(nil)
