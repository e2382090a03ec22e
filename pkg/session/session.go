// Package session defines the connection-scoped handle threaded through
// every table operation (§3 Data Model: Session entity).
package session

import (
	"sync"
	"time"

	"tablecore/pkg/lockmgr"
	"tablecore/pkg/primitives"
	"tablecore/pkg/txn"
)

// Session embeds the lock manager's bookkeeping (held locks, wait-for slot,
// lock timeout) and additionally carries the session's current transaction,
// which the table core borrows without ever owning it (§3 Ownership: "The
// Transactional Mutator borrows the session's current transaction without
// taking ownership").
type Session struct {
	*lockmgr.Session

	mu sync.Mutex
	tx txn.Transaction
}

// New creates a session with no active transaction.
func New(id primitives.SessionID, lockTimeout time.Duration) *Session {
	return &Session{Session: lockmgr.NewSession(id, lockTimeout)}
}

// Transaction returns the session's current transaction, or nil if none is
// active.
func (s *Session) Transaction() txn.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx
}

// SetTransaction installs tx as the session's current transaction. Passing
// nil clears it (e.g. after commit/rollback).
func (s *Session) SetTransaction(tx txn.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tx = tx
}
