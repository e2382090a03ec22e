package session

import (
	"testing"
	"time"

	"tablecore/pkg/primitives"
	"tablecore/pkg/txn/localtxn"
)

func TestSessionCarriesTransaction(t *testing.T) {
	s := New(primitives.SessionID(1), time.Second)
	if s.Transaction() != nil {
		t.Fatal("new session should have no active transaction")
	}

	tx := localtxn.New()
	s.SetTransaction(tx)
	if s.Transaction() != tx {
		t.Error("Transaction() did not return the installed transaction")
	}

	s.SetTransaction(nil)
	if s.Transaction() != nil {
		t.Error("Transaction() should be nil after clearing")
	}
}

func TestSessionEmbedsLockBookkeeping(t *testing.T) {
	s := New(primitives.SessionID(7), 500*time.Millisecond)
	if s.ID != primitives.SessionID(7) {
		t.Errorf("ID = %v, want 7", s.ID)
	}
	if len(s.Locks()) != 0 {
		t.Error("new session should hold no locks")
	}
}
