package lockmgr

import (
	"sync"
	"testing"
	"time"

	"tablecore/pkg/dberr"
	"tablecore/pkg/primitives"
)

func newTestSession(id uint64) *Session {
	return NewSession(primitives.SessionID(id), 2*time.Second)
}

func TestReentrantExclusiveIsNoOp(t *testing.T) {
	m := NewManager("t", nil)
	s := newTestSession(1)

	if err := m.Lock(s, true); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := m.Lock(s, true); err != nil {
		t.Fatalf("re-entrant Lock: %v", err)
	}
	if err := m.Lock(s, false); err != nil {
		t.Fatalf("shared Lock while holding exclusive: %v", err)
	}
	if m.State() != ExclusiveHeld {
		t.Errorf("State() = %v, want ExclusiveHeld", m.State())
	}
}

func TestSoleSharedHolderUpgrades(t *testing.T) {
	m := NewManager("t", nil)
	s := newTestSession(1)

	if err := m.Lock(s, false); err != nil {
		t.Fatalf("shared Lock: %v", err)
	}
	if err := m.Lock(s, true); err != nil {
		t.Fatalf("upgrade Lock: %v", err)
	}
	if m.State() != ExclusiveHeld {
		t.Errorf("State() = %v, want ExclusiveHeld after upgrade", m.State())
	}
	if !m.IsLockedExclusivelyBy(s) {
		t.Error("expected s to hold exclusive after upgrade")
	}
}

// TestFIFOFairness is end-to-end scenario 1 from §8: S1 takes shared, S2
// queues for exclusive, S3 queues for shared behind S2. S1 releasing must
// let S2 go first, then S3.
func TestFIFOFairness(t *testing.T) {
	m := NewManager("t", nil)
	s1, s2, s3 := newTestSession(1), newTestSession(2), newTestSession(3)

	if err := m.Lock(s1, false); err != nil {
		t.Fatalf("s1 shared: %v", err)
	}

	s2Acquired := make(chan error, 1)
	go func() { s2Acquired <- m.Lock(s2, true) }()
	waitUntilWaiting(t, m, s2)

	s3Acquired := make(chan error, 1)
	go func() { s3Acquired <- m.Lock(s3, false) }()
	waitUntilWaiting(t, m, s3)

	waiters := m.Waiters()
	if len(waiters) != 2 || waiters[0] != s2 || waiters[1] != s3 {
		t.Fatalf("expected waiter order [s2, s3], got %v", waiters)
	}

	m.Unlock(s1)

	select {
	case err := <-s2Acquired:
		if err != nil {
			t.Fatalf("s2 Lock: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("s2 never acquired exclusive lock")
	}

	select {
	case <-s3Acquired:
		t.Fatal("s3 acquired before s2 released")
	case <-time.After(50 * time.Millisecond):
	}

	m.Unlock(s2)

	select {
	case err := <-s3Acquired:
		if err != nil {
			t.Fatalf("s3 Lock: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("s3 never acquired shared lock")
	}
}

// TestDeadlockCycleOfTwo is end-to-end scenario 2 from §8: S1 holds T1,
// waits on T2; S2 holds T2, waits on T1. Exactly one raises Deadlock.
func TestDeadlockCycleOfTwo(t *testing.T) {
	t1 := NewManager("t1", nil)
	t2 := NewManager("t2", nil)
	s1 := NewSession(primitives.SessionID(1), 2*time.Second)
	s2 := NewSession(primitives.SessionID(2), 2*time.Second)

	if err := t1.Lock(s1, true); err != nil {
		t.Fatalf("s1 lock t1: %v", err)
	}
	if err := t2.Lock(s2, true); err != nil {
		t.Fatalf("s2 lock t2: %v", err)
	}

	var wg sync.WaitGroup
	var err1, err2 error
	wg.Add(2)
	go func() { defer wg.Done(); err1 = t2.Lock(s1, true) }()
	go func() { defer wg.Done(); err2 = t1.Lock(s2, true) }()
	wg.Wait()

	deadlocks := 0
	successes := 0
	for _, err := range []error{err1, err2} {
		switch {
		case dberr.Is(err, dberr.Deadlock):
			deadlocks++
		case err == nil:
			successes++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if deadlocks != 1 || successes != 1 {
		t.Fatalf("expected exactly one deadlock and one success, got %d deadlocks, %d successes", deadlocks, successes)
	}
}

func TestLockTimeout(t *testing.T) {
	m := NewManager("t", nil)
	holder := NewSession(primitives.SessionID(1), time.Hour)
	waiter := NewSession(primitives.SessionID(2), 150*time.Millisecond)

	if err := m.Lock(holder, true); err != nil {
		t.Fatalf("holder lock: %v", err)
	}

	err := m.Lock(waiter, true)
	if !dberr.Is(err, dberr.LockTimeout) {
		t.Fatalf("Lock() = %v, want LockTimeout", err)
	}

	if waiters := m.Waiters(); len(waiters) != 0 {
		t.Errorf("waiter should be removed from queue after timeout, got %v", waiters)
	}
}

func TestLastDeadlockRecordsMostRecentCycle(t *testing.T) {
	t1 := NewManager("t1", nil)
	t2 := NewManager("t2", nil)
	s1 := NewSession(primitives.SessionID(1), 2*time.Second)
	s2 := NewSession(primitives.SessionID(2), 2*time.Second)

	if _, ok := t1.LastDeadlock(); ok {
		t.Fatal("LastDeadlock should report false before any deadlock is detected")
	}

	if err := t1.Lock(s1, true); err != nil {
		t.Fatalf("s1 lock t1: %v", err)
	}
	if err := t2.Lock(s2, true); err != nil {
		t.Fatalf("s2 lock t2: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); t2.Lock(s1, true) }()
	go func() { defer wg.Done(); t1.Lock(s2, true) }()
	wg.Wait()

	detail1, ok1 := t1.LastDeadlock()
	detail2, ok2 := t2.LastDeadlock()
	if !ok1 && !ok2 {
		t.Fatal("expected at least one manager to record a deadlock detail")
	}
	if ok1 && detail1 == "" {
		t.Error("t1.LastDeadlock() returned ok=true with an empty detail")
	}
	if ok2 && detail2 == "" {
		t.Error("t2.LastDeadlock() returned ok=true with an empty detail")
	}
}

// TestGCOnContentionDoesNotBlockEventualAcquisition exercises
// LockMode=TableGC's wiring (§4.10): enabling it must not change the
// outcome of an otherwise-ordinary exclusive wait, only add forced GC
// cycles while waiting.
func TestGCOnContentionDoesNotBlockEventualAcquisition(t *testing.T) {
	m := NewManager("t", nil)
	m.SetGCOnContention(true)

	holder := newTestSession(1)
	waiter := newTestSession(2)

	if err := m.Lock(holder, true); err != nil {
		t.Fatalf("holder lock: %v", err)
	}

	acquired := make(chan error, 1)
	go func() { acquired <- m.Lock(waiter, true) }()
	waitUntilWaiting(t, m, waiter)

	m.Unlock(holder)

	select {
	case err := <-acquired:
		if err != nil {
			t.Fatalf("waiter Lock with GCOnContention enabled: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired exclusive lock with GCOnContention enabled")
	}
}

func waitUntilWaiting(t *testing.T, m *Manager, s *Session) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		for _, w := range m.Waiters() {
			if w == s {
				return
			}
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("session %v never entered waiter queue", s)
}
