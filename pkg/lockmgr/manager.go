// Package lockmgr implements the table-level lock manager (§4.3): a
// per-table reader/writer lock with a FIFO waiter queue, shared-to-exclusive
// upgrade, re-entrance, and cross-table deadlock detection.
//
// The manager deliberately knows nothing about MVCC fast paths or
// read-committed short-circuiting (§4.3 point 1) — callers that have a
// multi-version store decide, before calling Lock, whether a lock is needed
// at all. Manager only implements the state machine in §3's Lock State
// entity and the wait/deadlock protocol built on top of it.
package lockmgr

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"tablecore/pkg/dberr"
	"tablecore/pkg/logging"
)

// maxGCCyclesPerWait bounds how many times a single Lock call will force a
// garbage-collection cycle while contending for an exclusive lock under
// LockModeTableGC, mirroring the original's loop-and-compare-free-memory
// pattern without looping unbounded (§4.10).
const maxGCCyclesPerWait = 3

// deadlockCheckInterval bounds how long a waiter sleeps before re-checking
// the state machine and re-running deadlock detection (§4.3).
const deadlockCheckInterval = 100 * time.Millisecond

// State is the observable state of a table's lock (§4.3).
type State int

const (
	Free State = iota
	SharedHeld
	ExclusiveHeld
)

func (s State) String() string {
	switch s {
	case Free:
		return "Free"
	case SharedHeld:
		return "SharedHeld"
	case ExclusiveHeld:
		return "ExclusiveHeld"
	default:
		return "Unknown"
	}
}

// SyncObject pairs a mutex with its condition variable. Tables synchronize
// either on their own SyncObject (multi-threaded engines, per-table
// contention) or share one instance database-wide (single-threaded
// engines), per §4.3's "sync-object choice". It guards only the waiter
// queue: the FIFO order and the wait/notify handshake.
type SyncObject struct {
	mu   sync.Mutex
	cond *sync.Cond
}

// NewSyncObject creates a fresh, unshared sync object.
func NewSyncObject() *SyncObject {
	s := &SyncObject{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Manager holds one table's lock state (§3: Lock State). Zero value is not
// usable; construct with NewManager.
//
// Two locks are in play, deliberately kept separate: sync.mu (via the
// SyncObject) serializes the waiter queue and the cond-wait handshake for
// the duration of an acquire attempt; stateMu guards only the
// exclusive/shared holder sets and is held just long enough to read or
// mutate them. Deadlock detection (§5: "runs under a process-wide mutex,
// serializing detections across all tables") only ever touches stateMu, on
// potentially many tables, while a waiting session's own Lock call is
// holding that table's sync.mu — keeping the two locks distinct avoids a
// waiter deadlocking against the detector that is trying to rescue it.
type Manager struct {
	tableName string
	sync      *SyncObject

	stateMu          sync.Mutex
	exclusiveSession *Session
	sharedSessions   map[*Session]struct{}

	waitingSessions []*Session

	lastDeadlock   atomic.Value // string
	gcOnContention atomic.Bool
}

// NewManager creates the lock manager for a table. Pass a shared SyncObject
// across every table in the engine to get single-threaded (database-wide)
// synchronization, or a distinct one per table (or nil) for per-table
// synchronization.
func NewManager(tableName string, sync *SyncObject) *Manager {
	if sync == nil {
		sync = NewSyncObject()
	}
	return &Manager{
		tableName:      tableName,
		sync:           sync,
		sharedSessions: make(map[*Session]struct{}),
	}
}

// Name returns the name of the table this manager guards.
func (m *Manager) Name() string { return m.tableName }

// SetGCOnContention enables LockMode=TableGC (§4.10): a historical
// workaround from the original's JVM target, where an exclusive-lock
// waiter nudges the runtime to collect before sleeping again, in case
// contention is actually a finalizer-pinned reference refusing to let go.
// Carried for completeness; discouraged (see DESIGN.md) and off by
// default.
func (m *Manager) SetGCOnContention(enabled bool) {
	m.gcOnContention.Store(enabled)
}

// State reports the manager's current observable state.
func (m *Manager) State() State {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.stateLocked()
}

func (m *Manager) stateLocked() State {
	if m.exclusiveSession != nil {
		return ExclusiveHeld
	}
	if len(m.sharedSessions) > 0 {
		return SharedHeld
	}
	return Free
}

// IsLockedExclusivelyBy reports whether session holds the exclusive lock.
func (m *Manager) IsLockedExclusivelyBy(session *Session) bool {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.exclusiveSession == session
}

// LastDeadlock returns the most recently detected deadlock cycle's detail
// string on this table, and whether one has ever been detected. Used by
// operator tooling (cmd/tablectl) to surface the last incident without
// re-running detection.
func (m *Manager) LastDeadlock() (string, bool) {
	v := m.lastDeadlock.Load()
	if v == nil {
		return "", false
	}
	return v.(string), true
}

// Waiters returns a snapshot of the FIFO waiter queue, head first.
func (m *Manager) Waiters() []*Session {
	m.sync.mu.Lock()
	defer m.sync.mu.Unlock()
	out := make([]*Session, len(m.waitingSessions))
	copy(out, m.waitingSessions)
	return out
}

// Lock acquires a shared or exclusive lock on the table for session,
// implementing the state machine and acquire protocol of §4.3 (steps 2-4;
// step 1's MVCC/read-committed fast path is the caller's responsibility).
func (m *Manager) Lock(session *Session, exclusive bool) error {
	log := logging.WithLock(uint64(session.ID), m.tableName)
	mode := lockModeLabel(exclusive)
	log.Debug("lock attempt", "mode", mode)

	if m.reentrant(session, exclusive) {
		log.Debug("lock granted", "mode", mode, "reentrant", true)
		return nil
	}

	m.sync.mu.Lock()
	session.setWaitFor(m)
	m.waitingSessions = append(m.waitingSessions, session)

	defer func() {
		session.clearWaitFor()
		m.removeWaiterLocked(session)
		m.sync.mu.Unlock()
	}()

	var max time.Time
	checkDeadlock := false
	gcCycles := 0
	for {
		if len(m.waitingSessions) > 0 && m.waitingSessions[0] == session {
			if m.tryAcquire(session, exclusive) {
				session.addLock(m)
				log.Debug("lock granted", "mode", mode, "reentrant", false)
				return nil
			}
		}

		if checkDeadlock {
			if cycle := detectDeadlock(m, session); cycle != nil {
				detail := formatCycle(cycle, m, exclusive)
				m.lastDeadlock.Store(detail)
				log.Debug("lock denied", "mode", mode, "reason", "deadlock")
				return dberr.Newf(dberr.Deadlock, "deadlock detected on table "+m.tableName, "%s", detail)
			}
		} else {
			// Arm deadlock detection only after the first unsuccessful
			// attempt, to tolerate brief contention (§4.3).
			checkDeadlock = true
		}

		if exclusive && gcCycles < maxGCCyclesPerWait && m.gcOnContention.Load() {
			runtime.GC()
			gcCycles++
		}

		now := time.Now()
		if max.IsZero() {
			max = now.Add(session.LockTimeout)
		} else if !now.Before(max) {
			log.Debug("lock denied", "mode", mode, "reason", "timeout")
			return dberr.Newf(dberr.LockTimeout, "lock wait timed out", "table %s after %s", m.tableName, session.LockTimeout)
		}

		sleep := deadlockCheckInterval
		if remaining := max.Sub(now); remaining < sleep {
			sleep = remaining
		}
		if sleep <= 0 {
			sleep = time.Millisecond
		}
		condTimedWait(m.sync.cond, sleep)
	}
}

func lockModeLabel(exclusive bool) string {
	if exclusive {
		return "exclusive"
	}
	return "shared"
}

// reentrant reports whether session already holds the table in a mode that
// satisfies this request, without entering the waiter queue.
func (m *Manager) reentrant(session *Session, exclusive bool) bool {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if m.exclusiveSession == session {
		return true
	}
	if !exclusive {
		_, ok := m.sharedSessions[session]
		return ok
	}
	return false
}

// tryAcquire implements the state-machine transition attempt. Caller must
// hold m.sync.mu (so only the waiter-queue head calls it).
func (m *Manager) tryAcquire(session *Session, exclusive bool) bool {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	if exclusive {
		if m.exclusiveSession != nil {
			return false
		}
		if len(m.sharedSessions) == 0 {
			m.exclusiveSession = session
			return true
		}
		if _, soleHolder := m.sharedSessions[session]; soleHolder && len(m.sharedSessions) == 1 {
			// Upgrade. The exclusive invariant (§3: "while exclusive held,
			// shared set is empty") requires removing session from the
			// shared set here.
			delete(m.sharedSessions, session)
			m.exclusiveSession = session
			return true
		}
		return false
	}

	if m.exclusiveSession != nil {
		return false
	}
	m.sharedSessions[session] = struct{}{}
	return true
}

func (m *Manager) removeWaiterLocked(session *Session) {
	for i, s := range m.waitingSessions {
		if s == session {
			m.waitingSessions = append(m.waitingSessions[:i], m.waitingSessions[i+1:]...)
			return
		}
	}
}

// Unlock releases session's hold on the table, if any, and wakes every
// waiter. Only the new queue head will succeed in re-acquiring.
func (m *Manager) Unlock(session *Session) {
	m.stateMu.Lock()
	if m.exclusiveSession == session {
		m.exclusiveSession = nil
	}
	delete(m.sharedSessions, session)
	m.stateMu.Unlock()

	m.sync.mu.Lock()
	m.sync.cond.Broadcast()
	m.sync.mu.Unlock()

	session.removeLock(m)
	logging.WithLock(uint64(session.ID), m.tableName).Debug("lock released")
}

// condTimedWait blocks on c until notified or d elapses. c.L must be held
// by the caller; it is released while waiting and re-acquired on return,
// matching sync.Cond.Wait's contract.
func condTimedWait(c *sync.Cond, d time.Duration) {
	timer := time.AfterFunc(d, func() {
		c.L.Lock()
		c.Broadcast()
		c.L.Unlock()
	})
	defer timer.Stop()
	c.Wait()
}

// holders returns every session currently holding this table, shared or
// exclusive.
func (m *Manager) holders() []*Session {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	holders := make([]*Session, 0, len(m.sharedSessions)+1)
	for s := range m.sharedSessions {
		holders = append(holders, s)
	}
	if m.exclusiveSession != nil {
		holders = append(holders, m.exclusiveSession)
	}
	return holders
}
