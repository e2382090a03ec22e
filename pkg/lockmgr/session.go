package lockmgr

import (
	"fmt"
	"sync"
	"time"

	"tablecore/pkg/primitives"
)

// Session is a connection-owned handle that the lock manager only ever
// borrows (§3 Data Model: "the Lock Manager holds weak/back references to
// sessions"). It carries the state §4.3's acquire protocol and deadlock walk
// need: which tables it currently holds, and which table (if any) it is
// blocked waiting for.
type Session struct {
	ID          primitives.SessionID
	LockTimeout time.Duration

	mu      sync.Mutex
	waitFor *Manager
	locks   []*Manager
}

// NewSession creates a session with the given lock-wait timeout.
func NewSession(id primitives.SessionID, lockTimeout time.Duration) *Session {
	return &Session{ID: id, LockTimeout: lockTimeout}
}

func (s *Session) String() string {
	return fmt.Sprintf("session#%d", uint64(s.ID))
}

// setWaitFor records the table this session is about to block on. Cleared
// on every exit path from Manager.Lock, per the "wait-for slot" pattern.
func (s *Session) setWaitFor(m *Manager) {
	s.mu.Lock()
	s.waitFor = m
	s.mu.Unlock()
}

func (s *Session) clearWaitFor() {
	s.mu.Lock()
	s.waitFor = nil
	s.mu.Unlock()
}

// WaitFor returns the table this session is currently blocked on, or nil.
func (s *Session) WaitFor() *Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waitFor
}

func (s *Session) addLock(m *Manager) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, held := range s.locks {
		if held == m {
			return
		}
	}
	s.locks = append(s.locks, m)
}

func (s *Session) removeLock(m *Manager) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, held := range s.locks {
		if held == m {
			s.locks = append(s.locks[:i], s.locks[i+1:]...)
			return
		}
	}
}

// Locks returns the tables this session currently holds a lock on, in
// acquisition order.
func (s *Session) Locks() []*Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Manager, len(s.locks))
	copy(out, s.locks)
	return out
}
