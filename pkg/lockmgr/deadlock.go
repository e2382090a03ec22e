package lockmgr

import (
	"fmt"
	"strings"
	"sync"
)

// deadlockMu serializes all deadlock detections across every table, per
// §5's "process-wide mutex (type-level)".
var deadlockMu sync.Mutex

// detectDeadlock walks the wait-for graph starting from the table session
// is about to wait on (waitFor), looking for a cycle back to session. It
// returns the cycle (the sessions forming the ring, innermost first, session
// itself last) or nil if none exists. When a cycle is found, session's
// wait-for slot is cleared before the global mutex is released, so the other
// sessions in the ring no longer see a cycle and only session reports it.
func detectDeadlock(waitFor *Manager, session *Session) []*Session {
	deadlockMu.Lock()
	defer deadlockMu.Unlock()
	cycle := waitFor.checkDeadlock(session, nil, nil)
	if cycle != nil {
		session.clearWaitFor()
	}
	return cycle
}

// checkDeadlock is the recursive wait-for walk (§4.3), grounded in the
// original checkDeadlock(session, clash, visited): m is the table currently
// being waited for; for each of its holders that is itself blocked, the
// walk continues on the table that holder is waiting for. Finding clash
// again closes the cycle; visited pruning only ever skips sessions other
// than the initiator, since re-encountering the initiator is the positive
// signal.
func (m *Manager) checkDeadlock(session, clash *Session, visited map[*Session]bool) []*Session {
	if clash == nil {
		clash = session
		visited = make(map[*Session]bool)
	} else if clash == session {
		return []*Session{}
	} else if visited[session] {
		return nil
	}
	visited[session] = true

	var cycle []*Session
	for _, holder := range m.holders() {
		if holder == session {
			continue
		}
		waitFor := holder.WaitFor()
		if waitFor == nil {
			continue
		}
		if c := waitFor.checkDeadlock(holder, clash, visited); c != nil {
			cycle = append(c, session)
			break
		}
	}
	return cycle
}

// formatCycle renders the deadlock ring into an error detail string naming
// each participant's wait-for table and held locks, grounded in
// getDeadlockDetails.
func formatCycle(cycle []*Session, waitFor *Manager, exclusive bool) string {
	var b strings.Builder
	mode := "shared"
	if exclusive {
		mode = "exclusive"
	}

	fmt.Fprintf(&b, "%s waiting to lock %s (%s)", cycle[len(cycle)-1], waitFor.Name(), mode)
	for _, s := range cycle {
		b.WriteString(" while holding ")
		locks := s.Locks()
		for i, l := range locks {
			if i > 0 {
				b.WriteString(", ")
			}
			if l.IsLockedExclusivelyBy(s) {
				fmt.Fprintf(&b, "%s (exclusive)", l.Name())
			} else {
				fmt.Fprintf(&b, "%s (shared)", l.Name())
			}
		}
	}
	return b.String()
}
