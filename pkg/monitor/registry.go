// Package monitor exposes a read-only, poll-friendly view over a set of
// live tables' lock state for operator tooling (cmd/tablectl). It holds no
// locks of its own beyond the registry map: every field it reports comes
// straight from lockmgr.Manager's own public accessors.
package monitor

import (
	"sync"

	"tablecore/pkg/lockmgr"
	"tablecore/pkg/table"
)

// Registry tracks the live tables an operator session wants to watch.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*table.Table
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*table.Table)}
}

// Register adds or replaces the watched table under its own name.
func (r *Registry) Register(t *table.Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[t.Name()] = t
}

// Unregister stops watching the named table.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tables, name)
}

// TableSnapshot is one table's lock state at a point in time.
type TableSnapshot struct {
	Name          string
	State         lockmgr.State
	WaiterCount   int
	RowCount      int64
	LastDeadlock  string
	HasDeadlock   bool
}

// Snapshot takes a consistent-enough read of every registered table,
// sorted by name. Each field read is independently synchronized by the
// table/lock manager itself; a snapshot is a best-effort composite, not a
// transactionally consistent view across tables.
func (r *Registry) Snapshot() []TableSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]TableSnapshot, 0, len(r.tables))
	for name, t := range r.tables {
		mgr := t.LockManager()
		last, has := mgr.LastDeadlock()
		out = append(out, TableSnapshot{
			Name:         name,
			State:        mgr.State(),
			WaiterCount:  len(mgr.Waiters()),
			RowCount:     t.GetRowCountApproximation(),
			LastDeadlock: last,
			HasDeadlock:  has,
		})
	}
	sortSnapshots(out)
	return out
}

func sortSnapshots(s []TableSnapshot) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].Name < s[j-1].Name; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
