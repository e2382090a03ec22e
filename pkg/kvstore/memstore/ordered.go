package memstore

import (
	"sort"
	"sync"

	"tablecore/pkg/kvstore"
	"tablecore/pkg/txn"
	"tablecore/pkg/types"
)

type orderedEntry struct {
	key   types.Field
	value types.Field
}

// orderedMap is a sorted-slice-backed kvstore.Map supporting range scans,
// grounding the "ordered map" half of the store contract the way the
// teacher's B-tree index exposes a range cursor, minus the page format.
type orderedMap struct {
	name      string
	mu        sync.RWMutex
	entries   []orderedEntry
	keyType   types.Type
	valueType types.Type
}

func newOrderedMap(name string, keyType, valueType types.Type) *orderedMap {
	return &orderedMap{name: name, keyType: keyType, valueType: valueType}
}

func (m *orderedMap) Name() string { return m.name }

func (m *orderedMap) search(key types.Field) int {
	return sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].key.CompareTo(key) >= 0
	})
}

func (m *orderedMap) Get(key types.Field) (types.Field, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.search(key)
	if i < len(m.entries) && m.entries[i].key.Equals(key) {
		return m.entries[i].value, true
	}
	return nil, false
}

func (m *orderedMap) Put(tx txn.Transaction, key, value types.Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.search(key)
	if i < len(m.entries) && m.entries[i].key.Equals(key) {
		old := m.entries[i].value
		m.entries[i].value = value
		if j, ok := tx.(txn.Journal); ok {
			j.Record(func() {
				m.mu.Lock()
				defer m.mu.Unlock()
				m.entries[i].value = old
			})
		}
		return nil
	}

	m.entries = append(m.entries, orderedEntry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = orderedEntry{key: key, value: value}

	if j, ok := tx.(txn.Journal); ok {
		j.Record(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.removeLocked(key)
		})
	}
	return nil
}

func (m *orderedMap) removeLocked(key types.Field) {
	i := m.search(key)
	if i < len(m.entries) && m.entries[i].key.Equals(key) {
		m.entries = append(m.entries[:i], m.entries[i+1:]...)
	}
}

func (m *orderedMap) Remove(tx txn.Transaction, key types.Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.search(key)
	if i >= len(m.entries) || !m.entries[i].key.Equals(key) {
		return nil
	}
	removed := m.entries[i]
	m.entries = append(m.entries[:i], m.entries[i+1:]...)

	if j, ok := tx.(txn.Journal); ok {
		j.Record(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			idx := m.search(removed.key)
			m.entries = append(m.entries, orderedEntry{})
			copy(m.entries[idx+1:], m.entries[idx:])
			m.entries[idx] = removed
		})
	}
	return nil
}

func (m *orderedMap) Scan(first, last types.Field) (kvstore.Cursor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start := 0
	if first != nil {
		start = m.search(first)
	}
	end := len(m.entries)
	if last != nil {
		end = m.search(last)
		if end < len(m.entries) && m.entries[end].key.Equals(last) {
			end++
		}
	}
	snapshot := make([]orderedEntry, end-start)
	copy(snapshot, m.entries[start:end])
	return &orderedCursor{entries: snapshot, pos: -1}, nil
}

func (m *orderedMap) Size() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.entries))
}

func (m *orderedMap) SizeApproximation() int64 { return m.Size() }

func (m *orderedMap) DiskSpaceUsed() int64 { return 0 }

type orderedCursor struct {
	entries []orderedEntry
	pos     int
}

func (c *orderedCursor) Next() bool {
	c.pos++
	return c.pos < len(c.entries)
}

func (c *orderedCursor) Key() types.Field   { return c.entries[c.pos].key }
func (c *orderedCursor) Value() types.Field { return c.entries[c.pos].value }
