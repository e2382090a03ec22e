package memstore

import (
	"sync"

	"tablecore/pkg/dberr"
	"tablecore/pkg/kvstore"
	"tablecore/pkg/txn"
	"tablecore/pkg/types"
)

type hashEntry struct {
	key   types.Field
	value types.Field
}

// hashMap is a Go-map-backed kvstore.Map offering equality lookup only;
// Scan always fails, matching the teacher's hash index which has no notion
// of key order.
type hashMap struct {
	name      string
	mu        sync.RWMutex
	entries   map[string]hashEntry
	keyType   types.Type
	valueType types.Type
}

func newHashMap(name string, keyType, valueType types.Type) *hashMap {
	return &hashMap{name: name, keyType: keyType, valueType: valueType, entries: make(map[string]hashEntry)}
}

func (m *hashMap) Name() string { return m.name }

func (m *hashMap) Get(key types.Field) (types.Field, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[canonicalKey(key)]
	if !ok {
		return nil, false
	}
	return e.value, true
}

func (m *hashMap) Put(tx txn.Transaction, key, value types.Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := canonicalKey(key)
	old, existed := m.entries[k]
	m.entries[k] = hashEntry{key: key, value: value}

	if j, ok := tx.(txn.Journal); ok {
		j.Record(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if existed {
				m.entries[k] = old
			} else {
				delete(m.entries, k)
			}
		})
	}
	return nil
}

func (m *hashMap) Remove(tx txn.Transaction, key types.Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := canonicalKey(key)
	old, existed := m.entries[k]
	if !existed {
		return nil
	}
	delete(m.entries, k)

	if j, ok := tx.(txn.Journal); ok {
		j.Record(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.entries[k] = old
		})
	}
	return nil
}

func (m *hashMap) Scan(first, last types.Field) (kvstore.Cursor, error) {
	return nil, dberr.New(dberr.UnsupportedScan, "hash maps support equality lookup only")
}

func (m *hashMap) Size() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.entries))
}

func (m *hashMap) SizeApproximation() int64 { return m.Size() }

func (m *hashMap) DiskSpaceUsed() int64 { return 0 }

// Clear implements kvstore.Clearer, recording one undo closure that
// restores the whole entry set if the transaction rolls back.
func (m *hashMap) Clear(tx txn.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old := m.entries
	m.entries = make(map[string]hashEntry, len(old))

	if j, ok := tx.(txn.Journal); ok {
		j.Record(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.entries = old
		})
	}
}
