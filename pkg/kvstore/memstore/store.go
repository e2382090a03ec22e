// Package memstore is an in-memory reference implementation of kvstore.Store,
// used by tests and by non-persistent table instances. It is explicitly not
// a production storage engine: maps live only in process memory, there is no
// write-ahead log, and DiskSpaceUsed always reports 0.
package memstore

import (
	"fmt"
	"sync"
	"sync/atomic"

	"tablecore/pkg/dberr"
	"tablecore/pkg/kvstore"
	"tablecore/pkg/types"
)

// Store is a process-local, non-persistent kvstore.Store.
type Store struct {
	mu       sync.Mutex
	maps     map[string]kvstore.Map
	tempSeq  atomic.Int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{maps: make(map[string]kvstore.Map)}
}

func (s *Store) OpenMap(name string, keyType, valueType types.Type) (kvstore.Map, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.maps[name]; ok {
		return m, nil
	}
	m := newOrderedMap(name, keyType, valueType)
	s.maps[name] = m
	return m, nil
}

func (s *Store) OpenHashMap(name string, keyType, valueType types.Type) (kvstore.Map, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.maps[name]; ok {
		return m, nil
	}
	m := newHashMap(name, keyType, valueType)
	s.maps[name] = m
	return m, nil
}

func (s *Store) NextTemporaryMapName() string {
	n := s.tempSeq.Add(1)
	return fmt.Sprintf("_tmp_%d", n)
}

func (s *Store) HasMap(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.maps[name]
	return ok
}

func (s *Store) RemoveMap(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.maps[name]; !ok {
		return dberr.Newf(dberr.InternalCheck, "remove map", "no such map %q", name)
	}
	delete(s.maps, name)
	return nil
}

func (s *Store) IsPersistent() bool { return false }

func canonicalKey(f types.Field) string {
	return fmt.Sprintf("%d|%s", f.Type(), f.String())
}

var (
	_ kvstore.Store   = (*Store)(nil)
	_ kvstore.Map     = (*orderedMap)(nil)
	_ kvstore.Map     = (*hashMap)(nil)
	_ kvstore.Clearer = (*hashMap)(nil)
)
