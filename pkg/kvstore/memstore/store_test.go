package memstore

import (
	"testing"

	"tablecore/pkg/dberr"
	"tablecore/pkg/txn/localtxn"
	"tablecore/pkg/types"
)

func TestOrderedMapPutGetScan(t *testing.T) {
	s := New()
	m, err := s.OpenMap("t1", types.IntType, types.StringType)
	if err != nil {
		t.Fatalf("OpenMap: %v", err)
	}
	tx := localtxn.New()

	for _, v := range []int64{5, 1, 3, 2, 4} {
		if err := m.Put(tx, types.NewIntField(v), types.NewStringField("v")); err != nil {
			t.Fatalf("Put(%d): %v", v, err)
		}
	}

	cur, err := m.Scan(types.NewIntField(2), types.NewIntField(4))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	var got []int64
	for cur.Next() {
		got = append(got, cur.Key().(*types.IntField).Value)
	}
	want := []int64{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("scan got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("scan got %v, want %v", got, want)
		}
	}

	if m.Size() != 5 {
		t.Errorf("Size() = %d, want 5", m.Size())
	}
}

func TestOrderedMapRollback(t *testing.T) {
	s := New()
	m, _ := s.OpenMap("t1", types.IntType, types.StringType)
	tx := localtxn.New()

	if err := m.Put(tx, types.NewIntField(1), types.NewStringField("a")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	sp, _ := tx.SetSavepoint()
	if err := m.Put(tx, types.NewIntField(2), types.NewStringField("b")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := m.Remove(tx, types.NewIntField(1)); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if err := tx.RollbackToSavepoint(sp); err != nil {
		t.Fatalf("RollbackToSavepoint: %v", err)
	}

	if _, ok := m.Get(types.NewIntField(2)); ok {
		t.Error("key 2 should have been undone")
	}
	if _, ok := m.Get(types.NewIntField(1)); !ok {
		t.Error("key 1 should have been restored")
	}
}

func TestHashMapRejectsScan(t *testing.T) {
	s := New()
	m, err := s.OpenHashMap("h1", types.IntType, types.StringType)
	if err != nil {
		t.Fatalf("OpenHashMap: %v", err)
	}
	if _, err := m.Scan(nil, nil); !dberr.Is(err, dberr.UnsupportedScan) {
		t.Errorf("Scan on hash map = %v, want UnsupportedScan", err)
	}
}

func TestHashMapPutGetRemove(t *testing.T) {
	s := New()
	m, _ := s.OpenHashMap("h1", types.IntType, types.StringType)
	tx := localtxn.New()

	if err := m.Put(tx, types.NewIntField(42), types.NewStringField("answer")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v, ok := m.Get(types.NewIntField(42))
	if !ok || v.(*types.StringField).Value != "answer" {
		t.Fatalf("Get(42) = %v, %v", v, ok)
	}

	if err := m.Remove(tx, types.NewIntField(42)); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := m.Get(types.NewIntField(42)); ok {
		t.Error("key should be gone after Remove")
	}
}

func TestStoreNextTemporaryMapNameIsUnique(t *testing.T) {
	s := New()
	a := s.NextTemporaryMapName()
	b := s.NextTemporaryMapName()
	if a == b {
		t.Errorf("temporary map names collided: %q", a)
	}
}

func TestStoreRemoveMapUnknownFails(t *testing.T) {
	s := New()
	if err := s.RemoveMap("nope"); !dberr.Is(err, dberr.InternalCheck) {
		t.Errorf("RemoveMap(unknown) = %v, want InternalCheck", err)
	}
}
