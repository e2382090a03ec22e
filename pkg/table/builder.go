package table

import (
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"tablecore/pkg/catalog/schema"
	"tablecore/pkg/dberr"
	"tablecore/pkg/kvstore"
	"tablecore/pkg/logging"
	"tablecore/pkg/primitives"
	"tablecore/pkg/row"
	"tablecore/pkg/session"
	"tablecore/pkg/storage/index"
	"tablecore/pkg/types"
)

// AddIndex implements the §4.7 facade operation, wiring the §4.2 selection
// policy: a single promotable column matching the primary's promoted main
// column becomes a zero-storage Delegate; a DDL request for a hash index
// (hashTyped) with exactly one column becomes a Hash index (unique or
// non-unique per the unique argument); everything else becomes a sorted
// Secondary index. hashTyped and unique are independent: a caller may ask
// for a unique Secondary index by passing hashTyped=false, unique=true. The
// new index is populated by the Index Builder (§4.5) before it is
// returned; a build failure removes the partially built index and releases
// name back to the schema.
func (t *Table) AddIndex(s *session.Session, name string, columns []int, orders []schema.SortOrder, hashTyped, unique bool) (index.Index, error) {
	t.mu.Lock()
	id := primitives.IndexID(t.nextIndexID.Add(1) - 1)
	kind := t.selectIndexKind(columns, hashTyped, unique)

	idx, err := t.newIndex(id, kind, columns, orders, unique)
	if err != nil {
		t.mu.Unlock()
		return nil, dberr.Wrap(err, "add index: open backing map", "builder")
	}
	t.indexes = append(t.indexes, idx)
	t.mu.Unlock()

	if err := t.catalog.AddSchemaObject(t.id, id, name); err != nil {
		t.removeFailedIndex(idx, name)
		return nil, dberr.Wrap(err, "add index: register schema object", "builder")
	}

	if kind == index.Delegate {
		return idx, nil
	}

	key := t.name + ":" + name
	if err := t.populateIndex(s, idx, kind, key); err != nil {
		t.removeFailedIndex(idx, name)
		return nil, convertIndexError(err, "add index: build")
	}

	switch built := idx.(type) {
	case *index.HashIndex:
		built.MarkBuilt()
	case *index.SecondaryIndex:
		built.MarkBuilt()
	}
	return idx, nil
}

// RemoveIndex drops a non-primary index from the table (§4.7).
func (t *Table) RemoveIndex(idx index.Index) error {
	if idx.Kind() == index.Primary {
		return dberr.New(dberr.InternalCheck, "cannot remove the primary index directly")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeIndexLocked(idx)
}

// selectIndexKind applies §4.2's physical variant selection policy: a
// single promotable column matching the primary's promoted main column
// wins regardless of hashTyped (there is nothing left for a hash index to
// index independently); otherwise hashTyped picks Hash only for
// single-column requests (hash indexes store one key per entry), and
// everything else is Secondary.
func (t *Table) selectIndexKind(columns []int, hashTyped, unique bool) index.Kind {
	if len(columns) == 1 {
		col := t.sch.GetColumnMetadataByIndex(columns[0])
		if col != nil && col.IsPromotable() && t.primary.IsPromoted() && col.Position == t.primary.MainColumn() {
			return index.Delegate
		}
		if hashTyped {
			if unique {
				return index.HashUnique
			}
			return index.HashNonUnique
		}
	}
	return index.Secondary
}

func (t *Table) newIndex(id primitives.IndexID, kind index.Kind, columns []int, orders []schema.SortOrder, unique bool) (index.Index, error) {
	switch kind {
	case index.Delegate:
		return index.NewDelegateIndex(id, t.primary), nil
	case index.HashUnique, index.HashNonUnique:
		m, err := t.hashStoreOrDefault().OpenHashMap(id.MapName(), types.IntType, types.IntType)
		if err != nil {
			return nil, err
		}
		return index.NewHashIndex(id, kind == index.HashUnique, columns[0], m, t.primary), nil
	default:
		m, err := t.store.OpenMap(id.MapName(), types.IntType, types.IntType)
		if err != nil {
			return nil, err
		}
		return index.NewSecondaryIndex(id, unique, columns, orders, m, t.primary), nil
	}
}

// removeFailedIndex undoes a partially built index after the Index Builder
// fails: the map is dropped and the name is released back to the schema
// (§4.5: "the partially built index must be removed and its name released
// back to the schema"). Inner failures are logged, not masked — the caller
// re-raises the original build error.
func (t *Table) removeFailedIndex(idx index.Index, name string) {
	t.mu.Lock()
	for i, existing := range t.indexes {
		if existing == idx {
			t.indexes = append(t.indexes[:i], t.indexes[i+1:]...)
			break
		}
	}
	t.mu.Unlock()

	log := logging.WithTable(t.name)
	if idx.Kind() != index.Delegate {
		store := t.store
		if idx.Kind() == index.HashUnique || idx.Kind() == index.HashNonUnique {
			store = t.hashStoreOrDefault()
		}
		if err := store.RemoveMap(idx.MapName()); err != nil {
			log.Error("failed to remove partially built index map after rebuild failure", "index", name, "error", err)
		}
	}
	if err := t.catalog.FreeUniqueName(name); err != nil {
		log.Error("failed to free unique name after rebuild failure", "name", name, "error", err)
	}
}

// populateIndex picks the buffered or block-merge strategy per §4.5. Hash
// indexes always live in a private in-memory store regardless of the
// table's own persistence, so only a Secondary index on a persistent store
// earns the block-merge treatment.
func (t *Table) populateIndex(s *session.Session, idx index.Index, kind index.Kind, key string) error {
	if t.store.IsPersistent() && kind == index.Secondary {
		return t.buildBlockMerge(s, idx, key)
	}
	return t.buildBuffered(s, idx, key)
}

// buildBuffered is the in-memory strategy (§4.5): read every row through
// the scan index into RAM, sort by the new index's own comparator, then
// insert in order.
func (t *Table) buildBuffered(s *session.Session, idx index.Index, key string) error {
	total, _ := t.primary.RowCount(s)

	cur, err := t.primary.Find(s, nil, nil)
	if err != nil {
		return err
	}
	var rows []*row.Row
	for {
		ok, err := cur.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		rows = append(rows, cur.Row())
	}

	sort.Slice(rows, func(i, j int) bool { return idx.CompareRows(rows[i], rows[j]) < 0 })

	for i, r := range rows {
		if err := idx.Add(s, r); err != nil {
			return err
		}
		if t.progress != nil {
			t.progress(key, int64(i+1), total)
		}
	}
	return nil
}

// buildBlockMerge is the disk-backed strategy (§4.5): fill bounded in-RAM
// blocks while scanning, sort and flush each block to its own temporary
// map concurrently (bounded by an errgroup limit) while the scan fills the
// next block, then merge the sorted blocks into the target index with a
// k-way merge once every block has landed.
func (t *Table) buildBlockMerge(s *session.Session, idx index.Index, key string) error {
	blockSize := t.settings.MaxMemoryRows / 2
	if blockSize <= 0 {
		blockSize = 1
	}

	total, _ := t.primary.RowCount(s)
	cur, err := t.primary.Find(s, nil, nil)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	var blockMaps []string
	g := &errgroup.Group{}
	g.SetLimit(4)

	flush := func(buf []*row.Row) error {
		sort.Slice(buf, func(i, j int) bool { return idx.CompareRows(buf[i], buf[j]) < 0 })
		name := t.store.NextTemporaryMapName()
		m, err := t.store.OpenMap(name, types.IntType, types.IntType)
		if err != nil {
			return err
		}
		tx := s.Transaction()
		for i, r := range buf {
			if err := m.Put(tx, types.NewIntField(int64(i)), row.NewRowField(r)); err != nil {
				return err
			}
		}
		mu.Lock()
		blockMaps = append(blockMaps, name)
		mu.Unlock()
		return nil
	}

	cleanup := func() {
		for _, name := range blockMaps {
			if err := t.store.RemoveMap(name); err != nil {
				logging.WithTable(t.name).Warn("failed to remove temporary block-merge map", "name", name, "error", err)
			}
		}
	}

	var buf []*row.Row
	var scanned int64
	for {
		ok, err := cur.Next()
		if err != nil {
			cleanup()
			return err
		}
		if !ok {
			break
		}
		buf = append(buf, cur.Row())
		scanned++
		if t.progress != nil {
			t.progress(key, scanned, total)
		}
		if int64(len(buf)) >= blockSize {
			block := buf
			buf = nil
			g.Go(func() error { return flush(block) })
		}
	}
	if len(buf) > 0 {
		block := buf
		g.Go(func() error { return flush(block) })
	}
	if err := g.Wait(); err != nil {
		cleanup()
		return err
	}

	if err := t.mergeBlocks(s, idx, blockMaps, key, total); err != nil {
		cleanup()
		return err
	}
	cleanup()
	return nil
}

// mergeBlocks performs the k-way merge of every sorted block into idx,
// running after every block-flush goroutine has completed (§4.5: "the final
// multi-way merge step runs after every block has been flushed"). Unique
// violations and other index-level errors surface here.
func (t *Table) mergeBlocks(s *session.Session, idx index.Index, blockMaps []string, key string, total int64) error {
	cursors := make([]kvstore.Cursor, len(blockMaps))
	heads := make([]*row.Row, len(blockMaps))

	for i, name := range blockMaps {
		m, err := t.store.OpenMap(name, types.IntType, types.IntType)
		if err != nil {
			return err
		}
		c, err := m.Scan(nil, nil)
		if err != nil {
			return err
		}
		cursors[i] = c
		if c.Next() {
			heads[i] = c.Value().(*row.RowField).Row
		}
	}

	var merged int64
	for {
		minIdx := -1
		for i, h := range heads {
			if h == nil {
				continue
			}
			if minIdx == -1 || idx.CompareRows(h, heads[minIdx]) < 0 {
				minIdx = i
			}
		}
		if minIdx == -1 {
			break
		}
		if err := idx.Add(s, heads[minIdx]); err != nil {
			return err
		}
		merged++
		if t.progress != nil {
			t.progress(key, merged, total)
		}
		if cursors[minIdx].Next() {
			heads[minIdx] = cursors[minIdx].Value().(*row.RowField).Row
		} else {
			heads[minIdx] = nil
		}
	}
	return nil
}
