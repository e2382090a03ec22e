// Package table composes the physical indexes, the lock manager, and the
// transactional mutator into the Table Facade (§4.7): the single object
// DDL/DML layers interact with for a table's full lifetime.
package table

import (
	"sync"
	"sync/atomic"

	"tablecore/pkg/catalog/schema"
	"tablecore/pkg/dberr"
	"tablecore/pkg/kvstore"
	"tablecore/pkg/kvstore/memstore"
	"tablecore/pkg/lockmgr"
	"tablecore/pkg/logging"
	"tablecore/pkg/primitives"
	"tablecore/pkg/row"
	"tablecore/pkg/session"
	"tablecore/pkg/storage/index"
	"tablecore/pkg/types"
)

// BuildProgressListener reports (current, total) row counters during an
// index rebuild, keyed on "tableName:indexName" (§4.5).
type BuildProgressListener func(key string, current, total int64)

// Table is the transactional table core's facade (§4.7): schema, physical
// indexes, lock state, and modification/analyze counters for one table.
type Table struct {
	id   primitives.TableID
	name string
	sch  *schema.Schema

	hidden, temporary, sessionLocal bool

	store     kvstore.Store
	hashStore kvstore.Store

	lockMgr  *lockmgr.Manager
	settings EngineSettings

	catalog         Catalog
	progress        BuildProgressListener
	analyzeCallback AnalyzeCallback

	mu      sync.RWMutex
	primary *index.PrimaryIndex
	indexes []index.Index

	nextIndexID atomic.Uint64
	nextRowID   atomic.Int64

	lastModificationID  atomic.Int64
	changesSinceAnalyze atomic.Int64
	nextAnalyze         atomic.Int64
}

// Config collects the dependencies and options needed to init a Table.
type Config struct {
	ID       primitives.TableID
	Name     string
	Schema   *schema.Schema
	Store    kvstore.Store
	// HashStore backs every hash index's in-memory map (§4.2), independent
	// of Store's own persistence. If nil, a private memstore.Store is used.
	HashStore kvstore.Store
	Catalog   Catalog
	Settings  EngineSettings
	SyncObj   *lockmgr.SyncObject

	Hidden, Temporary, SessionLocal bool

	Progress BuildProgressListener
	Analyze  AnalyzeCallback
}

// Init creates a table's primary index and wires its lock manager, per
// §4.7's init operation. The primary index is promoted to a delegate-ready
// main column when the schema's primary key is a single promotable integral
// ascending column and either no map exists yet under the target index id
// or that map is empty (§4.2's promotion gate).
func Init(cfg Config) (*Table, error) {
	t := &Table{
		id:        cfg.ID,
		name:      cfg.Name,
		sch:       cfg.Schema,
		store:     cfg.Store,
		hashStore: cfg.HashStore,
		catalog:   cfg.Catalog,
		settings:  cfg.Settings,
		hidden:    cfg.Hidden,
		temporary: cfg.Temporary,
		sessionLocal:    cfg.SessionLocal,
		progress:        cfg.Progress,
		analyzeCallback: cfg.Analyze,
		lockMgr:         lockmgr.NewManager(cfg.Name, cfg.SyncObj),
	}
	if t.hashStore == nil {
		t.hashStore = memstore.New()
	}
	t.nextAnalyze.Store(cfg.Settings.AnalyzeAuto)
	t.lockMgr.SetGCOnContention(cfg.Settings.LockMode == LockModeTableGC)

	if err := validateNullability(cfg.Schema); err != nil {
		return nil, err
	}

	primaryID := primitives.IndexID(t.nextIndexID.Add(1) - 1)
	preexisting := t.store.HasMap(primaryID.MapName())
	backing, err := t.store.OpenMap(primaryID.MapName(), types.IntType, types.IntType)
	if err != nil {
		return nil, dberr.Wrap(err, "init primary index", "table")
	}

	mainColumn := primitives.InvalidColumnID
	if pkCol := cfg.Schema.GetColumnMetadataByIndex(cfg.Schema.PrimaryKeyIndex); pkCol != nil && pkCol.IsPromotable() {
		if !preexisting || backing.Size() == 0 {
			mainColumn = pkCol.Position
		}
	}
	t.primary = index.NewPrimaryIndex(primaryID, backing, mainColumn)
	t.indexes = []index.Index{t.primary}

	if mainColumn != primitives.InvalidColumnID {
		delegateID := primitives.IndexID(t.nextIndexID.Add(1) - 1)
		t.indexes = append(t.indexes, index.NewDelegateIndex(delegateID, t.primary))
	}

	return t, nil
}

// validateNullability enforces §7: a primary-key column must not be
// nullable at index creation.
func validateNullability(sch *schema.Schema) error {
	for i := range sch.Columns {
		col := &sch.Columns[i]
		if col.IsPrimary && col.Nullable {
			return dberr.Newf(dberr.ColumnNotNullable, "init table", "primary key column %q is nullable", col.Name)
		}
	}
	return nil
}

func (t *Table) ID() primitives.TableID { return t.id }
func (t *Table) Name() string           { return t.name }
func (t *Table) Schema() *schema.Schema { return t.sch }

// Lock implements §4.3 point 1's fast paths before delegating to the lock
// manager's acquire protocol. force=true bypasses the MVCC fast path
// (explicit FOR UPDATE).
func (t *Table) Lock(s *session.Session, exclusive, force bool) error {
	if t.settings.MVCC && !force {
		if !exclusive {
			return nil
		}
		exclusive = false
	}
	if !exclusive && !t.settings.MultiThreaded && !t.settings.MVCC && t.settings.Isolation == ReadCommitted {
		return nil
	}
	return t.lockMgr.Lock(s.Session, exclusive)
}

// Unlock releases s's hold on the table, if any.
func (t *Table) Unlock(s *session.Session) {
	t.lockMgr.Unlock(s.Session)
}

// LockManager exposes the table's lock manager for operator tooling
// (cmd/tablectl) to inspect state, waiters, and deadlock history without
// the table core itself depending on any presentation layer.
func (t *Table) LockManager() *lockmgr.Manager { return t.lockMgr }

// GetIndexes returns a snapshot of every index currently attached to the
// table, primary first.
func (t *Table) GetIndexes() []index.Index {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]index.Index, len(t.indexes))
	copy(out, t.indexes)
	return out
}

// GetScanIndex returns the index best suited to a full or range scan: the
// primary index, since every physical index variant ultimately resolves
// rows through it.
func (t *Table) GetScanIndex() index.Index {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.primary
}

// GetUniqueIndex returns the first unique-enforcing index (primary, hash
// unique, or delegate) attached to the table, or nil.
func (t *Table) GetUniqueIndex() index.Index {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, idx := range t.indexes {
		switch idx.Kind() {
		case index.Primary, index.Delegate, index.HashUnique:
			return idx
		}
	}
	return nil
}

// GetRow looks up a row by its internal row-id through the primary index.
func (t *Table) GetRow(s *session.Session, id primitives.RowID) (*row.Row, error) {
	return t.primary.FetchRow(s, id)
}

func (t *Table) GetRowCount(s *session.Session) (int64, error) {
	return t.primary.RowCount(s)
}

func (t *Table) GetRowCountApproximation() int64 {
	return t.primary.RowCountApproximation()
}

func (t *Table) GetMaxDataModificationID() int64 {
	return t.lastModificationID.Load()
}

// CanTruncate reports false iff any referential constraint points to this
// table (§4.7).
func (t *Table) CanTruncate() bool {
	return len(t.catalog.ReferencingTables(t.id)) == 0
}

// CanDrop follows the same referential-integrity rule as CanTruncate:
// dropping a table out from under a live foreign key would orphan it.
func (t *Table) CanDrop() bool {
	return len(t.catalog.ReferencingTables(t.id)) == 0
}

// RemoveChildrenAndResources drops every schema-visible index before the
// primary, then the table's own catalog entry (§5's cleanup ordering:
// "schema-visible secondaries first ... primary last").
func (t *Table) RemoveChildrenAndResources(s *session.Session) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	log := logging.WithTable(t.name)

	for i := len(t.indexes) - 1; i >= 0; i-- {
		idx := t.indexes[i]
		if idx.Kind() == index.Primary {
			continue
		}
		if err := t.removeIndexLocked(idx); err != nil {
			log.Error("failed to remove index while dropping table", "index", idx.MapName(), "error", err)
			return err
		}
	}

	if err := t.removeIndexLocked(t.primary); err != nil {
		return err
	}
	if err := t.catalog.RemoveTableMeta(t.id); err != nil {
		log.Warn("failed to remove table's own catalog entry", "error", err)
	}
	return nil
}

func (t *Table) removeIndexLocked(idx index.Index) error {
	name := idx.MapName()
	store := t.store
	if idx.Kind() == index.HashUnique || idx.Kind() == index.HashNonUnique {
		store = t.hashStoreOrDefault()
	}
	if idx.Kind() == index.Delegate {
		// zero storage; nothing to remove from the map store.
	} else if err := store.RemoveMap(name); err != nil {
		return dberr.Wrap(err, "remove index map", "table")
	}
	if err := t.catalog.RemoveSchemaObject(t.id, idx.ID()); err != nil {
		logging.WithTable(t.name).Warn("failed to remove schema object for index", "index", idx.ID(), "error", err)
	}
	if err := t.catalog.FreeUniqueName(name); err != nil {
		logging.WithTable(t.name).Warn("failed to free unique name for index", "name", name, "error", err)
	}

	for i, existing := range t.indexes {
		if existing == idx {
			t.indexes = append(t.indexes[:i], t.indexes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (t *Table) hashStoreOrDefault() kvstore.Store {
	if t.hashStore != nil {
		return t.hashStore
	}
	return t.store
}

// Commit is a no-op pass-through: the table never owns the session's
// transaction (§3 Ownership), so there is nothing for the table itself to
// commit beyond what the Transactional Mutator already did per statement.
func (t *Table) Commit(s *session.Session) error {
	return nil
}
