package table

import "tablecore/pkg/primitives"

// Catalog is the read-only constraint view and the schema-lifecycle hooks
// the table core consumes from the external schema/constraint layer (§6).
// The table core never reads or writes the catalog's own storage; it only
// calls through this interface.
type Catalog interface {
	// ReferencingTables lists tables whose foreign keys point at tableID,
	// used by canTruncate/canDrop (§4.7: "canTruncate returns false iff any
	// referential constraint points to this table").
	ReferencingTables(tableID primitives.TableID) []primitives.TableID

	// AddSchemaObject registers a newly created index under name so it is
	// visible to the schema catalog.
	AddSchemaObject(tableID primitives.TableID, indexID primitives.IndexID, name string) error

	// RemoveSchemaObject unregisters an index, e.g. on DROP INDEX or table
	// drop.
	RemoveSchemaObject(tableID primitives.TableID, indexID primitives.IndexID) error

	// FreeUniqueName releases a schema-wide unique name, used when ADD
	// INDEX fails partway through (§4.5: "name released back to the
	// schema") and when a table or index is dropped.
	FreeUniqueName(name string) error

	// RemoveTableMeta removes the table's own catalog entry, the last step
	// of drop cleanup (§5: "... then the meta entry").
	RemoveTableMeta(tableID primitives.TableID) error
}
