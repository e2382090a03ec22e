package primitives

import "fmt"

// RowID is the internal identifier the primary index assigns to each row
// (§ GLOSSARY). It is signed so callers can reserve negative values for
// sentinel/system rows without colliding with the positive allocation range.
type RowID int64

// InvalidRowID marks an unset row-id.
const InvalidRowID RowID = -1

func (r RowID) IsValid() bool { return r != InvalidRowID }

func (r RowID) String() string { return fmt.Sprintf("row#%d", int64(r)) }

// TableID identifies a table for the lifetime of the process.
type TableID uint64

func (t TableID) String() string { return fmt.Sprintf("table#%d", uint64(t)) }

// IndexID identifies an index; it also names the index's backing map as
// "index.<id>" (§6).
type IndexID uint64

func (i IndexID) String() string { return fmt.Sprintf("index#%d", uint64(i)) }

func (i IndexID) MapName() string { return fmt.Sprintf("index.%d", uint64(i)) }

// ColumnID identifies a column's position within a table's column list.
type ColumnID int

const InvalidColumnID ColumnID = -1

// SessionID identifies a session for the lifetime of its connection.
type SessionID uint64

func (s SessionID) String() string { return fmt.Sprintf("session#%d", uint64(s)) }
