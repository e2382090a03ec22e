package schema

import (
	"fmt"

	"tablecore/pkg/primitives"
	"tablecore/pkg/types"
)

// SortOrder is the per-column sort direction used when composing a
// secondary index's composite key order (§4.2).
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

func (s SortOrder) String() string {
	if s == Descending {
		return "DESC"
	}
	return "ASC"
}

// ColumnMetadata describes one column of a table: its name, type, position,
// and the constraints an index build or row mutation must honor.
type ColumnMetadata struct {
	Name      string
	FieldType types.Type
	Position  primitives.ColumnID
	TableID   primitives.TableID
	IsPrimary bool
	Nullable  bool
	Sort      SortOrder
}

// NewColumnMetadata validates and constructs a ColumnMetadata.
func NewColumnMetadata(name string, fieldType types.Type, position primitives.ColumnID, tableID primitives.TableID, isPrimary, nullable bool) (*ColumnMetadata, error) {
	if name == "" {
		return nil, fmt.Errorf("column name cannot be empty")
	}
	if !types.IsValidType(fieldType) {
		return nil, fmt.Errorf("unknown field type for column %q", name)
	}
	if position < 0 {
		return nil, fmt.Errorf("column position must be non-negative, got %d for column %q", position, name)
	}
	if isPrimary && nullable {
		return nil, fmt.Errorf("primary key column %q cannot be nullable", name)
	}
	return &ColumnMetadata{
		Name:      name,
		FieldType: fieldType,
		Position:  position,
		TableID:   tableID,
		IsPrimary: isPrimary,
		Nullable:  nullable,
		Sort:      Ascending,
	}, nil
}

// IsPromotable reports whether this column, alone, is eligible to become
// the table's main index column (§4.2): an integral, ascending primary key.
func (c *ColumnMetadata) IsPromotable() bool {
	return c.IsPrimary && c.Sort == Ascending && types.IsIntegral(c.FieldType)
}
