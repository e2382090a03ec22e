package schema

import (
	"fmt"
	"slices"

	"tablecore/pkg/primitives"
	"tablecore/pkg/types"
)

// Schema is the immutable column layout of a table (§3 Data Model). Rows
// conforming to a Schema carry exactly len(Columns) fields, in Position order.
type Schema struct {
	TableID   primitives.TableID
	TableName string

	PrimaryKey      string
	PrimaryKeyIndex int

	Columns []ColumnMetadata

	fieldNameToIndex map[string]int
}

// NewSchema builds a Schema from column metadata, sorting columns by
// Position and indexing them by name.
func NewSchema(tableID primitives.TableID, tableName string, columns []ColumnMetadata) (*Schema, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("schema must have at least one column")
	}

	sortedCols := slices.Clone(columns)
	slices.SortFunc(sortedCols, func(a, b ColumnMetadata) int {
		return int(a.Position) - int(b.Position)
	})

	fieldNameToIndex := make(map[string]int, len(sortedCols))
	primaryKey := ""
	primaryKeyIndex := -1

	for i, col := range sortedCols {
		if _, dup := fieldNameToIndex[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		fieldNameToIndex[col.Name] = i
		if col.IsPrimary {
			if primaryKeyIndex != -1 {
				return nil, fmt.Errorf("schema %q declares more than one primary key column", tableName)
			}
			primaryKey = col.Name
			primaryKeyIndex = i
		}
	}

	return &Schema{
		TableID:          tableID,
		TableName:        tableName,
		PrimaryKey:       primaryKey,
		PrimaryKeyIndex:  primaryKeyIndex,
		Columns:          sortedCols,
		fieldNameToIndex: fieldNameToIndex,
	}, nil
}

// GetFieldIndex returns the field index for a given column name, or -1.
func (s *Schema) GetFieldIndex(fieldName string) int {
	if idx, ok := s.fieldNameToIndex[fieldName]; ok {
		return idx
	}
	return -1
}

// HasColumn reports whether the schema contains a column with the given name.
func (s *Schema) HasColumn(fieldName string) bool {
	_, ok := s.fieldNameToIndex[fieldName]
	return ok
}

// GetColumnMetadata returns the metadata for a column by name, or nil.
func (s *Schema) GetColumnMetadata(fieldName string) *ColumnMetadata {
	idx := s.GetFieldIndex(fieldName)
	if idx < 0 {
		return nil
	}
	return &s.Columns[idx]
}

// GetColumnMetadataByIndex returns the metadata for a column by position, or nil.
func (s *Schema) GetColumnMetadataByIndex(index int) *ColumnMetadata {
	if index < 0 || index >= len(s.Columns) {
		return nil
	}
	return &s.Columns[index]
}

// GetPrimaryKeyIndex returns the field index of the primary key column, or -1.
func (s *Schema) GetPrimaryKeyIndex() int { return s.PrimaryKeyIndex }

// GetPrimaryKeyName returns the name of the primary key column, or "".
func (s *Schema) GetPrimaryKeyName() string { return s.PrimaryKey }

// NumFields returns the number of columns in the schema.
func (s *Schema) NumFields() int { return len(s.Columns) }

// FieldNames returns all column names in position order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// FieldTypes returns all column types in position order.
func (s *Schema) FieldTypes() []types.Type {
	fieldTypes := make([]types.Type, len(s.Columns))
	for i, col := range s.Columns {
		fieldTypes[i] = col.FieldType
	}
	return fieldTypes
}
