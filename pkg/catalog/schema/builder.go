package schema

import (
	"fmt"

	"tablecore/pkg/primitives"
	"tablecore/pkg/types"
)

// ColumnDef defines a column for schema building, before it is assigned a
// Position.
type ColumnDef struct {
	Name      string
	Type      types.Type
	IsPrimary bool
	Nullable  bool
	Sort      SortOrder
}

// SchemaBuilder assembles a Schema from a sequence of ColumnDefs with less
// boilerplate than constructing ColumnMetadata by hand.
type SchemaBuilder struct {
	tableID   primitives.TableID
	tableName string
	columns   []ColumnDef
}

// NewSchemaBuilder starts a builder for the given table.
func NewSchemaBuilder(tableID primitives.TableID, tableName string) *SchemaBuilder {
	return &SchemaBuilder{
		tableID:   tableID,
		tableName: tableName,
		columns:   make([]ColumnDef, 0),
	}
}

// AddColumn adds a regular, nullable column.
func (sb *SchemaBuilder) AddColumn(name string, fieldType types.Type) *SchemaBuilder {
	sb.columns = append(sb.columns, ColumnDef{Name: name, Type: fieldType, Nullable: true})
	return sb
}

// AddNotNullColumn adds a non-nullable column.
func (sb *SchemaBuilder) AddNotNullColumn(name string, fieldType types.Type) *SchemaBuilder {
	sb.columns = append(sb.columns, ColumnDef{Name: name, Type: fieldType})
	return sb
}

// AddPrimaryKey adds the table's primary key column.
func (sb *SchemaBuilder) AddPrimaryKey(name string, fieldType types.Type) *SchemaBuilder {
	sb.columns = append(sb.columns, ColumnDef{Name: name, Type: fieldType, IsPrimary: true})
	return sb
}

// AddDescending marks the most recently added column as sorted descending,
// for use as a secondary index key component (§4.2).
func (sb *SchemaBuilder) AddDescending() *SchemaBuilder {
	if n := len(sb.columns); n > 0 {
		sb.columns[n-1].Sort = Descending
	}
	return sb
}

// Build constructs the Schema.
func (sb *SchemaBuilder) Build() (*Schema, error) {
	columns := make([]ColumnMetadata, 0, len(sb.columns))

	for i, colDef := range sb.columns {
		col, err := NewColumnMetadata(
			colDef.Name,
			colDef.Type,
			primitives.ColumnID(i),
			sb.tableID,
			colDef.IsPrimary,
			colDef.Nullable,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create column metadata: %w", err)
		}
		col.Sort = colDef.Sort
		columns = append(columns, *col)
	}

	sch, err := NewSchema(sb.tableID, sb.tableName, columns)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return sch, nil
}

// BuildColumns is a convenience function for simple schema creation.
func BuildColumns(tableID primitives.TableID, tableName string, defs ...ColumnDef) (*Schema, error) {
	builder := NewSchemaBuilder(tableID, tableName)
	for _, def := range defs {
		switch {
		case def.IsPrimary:
			builder.AddPrimaryKey(def.Name, def.Type)
		case def.Nullable:
			builder.AddColumn(def.Name, def.Type)
		default:
			builder.AddNotNullColumn(def.Name, def.Type)
		}
		if def.Sort == Descending {
			builder.AddDescending()
		}
	}
	return builder.Build()
}
