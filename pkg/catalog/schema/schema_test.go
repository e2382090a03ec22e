package schema

import (
	"testing"

	"tablecore/pkg/types"
)

func TestBuildColumnsAndLookup(t *testing.T) {
	sch, err := BuildColumns(1, "accounts",
		ColumnDef{Name: "id", Type: types.IntType, IsPrimary: true},
		ColumnDef{Name: "balance", Type: types.IntType},
		ColumnDef{Name: "name", Type: types.StringType, Nullable: true},
	)
	if err != nil {
		t.Fatalf("BuildColumns: %v", err)
	}
	if sch.NumFields() != 3 {
		t.Fatalf("NumFields() = %d, want 3", sch.NumFields())
	}
	if sch.GetPrimaryKeyName() != "id" {
		t.Errorf("GetPrimaryKeyName() = %q, want id", sch.GetPrimaryKeyName())
	}
	if idx := sch.GetFieldIndex("balance"); idx != 1 {
		t.Errorf("GetFieldIndex(balance) = %d, want 1", idx)
	}
	if sch.GetFieldIndex("missing") != -1 {
		t.Errorf("GetFieldIndex(missing) should be -1")
	}
}

func TestNewSchemaRejectsDuplicatePrimaryKey(t *testing.T) {
	cols := []ColumnMetadata{
		{Name: "a", FieldType: types.IntType, Position: 0, IsPrimary: true},
		{Name: "b", FieldType: types.IntType, Position: 1, IsPrimary: true},
	}
	if _, err := NewSchema(1, "t", cols); err == nil {
		t.Fatal("expected error for two primary key columns")
	}
}

func TestNewSchemaRejectsDuplicateColumnName(t *testing.T) {
	cols := []ColumnMetadata{
		{Name: "a", FieldType: types.IntType, Position: 0},
		{Name: "a", FieldType: types.StringType, Position: 1},
	}
	if _, err := NewSchema(1, "t", cols); err == nil {
		t.Fatal("expected error for duplicate column name")
	}
}

func TestColumnIsPromotable(t *testing.T) {
	pk, err := NewColumnMetadata("id", types.IntType, 0, 1, true, false)
	if err != nil {
		t.Fatalf("NewColumnMetadata: %v", err)
	}
	if !pk.IsPromotable() {
		t.Error("ascending integral primary key should be promotable")
	}

	pk.Sort = Descending
	if pk.IsPromotable() {
		t.Error("descending primary key should not be promotable")
	}

	str, err := NewColumnMetadata("name", types.StringType, 1, 1, true, false)
	if err != nil {
		t.Fatalf("NewColumnMetadata: %v", err)
	}
	if str.IsPromotable() {
		t.Error("string primary key should not be promotable")
	}
}

func TestNewColumnMetadataRejectsNullablePrimaryKey(t *testing.T) {
	if _, err := NewColumnMetadata("id", types.IntType, 0, 1, true, true); err == nil {
		t.Fatal("expected error for nullable primary key")
	}
}
