package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tablecore/pkg/catalog/schema"
	"tablecore/pkg/kvstore/memstore"
	"tablecore/pkg/monitor"
	"tablecore/pkg/primitives"
	"tablecore/pkg/session"
	"tablecore/pkg/table"
	"tablecore/pkg/txn/localtxn"
	"tablecore/pkg/types"
)

// noopCatalog satisfies table.Catalog with no referential constraints and
// no-op schema bookkeeping, enough for a standalone monitor demo.
type noopCatalog struct{}

func (noopCatalog) ReferencingTables(primitives.TableID) []primitives.TableID { return nil }
func (noopCatalog) AddSchemaObject(primitives.TableID, primitives.IndexID, string) error {
	return nil
}
func (noopCatalog) RemoveSchemaObject(primitives.TableID, primitives.IndexID) error { return nil }
func (noopCatalog) FreeUniqueName(string) error                                    { return nil }
func (noopCatalog) RemoveTableMeta(primitives.TableID) error                       { return nil }

func newDemoTable(id primitives.TableID, name string) (*table.Table, error) {
	col, err := schema.NewColumnMetadata("id", types.IntType, 0, id, true, false)
	if err != nil {
		return nil, err
	}
	sch, err := schema.NewSchema(id, name, []schema.ColumnMetadata{*col})
	if err != nil {
		return nil, err
	}
	return table.Init(table.Config{
		ID:       id,
		Name:     name,
		Schema:   sch,
		Store:    memstore.New(),
		Catalog:  noopCatalog{},
		Settings: table.DefaultEngineSettings(),
	})
}

// simulateContention holds two tables in a cross-locking pattern long
// enough for the lock manager's deadlock detector to fire, then releases
// them, repeating forever so the monitor always has something to show.
func simulateContention(reg *monitor.Registry, a, b *table.Table) {
	for {
		sessA := session.New(primitives.SessionID(1), 2*time.Second)
		sessA.SetTransaction(localtxn.New())
		sessB := session.New(primitives.SessionID(2), 2*time.Second)
		sessB.SetTransaction(localtxn.New())

		done := make(chan struct{}, 2)
		go func() {
			defer func() { done <- struct{}{} }()
			if err := a.Lock(sessA, true, true); err != nil {
				return
			}
			time.Sleep(300 * time.Millisecond)
			_ = b.Lock(sessA, true, true)
			a.Unlock(sessA)
			b.Unlock(sessA)
		}()
		go func() {
			defer func() { done <- struct{}{} }()
			if err := b.Lock(sessB, true, true); err != nil {
				return
			}
			time.Sleep(300 * time.Millisecond)
			_ = a.Lock(sessB, true, true)
			b.Unlock(sessB)
			a.Unlock(sessB)
		}()

		<-done
		<-done
		time.Sleep(2 * time.Second)
	}
}

func runDemo() error {
	accounts, err := newDemoTable(1, "accounts")
	if err != nil {
		return err
	}
	orders, err := newDemoTable(2, "orders")
	if err != nil {
		return err
	}

	reg := monitor.NewRegistry()
	reg.Register(accounts)
	reg.Register(orders)

	go simulateContention(reg, accounts, orders)

	p := tea.NewProgram(newModel(reg), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
