package table

// IsolationLevel identifies the isolation mode the engine runs a table
// under (§4.3's read-committed fast path).
type IsolationLevel int

const (
	ReadCommitted IsolationLevel = iota
	Serializable
)

// LockMode selects how a table's lock manager behaves while a session waits
// on contention (§4.10).
type LockMode int

const (
	// LockModeNormal is the ordinary FIFO wait/deadlock-detection loop.
	LockModeNormal LockMode = iota

	// LockModeTableGC additionally forces a bounded number of garbage
	// collections while waiting on an exclusive lock. Carried from the
	// original's JVM target, where long exclusive waits were sometimes
	// actually a finalizer holding a reference open; on Go's collector this
	// almost never applies. Discouraged: it adds GC pressure to every
	// contended writer and is off by default.
	LockModeTableGC
)

// EngineSettings are the wider engine's concurrency and maintenance knobs a
// table consults; they are not owned by the table and are supplied at
// construction (§3: the table is one component of a larger engine).
type EngineSettings struct {
	// MVCC enables the multi-version fast path (§4.3 point 1): write
	// operations take shared locks instead of exclusive, read operations
	// take none unless Table.Lock is called with force=true.
	MVCC bool

	// MultiThreaded selects per-table sync objects when true, a single
	// shared database-wide sync object when false (§4.3 "sync-object
	// choice").
	MultiThreaded bool

	Isolation IsolationLevel

	// MaxMemoryRows, halved, is the block-merge index-build strategy's
	// per-block buffer size (§4.5). The buffered strategy reads every row
	// into memory and does not consult it.
	MaxMemoryRows int64

	// AnalyzeAuto seeds nextAnalyze for newly created tables (§4.6).
	AnalyzeAuto int64

	// AnalyzeSample is divided by 10 to size the statistics sample taken on
	// each analyze run (§4.6).
	AnalyzeSample int64

	// LockMode selects the lock manager's contention behavior (§4.10).
	LockMode LockMode
}

// DefaultEngineSettings returns reasonable defaults for tests and small
// deployments.
func DefaultEngineSettings() EngineSettings {
	return EngineSettings{
		MVCC:          false,
		MultiThreaded: true,
		Isolation:     ReadCommitted,
		MaxMemoryRows: 100_000,
		AnalyzeAuto:   2000,
		AnalyzeSample: 10_000,
	}
}
