package table

import "math"

// AnalyzeCallback samples statistics for the table; sampleRows is
// analyzeSample/10 (§4.6). Left nil by default, since statistics storage is
// outside this module's scope (§1 excludes the schema catalog).
type AnalyzeCallback func(t *Table, sampleRows int64)

// afterMutation bumps changesSinceAnalyze and, once it exceeds nextAnalyze,
// fires the analyze trigger and doubles the cadence (§4.6).
func (t *Table) afterMutation() {
	changes := t.changesSinceAnalyze.Add(1)
	next := t.nextAnalyze.Load()

	if next <= 0 || changes <= next {
		return
	}

	if t.analyzeCallback != nil {
		t.analyzeCallback(t, t.settings.AnalyzeSample/10)
	}
	t.changesSinceAnalyze.Store(0)

	doubled := next * 2
	if doubled > next && doubled <= math.MaxInt64 {
		t.nextAnalyze.Store(doubled)
	}
	// Overflow (doubled <= next, e.g. wrapped negative): leave nextAnalyze
	// unchanged, matching the original's silent no-op guard.
}
