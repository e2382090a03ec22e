package table

import (
	"testing"

	"tablecore/pkg/types"
)

func TestAnalyzeFiresAndDoublesCadenceAfterThreshold(t *testing.T) {
	tbl, _ := newTestTable(t, true)
	tbl.settings.AnalyzeAuto = 2
	tbl.nextAnalyze.Store(2)

	var fired int
	var lastSample int64
	tbl.analyzeCallback = func(_ *Table, sampleRows int64) {
		fired++
		lastSample = sampleRows
	}
	tbl.settings.AnalyzeSample = 100

	s := newTestSession()
	for i := 0; i < 4; i++ {
		if _, err := tbl.AddRow(s, []types.Field{types.NewIntField(int64(i)), types.NewStringField("x")}); err != nil {
			t.Fatalf("AddRow[%d]: %v", i, err)
		}
	}

	if fired != 1 {
		t.Fatalf("analyze callback fired %d times, want 1 (3rd row crosses threshold of 2)", fired)
	}
	if lastSample != 10 {
		t.Errorf("sampleRows passed to callback = %d, want AnalyzeSample/10 = 10", lastSample)
	}
	if got := tbl.nextAnalyze.Load(); got != 4 {
		t.Errorf("nextAnalyze after firing = %d, want doubled to 4", got)
	}
	if tbl.changesSinceAnalyze.Load() != 1 {
		t.Errorf("changesSinceAnalyze after firing = %d, want 1 (reset then one more row added)", tbl.changesSinceAnalyze.Load())
	}
}

func TestAnalyzeDisabledWhenNextAnalyzeIsZero(t *testing.T) {
	tbl, _ := newTestTable(t, true)
	tbl.nextAnalyze.Store(0)

	fired := false
	tbl.analyzeCallback = func(*Table, int64) { fired = true }

	s := newTestSession()
	for i := 0; i < 10; i++ {
		if _, err := tbl.AddRow(s, []types.Field{types.NewIntField(int64(i)), types.NewStringField("x")}); err != nil {
			t.Fatalf("AddRow[%d]: %v", i, err)
		}
	}
	if fired {
		t.Fatal("analyze callback should never fire when nextAnalyze <= 0")
	}
}
