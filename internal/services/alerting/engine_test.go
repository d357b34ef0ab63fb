package alerting

import (
	"context"
	"testing"
	"time"

	"StressWatch/internal/domain/models"
	"StressWatch/internal/service/cache"
	"StressWatch/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordCycle(float64)           {}
func (nopMetrics) RecordObservation(string)      {}
func (nopMetrics) RecordNoData(string)           {}
func (nopMetrics) RecordScore(string, float64)   {}
func (nopMetrics) RecordAlert(bool)              {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordLatency(string, float64) {}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(DefaultConfig(), cache.NewMemory(), nopMetrics{}, logger.NewNop())
}

func snapshot(ts time.Time, states map[string]models.State) models.CycleSnapshot {
	results := make(map[string]models.CycleResult, len(states))
	for code, st := range states {
		results[code] = models.CycleResult{State: st, Score: 80, HasData: true}
	}
	return models.CycleSnapshot{Timestamp: ts, Results: results}
}

func TestEngineBelowThreshold(t *testing.T) {
	e := newTestEngine(t)
	snap := snapshot(time.Now(), map[string]models.State{
		"HY_OAS": models.StateStress,
		"VIX":    models.StateCaution,
		"CPI":    models.StateStable,
	})
	a, err := e.Evaluate(context.Background(), snap)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if a != nil {
		t.Fatalf("alert fired with one STRESS indicator: %+v", a)
	}
}

func TestEngineFiresAtThreshold(t *testing.T) {
	e := newTestEngine(t)
	snap := snapshot(time.Now(), map[string]models.State{
		"HY_OAS": models.StateStress,
		"VIX":    models.StateStress,
		"CPI":    models.StateStable,
	})
	a, err := e.Evaluate(context.Background(), snap)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if a == nil {
		t.Fatal("no alert with two STRESS indicators")
	}
	if a.Type != models.AlertTypeStressThreshold {
		t.Fatalf("type = %q", a.Type)
	}
	if len(a.AffectedIndicators) != 2 || a.AffectedIndicators[0] != "HY_OAS" || a.AffectedIndicators[1] != "VIX" {
		t.Fatalf("affected = %v, want sorted [HY_OAS VIX]", a.AffectedIndicators)
	}
	if a.ID == "" || a.DedupKey == "" {
		t.Fatalf("missing id or dedup key: %+v", a)
	}
}

func TestEngineDeduplicatesWithinWindow(t *testing.T) {
	e := newTestEngine(t)
	ts := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	states := map[string]models.State{
		"HY_OAS": models.StateStress,
		"VIX":    models.StateStress,
	}

	first, err := e.Evaluate(context.Background(), snapshot(ts, states))
	if err != nil || first == nil {
		t.Fatalf("first Evaluate = (%v, %v), want alert", first, err)
	}
	// Same condition two hours later, same 24h bucket.
	dup, err := e.Evaluate(context.Background(), snapshot(ts.Add(2*time.Hour), states))
	if err != nil {
		t.Fatalf("second Evaluate: %v", err)
	}
	if dup != nil {
		t.Fatalf("duplicate alert within dedup window: %+v", dup)
	}
}

func TestEngineNewIndicatorSetIsNewCondition(t *testing.T) {
	e := newTestEngine(t)
	ts := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	a1, _ := e.Evaluate(context.Background(), snapshot(ts, map[string]models.State{
		"HY_OAS": models.StateStress,
		"VIX":    models.StateStress,
	}))
	a2, _ := e.Evaluate(context.Background(), snapshot(ts.Add(time.Hour), map[string]models.State{
		"HY_OAS": models.StateStress,
		"VIX":    models.StateStress,
		"TED":    models.StateStress,
	}))
	if a1 == nil || a2 == nil {
		t.Fatal("growing affected set must alert again")
	}
	if a1.DedupKey == a2.DedupKey {
		t.Fatalf("distinct conditions share dedup key %q", a1.DedupKey)
	}
}

func TestEngineIgnoresIndicatorsWithoutData(t *testing.T) {
	e := newTestEngine(t)
	snap := models.CycleSnapshot{
		Timestamp: time.Now(),
		Results: map[string]models.CycleResult{
			"HY_OAS": {State: models.StateStress, Score: 90, HasData: true},
			"VIX":    {State: models.StateStress, Score: 85, HasData: false},
		},
	}
	a, err := e.Evaluate(context.Background(), snap)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if a != nil {
		t.Fatal("indicator without data counted toward threshold")
	}
}

func TestEngineDedupKeyOrderInsensitive(t *testing.T) {
	e := newTestEngine(t)
	ts := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	k1 := e.dedupKey([]string{"A", "B"}, ts)
	k2 := e.dedupKey([]string{"A", "B"}, ts.Add(3*time.Hour))
	if k1 != k2 {
		t.Fatalf("same condition in same bucket got different keys: %q vs %q", k1, k2)
	}
	k3 := e.dedupKey([]string{"A", "B"}, ts.Add(25*time.Hour))
	if k1 == k3 {
		t.Fatal("next bucket reused the same key")
	}
}
