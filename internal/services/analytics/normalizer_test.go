package analytics

import (
	"errors"
	"math"
	"testing"
	"time"

	"StressWatch/internal/domain/models"
)

func testDef(code string, direction int) models.IndicatorDefinition {
	return models.IndicatorDefinition{
		Code:       code,
		Direction:  direction,
		WindowSize: 252,
		GreenMax:   30,
		YellowMax:  60,
		Transform:  models.TransformIdentity,
		EMAPeriod:  50,
	}
}

func obsAt(code string, i int, v float64) models.RawObservation {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return models.RawObservation{IndicatorCode: code, Timestamp: base.AddDate(0, 0, i), Value: v}
}

func TestNormalizerInsufficientData(t *testing.T) {
	n := NewNormalizer(testDef("HY_OAS", 1))
	if _, err := n.Push(obsAt("HY_OAS", 0, 4.2)); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("first push err = %v, want ErrInsufficientData", err)
	}
	if _, err := n.Push(obsAt("HY_OAS", 1, 4.3)); err != nil {
		t.Fatalf("second push err = %v, want nil", err)
	}
}

func TestNormalizerConstantSeriesScoresFifty(t *testing.T) {
	n := NewNormalizer(testDef("VIX", 1))
	c := NewClassifier(DefaultScoreScale)
	var last ScoreOutcome
	for i := 0; i < 100; i++ {
		out, err := n.Push(obsAt("VIX", i, 20.0))
		if i == 0 {
			continue
		}
		if err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
		last = out
	}
	if last.StandardScore != 0 {
		t.Fatalf("constant series z = %v, want 0", last.StandardScore)
	}
	score, state := c.Classify(last.NormalizedValue, 30, 60)
	if score != 50 || state != models.StateCaution {
		t.Fatalf("constant series score/state = %v/%s, want 50/CAUTION", score, state)
	}
}

// A spike after a long flat stretch must register as extreme stress for a
// direction +1 indicator.
func TestNormalizerSpikeAfterFlatHistory(t *testing.T) {
	n := NewNormalizer(testDef("HY_OAS", 1))
	c := NewClassifier(DefaultScoreScale)
	batch := make([]models.RawObservation, 0, 252)
	for i := 0; i < 251; i++ {
		batch = append(batch, obsAt("HY_OAS", i, 10.0))
	}
	batch = append(batch, obsAt("HY_OAS", 251, 12.0))
	outs, err := n.PushBatch(batch)
	if err != nil {
		t.Fatalf("PushBatch: %v", err)
	}
	last := outs[len(outs)-1]
	if last.StandardScore <= 0 {
		t.Fatalf("spike z = %v, want > 0", last.StandardScore)
	}
	score, state := c.Classify(last.NormalizedValue, 30, 60)
	if score <= 60 {
		t.Fatalf("spike score = %v, want > 60", score)
	}
	if state != models.StateStress {
		t.Fatalf("spike state = %s, want STRESS", state)
	}
}

// The same raw history must score mirrored around 50 for opposite
// directions.
func TestNormalizerDirectionSymmetry(t *testing.T) {
	up := NewNormalizer(testDef("A", 1))
	down := NewNormalizer(testDef("B", -1))
	c := NewClassifier(DefaultScoreScale)

	series := []float64{3, 5, 4, 6, 2, 7, 5, 4, 8, 3, 6, 9}
	var lastUp, lastDown ScoreOutcome
	for i, v := range series {
		ou, errU := up.Push(obsAt("A", i, v))
		od, errD := down.Push(obsAt("B", i, v))
		if errU != nil || errD != nil {
			continue
		}
		lastUp, lastDown = ou, od
	}
	if lastUp.NormalizedValue != -lastDown.NormalizedValue {
		t.Fatalf("normalized values not mirrored: %v vs %v", lastUp.NormalizedValue, lastDown.NormalizedValue)
	}
	su := c.Score(lastUp.NormalizedValue)
	sd := c.Score(lastDown.NormalizedValue)
	if math.Abs((su+sd)-100) > 1e-9 {
		t.Fatalf("scores %v + %v != 100", su, sd)
	}
}

func TestNormalizerRejectsNonFiniteAndKeepsWindow(t *testing.T) {
	n := NewNormalizer(testDef("SPREAD", 1))
	if _, err := n.PushBatch([]models.RawObservation{obsAt("SPREAD", 0, 1), obsAt("SPREAD", 1, 2)}); err != nil {
		t.Fatalf("seed batch: %v", err)
	}
	lenBefore := n.WindowLen()

	bad := []models.RawObservation{
		obsAt("SPREAD", 2, 3),
		obsAt("SPREAD", 3, math.NaN()),
		obsAt("SPREAD", 4, 5),
	}
	_, err := n.PushBatch(bad)
	var pf *models.PartialIngestionFailure
	if !errors.As(err, &pf) {
		t.Fatalf("err = %v, want PartialIngestionFailure", err)
	}
	if pf.IndicatorCode != "SPREAD" {
		t.Fatalf("failure code = %q, want SPREAD", pf.IndicatorCode)
	}
	if n.WindowLen() != lenBefore {
		t.Fatalf("window changed after rejected batch: %d -> %d", lenBefore, n.WindowLen())
	}
	// The valid prefix of the rejected batch must not have been committed.
	if _, err := n.Push(obsAt("SPREAD", 2, 3)); err != nil {
		t.Fatalf("re-push after rejection: %v", err)
	}
}

func TestNormalizerRejectsStaleTimestamp(t *testing.T) {
	n := NewNormalizer(testDef("CPI", 1))
	if _, err := n.PushBatch([]models.RawObservation{obsAt("CPI", 0, 1), obsAt("CPI", 5, 2)}); err != nil {
		t.Fatalf("seed batch: %v", err)
	}
	_, err := n.Push(obsAt("CPI", 5, 3))
	var pf *models.PartialIngestionFailure
	if !errors.As(err, &pf) {
		t.Fatalf("duplicate timestamp err = %v, want PartialIngestionFailure", err)
	}
}

// Rate-of-change consumes its first observation as a seed, so the window
// only ever holds real deltas.
func TestNormalizerRateOfChangeSeeding(t *testing.T) {
	def := testDef("M2", 1)
	def.Transform = models.TransformRateOfChange
	n := NewNormalizer(def)

	batch := []models.RawObservation{
		obsAt("M2", 0, 100),
		obsAt("M2", 1, 101),
		obsAt("M2", 2, 103),
	}
	outs, err := n.PushBatch(batch)
	if err != nil {
		t.Fatalf("PushBatch: %v", err)
	}
	if n.WindowLen() != 2 {
		t.Fatalf("window len = %d, want 2 deltas for 3 raw points", n.WindowLen())
	}
	if len(outs) != 1 {
		t.Fatalf("outcomes = %d, want 1 (second delta is the first scoreable point)", len(outs))
	}
	if outs[0].TransformedValue != 2 {
		t.Fatalf("last delta = %v, want 2", outs[0].TransformedValue)
	}
}

// The EMA gap transform seeds its EMA from the first observation and emits
// nothing for it.
func TestNormalizerEMAGapSeeding(t *testing.T) {
	def := testDef("SPX", -1)
	def.Transform = models.TransformEMAGap
	def.EMAPeriod = 10
	n := NewNormalizer(def)

	if _, err := n.Push(obsAt("SPX", 0, 4000)); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("seed push err = %v, want ErrInsufficientData", err)
	}
	if n.WindowLen() != 0 {
		t.Fatalf("window len after seed = %d, want 0", n.WindowLen())
	}
	n.Push(obsAt("SPX", 1, 4100))
	if n.WindowLen() != 1 {
		t.Fatalf("window len = %d, want 1", n.WindowLen())
	}
}

func TestNormalizerEmptyBatchIsNoOp(t *testing.T) {
	n := NewNormalizer(testDef("X", 1))
	outs, err := n.PushBatch(nil)
	if err != nil || outs != nil {
		t.Fatalf("empty batch = (%v, %v), want (nil, nil)", outs, err)
	}
}
