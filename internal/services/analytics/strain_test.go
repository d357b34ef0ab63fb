package analytics

import (
	"math"
	"testing"
	"time"

	"StressWatch/internal/domain/models"
)

func TestStrainAlignedTrendsScoreLow(t *testing.T) {
	s := NewStrainCalculator(DefaultStrainConfig())
	snap := s.Evaluate(time.Now(), 5.0, 4.8, 2.0)
	if snap.StrainLevel != models.StrainLow {
		t.Fatalf("level = %s, want LOW (divergence %v, outperformance %v)",
			snap.StrainLevel, snap.Divergence, snap.Outperformance)
	}
	if snap.ConfirmationState != models.ConfirmBull {
		t.Fatalf("confirmation = %s, want BULL", snap.ConfirmationState)
	}
}

func TestStrainDivergenceEscalates(t *testing.T) {
	cases := []struct {
		primary, secondary, tertiary float64
		want                         models.StrainLevel
	}{
		{5, 4.8, 2, models.StrainLow},        // aligned, defensive lagging
		{5, -10, 2, models.StrainModerate},   // divergence 15 -> 30
		{5, -25, 2, models.StrainHigh},       // divergence 30 -> 60
		{-10, -12, 30, models.StrainCritical}, // risk-off with defensive bid
	}
	for _, tc := range cases {
		s := NewStrainCalculator(DefaultStrainConfig())
		snap := s.Evaluate(time.Now(), tc.primary, tc.secondary, tc.tertiary)
		if snap.StrainLevel != tc.want {
			t.Errorf("(%v,%v,%v): level = %s (score %v), want %s",
				tc.primary, tc.secondary, tc.tertiary, snap.StrainLevel, snap.StrainScore, tc.want)
		}
	}
}

func TestStrainDefensiveUnderperformanceIgnored(t *testing.T) {
	s := NewStrainCalculator(DefaultStrainConfig())
	snap := s.Evaluate(time.Now(), 5.0, 5.0, -20.0)
	if snap.Outperformance >= 0 {
		t.Fatalf("outperformance = %v, want negative", snap.Outperformance)
	}
	if snap.StrainScore != 0 {
		t.Fatalf("score = %v, want 0 when trends align and defensive lags", snap.StrainScore)
	}
}

func TestStrainConfirmationStates(t *testing.T) {
	cases := []struct {
		primary, secondary float64
		want               models.ConfirmationState
	}{
		{2, 3, models.ConfirmBull},
		{-2, -3, models.ConfirmBear},
		{2, -3, models.ConfirmMixed},
		{0, 3, models.ConfirmMixed},
	}
	for _, tc := range cases {
		if got := confirmationState(tc.primary, tc.secondary); got != tc.want {
			t.Errorf("confirmationState(%v, %v) = %s, want %s", tc.primary, tc.secondary, got, tc.want)
		}
	}
}

// Disagreeing trends dampen the direction reading by the alignment factor.
func TestStrainAlignmentFactor(t *testing.T) {
	// On the first evaluation the EMA equals the single reading, so the
	// factor is directly visible.
	agree := NewStrainCalculator(DefaultStrainConfig())
	a := agree.Evaluate(time.Now(), 4, 4, 0)
	if math.Abs(a.MarketDirection-4) > 1e-9 {
		t.Fatalf("aligned direction = %v, want 4", a.MarketDirection)
	}

	// Same base reading (10 + -2)/2 = 4, but disagreeing signs.
	mixed := NewStrainCalculator(DefaultStrainConfig())
	m := mixed.Evaluate(time.Now(), 10, -2, 0)
	if math.Abs(m.MarketDirection-4*0.90) > 1e-9 {
		t.Fatalf("mixed direction = %v, want %v", m.MarketDirection, 4*0.90)
	}
}

func TestStrainDirectionSmoothingAndStates(t *testing.T) {
	s := NewStrainCalculator(DefaultStrainConfig())
	ts := time.Now()
	var snap models.StrainSnapshot
	for i := 0; i < 20; i++ {
		snap = s.Evaluate(ts.Add(time.Duration(i)*time.Hour), 3.0, 3.0, 0)
	}
	if snap.DirectionState != models.DirectionUp {
		t.Fatalf("sustained uptrend direction = %s, want UP", snap.DirectionState)
	}
	if snap.SignalStrength != models.SignalStrong {
		t.Fatalf("sustained uptrend strength = %s, want STRONG", snap.SignalStrength)
	}

	flat := NewStrainCalculator(DefaultStrainConfig())
	fs := flat.Evaluate(ts, 0.1, 0.1, 0)
	if fs.DirectionState != models.DirectionNeutral || fs.SignalStrength != models.SignalWeak {
		t.Fatalf("flat market = %s/%s, want NEUTRAL/WEAK", fs.DirectionState, fs.SignalStrength)
	}
}

func TestStrainEvaluateSeries(t *testing.T) {
	cfg := DefaultStrainConfig()
	s := NewStrainCalculator(cfg)
	n := cfg.TrendLength + 1
	primary := make([]float64, n)
	secondary := make([]float64, n)
	tertiary := make([]float64, n)
	for i := 0; i < n; i++ {
		primary[i] = 100 + float64(i)   // +34% over the trend window
		secondary[i] = 200 + float64(i) // +17%
		tertiary[i] = 50
	}
	snap := s.EvaluateSeries(time.Now(), primary, secondary, tertiary)
	if math.Abs(snap.PrimaryROC-34) > 1e-9 {
		t.Fatalf("primary ROC = %v, want 34", snap.PrimaryROC)
	}
	if math.Abs(snap.SecondaryROC-17) > 1e-9 {
		t.Fatalf("secondary ROC = %v, want 17", snap.SecondaryROC)
	}
	if snap.TertiaryROC != 0 {
		t.Fatalf("tertiary ROC = %v, want 0", snap.TertiaryROC)
	}

	// Too-short series yield zero readings rather than panicking.
	short := s.EvaluateSeries(time.Now(), primary[:5], secondary[:5], tertiary[:5])
	if short.PrimaryROC != 0 || short.SecondaryROC != 0 {
		t.Fatalf("short series ROC = %v/%v, want 0/0", short.PrimaryROC, short.SecondaryROC)
	}
}
