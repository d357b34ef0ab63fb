package analytics

import (
	"math"
	"testing"
	"time"
)

func TestDefaultBondWeightsSumToOne(t *testing.T) {
	for _, withPremium := range []bool{true, false} {
		var sum float64
		for _, c := range DefaultBondWeights(withPremium) {
			sum += c.Weight
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("withPremium=%v: weights sum to %v, want 1.0", withPremium, sum)
		}
	}
}

func TestRateOfChangeSeriesLength(t *testing.T) {
	for _, n := range []int{2, 3, 10, 252} {
		series := make([]float64, n)
		for i := range series {
			series[i] = float64(i * i)
		}
		deltas := RateOfChangeSeries(series)
		if len(deltas) != n-1 {
			t.Fatalf("n=%d: got %d deltas, want %d", n, len(deltas), n-1)
		}
		// The first delta is a real one, not a synthetic zero.
		if deltas[0] != series[1]-series[0] {
			t.Fatalf("n=%d: first delta = %v, want %v", n, deltas[0], series[1]-series[0])
		}
	}
	if got := RateOfChangeSeries([]float64{5}); got != nil {
		t.Fatalf("single point series: got %v, want nil", got)
	}
}

// The rolling volatility width is min(target, points available) regardless
// of total series length: prefixes of a long series must produce identical
// readings.
func TestRollingStdDevWindowWidth(t *testing.T) {
	long := make([]float64, 1000)
	for i := range long {
		long[i] = math.Sin(float64(i) * 0.7)
	}
	full := RollingStdDev(long, 20)
	if len(full) != 1000 {
		t.Fatalf("len = %d, want 1000", len(full))
	}
	for _, n := range []int{5, 19, 20, 25} {
		prefix := RollingStdDev(long[:n], 20)
		for i := range prefix {
			if prefix[i] != full[i] {
				t.Fatalf("n=%d: reading %d differs between prefix and full series (%v vs %v)", n, i, prefix[i], full[i])
			}
		}
	}
	// Beyond warm-up each reading covers exactly 20 points.
	want := sampleStdDev(long[480:500])
	if got := full[499]; math.Abs(got-want) > 1e-12 {
		t.Fatalf("reading 499 = %v, want trailing-20 stddev %v", got, want)
	}
}

func TestYieldCurveStressInverts(t *testing.T) {
	// Steepening then inverting curve: stress must rise toward the end.
	spread := []float64{2.0, 2.1, 2.2, 2.0, 1.5, 0.8, 0.1, -0.5}
	out, err := YieldCurveStress(spread)
	if err != nil {
		t.Fatalf("YieldCurveStress: %v", err)
	}
	if out[len(out)-1] <= out[0] {
		t.Fatalf("inverted curve stress %v not above steep curve stress %v", out[len(out)-1], out[0])
	}

	if _, err := YieldCurveStress(); err == nil {
		t.Fatal("no spreads accepted, want error")
	}
}

func TestCreditSpreadStressRisesWithSpreads(t *testing.T) {
	hy := []float64{3, 3, 3, 3, 3, 3, 3, 3, 3, 8}
	ig := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 2}
	out, err := CreditSpreadStress(hy, ig)
	if err != nil {
		t.Fatalf("CreditSpreadStress: %v", err)
	}
	if last := out[len(out)-1]; last <= 50 {
		t.Fatalf("blow-out stress = %v, want > 50", last)
	}
	if _, err := CreditSpreadStress(hy, ig[:5]); err == nil {
		t.Fatal("misaligned series accepted, want error")
	}
}

func TestEvaluateBondStress(t *testing.T) {
	n := 300
	hy := make([]float64, n)
	ig := make([]float64, n)
	spread := make([]float64, n)
	short := make([]float64, n)
	long := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i)
		hy[i] = 4 + 0.5*math.Sin(x*0.1)
		ig[i] = 1.2 + 0.2*math.Sin(x*0.13)
		spread[i] = 1.5 - x*0.004 // slowly flattening curve
		short[i] = 4.5 + 0.3*math.Sin(x*0.05)
		long[i] = 4.0 + 0.2*math.Sin(x*0.07)
	}
	def := bondDef(t)
	def.Components = DefaultBondWeights(false)

	co, err := EvaluateBondStress(time.Now(), def, BondInputs{
		HighYieldOAS:   hy,
		InvestGradeOAS: ig,
		CurveSpreads:   [][]float64{spread},
		ShortYield:     short,
		LongYield:      long,
	})
	if err != nil {
		t.Fatalf("EvaluateBondStress: %v", err)
	}
	if co.Score < 0 || co.Score > 100 {
		t.Fatalf("score = %v, want within [0,100]", co.Score)
	}
	if len(co.Contributions) != 4 {
		t.Fatalf("contributions = %d, want 4 without term premium", len(co.Contributions))
	}
}
