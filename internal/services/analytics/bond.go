package analytics

import (
	"fmt"
	"time"

	"StressWatch/internal/domain/models"
)

// Sub-metric IDs of the bond market composite.
const (
	BondCreditSpread   = "credit_spread"
	BondYieldCurve     = "yield_curve"
	BondRateMomentum   = "rate_momentum"
	BondRateVolatility = "rate_volatility"
	BondTermPremium    = "term_premium"
)

const (
	// DefaultMomentumPeriod is roughly one trading quarter.
	DefaultMomentumPeriod = 63
	// DefaultVolatilityWindow is the target width of the rolling volatility
	// sub-window. Shorter series use the expanding prefix.
	DefaultVolatilityWindow = 20
)

// DefaultBondWeights returns the composite weights for the bond market
// families. Without a term premium series its weight is redistributed across
// the remaining four so the sum stays at 1.0.
func DefaultBondWeights(withPremium bool) []models.ComponentWeight {
	if withPremium {
		return []models.ComponentWeight{
			{SubMetricID: BondCreditSpread, Weight: 0.40},
			{SubMetricID: BondYieldCurve, Weight: 0.20},
			{SubMetricID: BondRateMomentum, Weight: 0.15},
			{SubMetricID: BondRateVolatility, Weight: 0.15},
			{SubMetricID: BondTermPremium, Weight: 0.10},
		}
	}
	return []models.ComponentWeight{
		{SubMetricID: BondCreditSpread, Weight: 0.44},
		{SubMetricID: BondYieldCurve, Weight: 0.23},
		{SubMetricID: BondRateMomentum, Weight: 0.17},
		{SubMetricID: BondRateVolatility, Weight: 0.16},
	}
}

// zScoreTo100 maps a series onto the 0-100 stress scale via its full-sample
// z-scores. Invert for series where high values mean health, not stress.
func zScoreTo100(values []float64, invert bool) []float64 {
	zs := standardScores(values)
	out := make([]float64, len(zs))
	for i, z := range zs {
		if invert {
			z = -z
		}
		out[i] = clip(50+DefaultScoreScale*z, 0, 100)
	}
	return out
}

// CreditSpreadStress averages the stress of the high-yield and
// investment-grade spread series. Wider spreads mean more stress.
func CreditSpreadStress(highYield, investGrade []float64) ([]float64, error) {
	if len(highYield) != len(investGrade) {
		return nil, fmt.Errorf("credit spread: series lengths differ (%d/%d)", len(highYield), len(investGrade))
	}
	hy := zScoreTo100(highYield, false)
	ig := zScoreTo100(investGrade, false)
	out := make([]float64, len(hy))
	for i := range hy {
		out[i] = (hy[i] + ig[i]) / 2
	}
	return out, nil
}

// YieldCurveStress averages per-point slope spreads (each already "long
// tenor minus short tenor") and inverts: a steep curve is low stress, a flat
// or inverted one is high. Spreads sharing a tenor are averaged, never
// summed, so the shared leg is not double counted.
func YieldCurveStress(spreads ...[]float64) ([]float64, error) {
	if len(spreads) == 0 {
		return nil, fmt.Errorf("yield curve: no spread series given")
	}
	n := len(spreads[0])
	for _, s := range spreads[1:] {
		if len(s) != n {
			return nil, fmt.Errorf("yield curve: series lengths differ")
		}
	}
	avg := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for _, s := range spreads {
			sum += s[i]
		}
		avg[i] = sum / float64(len(spreads))
	}
	return zScoreTo100(avg, true), nil
}

// RateMomentumStress measures how fast yields are moving: the average of the
// short and long yields' changes over the momentum period, z-mapped so that
// sharp rises read as stress.
func RateMomentumStress(shortYield, longYield []float64, period int) ([]float64, error) {
	if len(shortYield) != len(longYield) {
		return nil, fmt.Errorf("rate momentum: series lengths differ (%d/%d)", len(shortYield), len(longYield))
	}
	if period <= 0 {
		period = DefaultMomentumPeriod
	}
	mom := make([]float64, len(shortYield))
	for i := range mom {
		lo := i - period
		if lo < 0 {
			lo = 0
		}
		mom[i] = ((shortYield[i] - shortYield[lo]) + (longYield[i] - longYield[lo])) / 2
	}
	return zScoreTo100(mom, false), nil
}

// RateVolatilityStress measures rate churn: the rolling sample deviation of
// the long yield's daily changes, z-mapped. The sub-window width is
// min(window, points available), never the whole history by construction.
func RateVolatilityStress(longYield []float64, window int) ([]float64, error) {
	if len(longYield) < 2 {
		return nil, ErrInsufficientData
	}
	if window <= 0 {
		window = DefaultVolatilityWindow
	}
	changes := RateOfChangeSeries(longYield)
	for i, c := range changes {
		if c < 0 {
			changes[i] = -c
		}
	}
	vol := RollingStdDev(changes, window)
	return zScoreTo100(vol, false), nil
}

// BondInputs carries the aligned raw series the bond market composite is
// derived from. TermPremium may be nil; the weights adjust accordingly.
type BondInputs struct {
	HighYieldOAS    []float64
	InvestGradeOAS  []float64
	CurveSpreads    [][]float64
	ShortYield      []float64
	LongYield       []float64
	TermPremium     []float64
	MomentumPeriod  int
	VolatilityWidth int
}

// EvaluateBondStress computes the per-family stress series, takes the latest
// reading of each, and folds them through the weighted composite.
func EvaluateBondStress(ts time.Time, def models.CompositeDefinition, in BondInputs) (models.CompositeObservation, error) {
	credit, err := CreditSpreadStress(in.HighYieldOAS, in.InvestGradeOAS)
	if err != nil {
		return models.CompositeObservation{}, err
	}
	curve, err := YieldCurveStress(in.CurveSpreads...)
	if err != nil {
		return models.CompositeObservation{}, err
	}
	momentum, err := RateMomentumStress(in.ShortYield, in.LongYield, in.MomentumPeriod)
	if err != nil {
		return models.CompositeObservation{}, err
	}
	vol, err := RateVolatilityStress(in.LongYield, in.VolatilityWidth)
	if err != nil {
		return models.CompositeObservation{}, err
	}

	scores := map[string]float64{
		BondCreditSpread:   credit[len(credit)-1],
		BondYieldCurve:     curve[len(curve)-1],
		BondRateMomentum:   momentum[len(momentum)-1],
		BondRateVolatility: vol[len(vol)-1],
	}
	if len(in.TermPremium) > 0 {
		premium := zScoreTo100(in.TermPremium, false)
		scores[BondTermPremium] = premium[len(premium)-1]
	}
	return NewBuilder().Build(ts, def, scores)
}
