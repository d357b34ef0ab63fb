package analytics

import (
	"fmt"
	"time"

	"StressWatch/internal/domain/models"
)

// Builder combines already-classified sub-metric stress scores into
// composite observations. It assumes definitions were validated at load;
// weights are applied as-is.
type Builder struct{}

func NewBuilder() *Builder { return &Builder{} }

// Build fails when any declared sub-metric is missing from scores:
// composites aggregate only complete fan-ins, never partial ones.
func (b *Builder) Build(ts time.Time, def models.CompositeDefinition, scores map[string]float64) (models.CompositeObservation, error) {
	contribs := make([]models.Contribution, 0, len(def.Components))
	var total float64
	for _, c := range def.Components {
		s, ok := scores[c.SubMetricID]
		if !ok {
			return models.CompositeObservation{}, fmt.Errorf("composite %s: missing sub-metric %q", def.Code, c.SubMetricID)
		}
		part := c.Weight * s
		total += part
		contribs = append(contribs, models.Contribution{
			SubMetricID:  c.SubMetricID,
			StressScore:  s,
			Weight:       c.Weight,
			Contribution: part,
		})
	}
	total = clip(total, 0, 100)
	return models.CompositeObservation{
		Code:          def.Code,
		Timestamp:     ts,
		Contributions: contribs,
		Score:         total,
		State:         StateForScore(total, def.GreenMax, def.YellowMax),
	}, nil
}

// SharedBaselineSpreadAverage combines two "metric minus baseline" spreads
// against the same baseline by averaging them, which counts the baseline
// once: [(a-b)+(c-b)]/2 == (a+c)/2 - b.
func SharedBaselineSpreadAverage(a, c, b float64) float64 {
	return ((a - b) + (c - b)) / 2
}

// PurchasingPowerSeries derives real purchasing power readings from spending,
// income and inflation levels: the averaged spreads of spending growth and
// income growth over inflation, per point. Inputs must be aligned and of
// equal length.
func PurchasingPowerSeries(spending, income, inflation []float64) ([]float64, error) {
	if len(spending) != len(income) || len(income) != len(inflation) {
		return nil, fmt.Errorf("purchasing power: series lengths differ (%d/%d/%d)",
			len(spending), len(income), len(inflation))
	}
	sg := PercentChangeSeries(spending)
	ig := PercentChangeSeries(income)
	infl := PercentChangeSeries(inflation)
	out := make([]float64, len(sg))
	for i := range sg {
		out[i] = SharedBaselineSpreadAverage(sg[i], ig[i], infl[i])
	}
	return out, nil
}
