package analytics

import (
	"math"

	"StressWatch/internal/domain/models"
)

// transformer converts raw observations into the values that get buffered.
// Stateful transforms (rate of change, EMA gap) consume their first
// observation as a seed and emit nothing for it; the output series is never
// padded with a synthetic leading zero.
type transformer interface {
	Apply(raw float64) (v float64, ok bool)
	Clone() transformer
}

func newTransformer(kind models.Transform, emaPeriod int) transformer {
	switch kind {
	case models.TransformRateOfChange:
		return &rateOfChangeTransform{}
	case models.TransformEMAGap:
		return &emaGapTransform{period: emaPeriod}
	default:
		return identityTransform{}
	}
}

type identityTransform struct{}

func (identityTransform) Apply(raw float64) (float64, bool) { return raw, true }
func (t identityTransform) Clone() transformer              { return t }

type rateOfChangeTransform struct {
	prev   float64
	seeded bool
}

func (t *rateOfChangeTransform) Apply(raw float64) (float64, bool) {
	if !t.seeded {
		t.prev, t.seeded = raw, true
		return 0, false
	}
	d := raw - t.prev
	t.prev = raw
	return d, true
}

func (t *rateOfChangeTransform) Clone() transformer { cp := *t; return &cp }

// emaGapTransform emits the percentage gap between the raw value and its
// exponential moving average. The first observation seeds the EMA.
type emaGapTransform struct {
	period int
	ema    float64
	seeded bool
}

func (t *emaGapTransform) Apply(raw float64) (float64, bool) {
	if !t.seeded {
		t.ema, t.seeded = raw, true
		return 0, false
	}
	alpha := 2.0 / (float64(t.period) + 1)
	t.ema = alpha*raw + (1-alpha)*t.ema
	if t.ema == 0 {
		return 0, true
	}
	return (raw - t.ema) / t.ema * 100, true
}

func (t *emaGapTransform) Clone() transformer { cp := *t; return &cp }

// RateOfChangeSeries returns consecutive differences. A series of N values
// yields exactly N-1 deltas, all of them real; nothing is prepended.
func RateOfChangeSeries(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		out[i-1] = values[i] - values[i-1]
	}
	return out
}

// PercentChangeSeries returns consecutive percentage changes. A zero
// predecessor yields 0 for that step.
func PercentChangeSeries(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		out[i-1] = (values[i] - values[i-1]) / values[i-1] * 100
	}
	return out
}

// ROCOverPeriod is the percentage change between the last value and the one
// `period` steps before it. Too-short series and zero bases yield 0.
func ROCOverPeriod(values []float64, period int) float64 {
	if period <= 0 || len(values) <= period {
		return 0
	}
	past := values[len(values)-1-period]
	if past == 0 {
		return 0
	}
	return (values[len(values)-1] - past) / past * 100
}

// ChangeOverPeriod is the absolute difference between the last value and the
// one `period` steps before it.
func ChangeOverPeriod(values []float64, period int) float64 {
	if period <= 0 || len(values) <= period {
		return 0
	}
	return values[len(values)-1] - values[len(values)-1-period]
}

// emaOf folds a series into a single exponential moving average reading,
// seeded with the first value.
func emaOf(values []float64, length int) float64 {
	if len(values) == 0 {
		return 0
	}
	alpha := 2.0 / (float64(length) + 1)
	ema := values[0]
	for _, v := range values[1:] {
		ema = alpha*v + (1-alpha)*ema
	}
	return ema
}

// RollingStdDev returns, per point, the sample standard deviation of the
// trailing min(window, i+1) values. The target width is a fixed constant and
// is never derived from the total series length; early points use the
// expanding prefix.
func RollingStdDev(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	for i := range values {
		lo := i + 1 - window
		if lo < 0 {
			lo = 0
		}
		out[i] = sampleStdDev(values[lo : i+1])
	}
	return out
}

// standardScores maps a series onto full-sample z-scores. A degenerate
// series (zero deviation) maps to all zeros.
func standardScores(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) < 2 {
		return out
	}
	mean := meanOf(values)
	std := sampleStdDev(values)
	if std == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := meanOf(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
