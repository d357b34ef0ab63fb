package analytics

import (
	"fmt"
	"math"
	"time"

	"StressWatch/internal/domain/models"
)

// ScoreOutcome is one observation's normalized result: the standard score of
// the post-transform value against the current window, with the indicator's
// direction already applied. Direction is applied here exactly once; a
// positive NormalizedValue always means more stress.
type ScoreOutcome struct {
	Timestamp        time.Time
	RawValue         float64
	TransformedValue float64
	StandardScore    float64
	NormalizedValue  float64
}

// Normalizer owns the rolling window and transform state for exactly one
// indicator. Instances are never shared across indicators. It is not safe
// for concurrent use; the cycle runner serializes access per indicator.
type Normalizer struct {
	def    models.IndicatorDefinition
	window *Window
	tr     transformer
	lastTS time.Time
}

// NewNormalizer builds the window from the definition's own window size.
// Capacity never depends on how much history will eventually be pushed.
func NewNormalizer(def models.IndicatorDefinition) *Normalizer {
	return &Normalizer{
		def:    def,
		window: NewWindow(def.WindowSize),
		tr:     newTransformer(def.Transform, def.EMAPeriod),
	}
}

// Definition returns the immutable definition this normalizer was built from.
func (n *Normalizer) Definition() models.IndicatorDefinition { return n.def }

// WindowLen reports how many post-transform values are currently buffered.
func (n *Normalizer) WindowLen() int { return n.window.Len() }

// Push processes a single observation. It returns ErrInsufficientData while
// the window holds fewer than two values, or when the transform consumed the
// observation as its seed.
func (n *Normalizer) Push(obs models.RawObservation) (ScoreOutcome, error) {
	outs, err := n.PushBatch([]models.RawObservation{obs})
	if err != nil {
		return ScoreOutcome{}, err
	}
	if len(outs) == 0 {
		return ScoreOutcome{}, ErrInsufficientData
	}
	return outs[0], nil
}

// PushBatch stages the whole batch against clones of the window and
// transform state and commits only if every observation is acceptable. A
// malformed value or out-of-order timestamp rejects the batch and leaves the
// window exactly as it was.
//
// Outcomes are returned only for observations that produced a buffered value
// with at least two values present at evaluation time; seed observations and
// warm-up pushes yield none.
func (n *Normalizer) PushBatch(batch []models.RawObservation) ([]ScoreOutcome, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	win := n.window.Clone()
	tr := n.tr.Clone()
	lastTS := n.lastTS

	outs := make([]ScoreOutcome, 0, len(batch))
	for _, obs := range batch {
		if math.IsNaN(obs.Value) || math.IsInf(obs.Value, 0) {
			return nil, &models.PartialIngestionFailure{
				IndicatorCode: n.def.Code,
				Reason:        fmt.Sprintf("non-finite value at %s", obs.Timestamp.Format(time.RFC3339)),
			}
		}
		if !lastTS.IsZero() && !obs.Timestamp.After(lastTS) {
			return nil, &models.PartialIngestionFailure{
				IndicatorCode: n.def.Code,
				Reason: fmt.Sprintf("timestamp %s not after %s",
					obs.Timestamp.Format(time.RFC3339), lastTS.Format(time.RFC3339)),
			}
		}
		lastTS = obs.Timestamp

		v, ok := tr.Apply(obs.Value)
		if !ok {
			continue
		}
		win.Push(v)
		if win.Len() < 2 {
			continue
		}
		mean, std := win.MeanStdDev()
		var z float64
		if std != 0 {
			z = (v - mean) / std
		}
		outs = append(outs, ScoreOutcome{
			Timestamp:        obs.Timestamp,
			RawValue:         obs.Value,
			TransformedValue: v,
			StandardScore:    z,
			NormalizedValue:  float64(n.def.Direction) * z,
		})
	}

	n.window = win
	n.tr = tr
	n.lastTS = lastTS
	return outs, nil
}
