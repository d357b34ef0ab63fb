package analytics

import "StressWatch/internal/domain/models"

// DefaultScoreScale moves the stress score 25 points per standard deviation,
// so +-2 sigma spans the full 0-100 scale.
const DefaultScoreScale = 25.0

// Classifier maps direction-adjusted standard scores onto the uniform 0-100
// stress scale (0 = calm, 100 = stressed) and buckets them.
type Classifier struct {
	scale float64
}

func NewClassifier(scale float64) *Classifier {
	if scale <= 0 {
		scale = DefaultScoreScale
	}
	return &Classifier{scale: scale}
}

// Score converts a normalized value to a clipped 0-100 stress score.
func (c *Classifier) Score(normalized float64) float64 {
	return clip(50+normalized*c.scale, 0, 100)
}

// Classify scores a normalized value and buckets it against per-indicator
// thresholds.
func (c *Classifier) Classify(normalized, greenMax, yellowMax float64) (float64, models.State) {
	score := c.Score(normalized)
	return score, StateForScore(score, greenMax, yellowMax)
}

// StateForScore buckets an existing 0-100 score. A score exactly on a
// threshold belongs to the calmer bucket.
func StateForScore(score, greenMax, yellowMax float64) models.State {
	switch {
	case score <= greenMax:
		return models.StateStable
	case score <= yellowMax:
		return models.StateCaution
	default:
		return models.StateStress
	}
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
