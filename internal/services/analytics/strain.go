package analytics

import (
	"math"
	"time"

	"StressWatch/internal/domain/models"
)

// StrainConfig tunes the divergence calculator over the reference triad.
type StrainConfig struct {
	// TrendLength is the lookback, in observations, of the rate-of-change
	// readings fed into an evaluation.
	TrendLength int
	// SmoothLength is the EMA length applied to the direction reading.
	SmoothLength int
	// DivergenceScale and OutperformanceScale convert the two strain
	// components into score points.
	DivergenceScale     float64
	OutperformanceScale float64
	// DirectionThreshold separates UP/DOWN from NEUTRAL on the smoothed
	// direction.
	DirectionThreshold float64
}

func DefaultStrainConfig() StrainConfig {
	return StrainConfig{
		TrendLength:         34,
		SmoothLength:        13,
		DivergenceScale:     2.0,
		OutperformanceScale: 2.0,
		DirectionThreshold:  0.25,
	}
}

// StrainCalculator detects divergence between a broad index, a correlated
// confirming sub-index, and a defensive sector that outperforms in risk-off
// conditions. It keeps only the direction history needed for smoothing; the
// rest of each evaluation is stateless.
type StrainCalculator struct {
	cfg        StrainConfig
	dirHistory []float64
}

func NewStrainCalculator(cfg StrainConfig) *StrainCalculator {
	def := DefaultStrainConfig()
	if cfg.TrendLength <= 0 {
		cfg.TrendLength = def.TrendLength
	}
	if cfg.SmoothLength <= 0 {
		cfg.SmoothLength = def.SmoothLength
	}
	if cfg.DivergenceScale <= 0 {
		cfg.DivergenceScale = def.DivergenceScale
	}
	if cfg.OutperformanceScale <= 0 {
		cfg.OutperformanceScale = def.OutperformanceScale
	}
	if cfg.DirectionThreshold <= 0 {
		cfg.DirectionThreshold = def.DirectionThreshold
	}
	return &StrainCalculator{cfg: cfg}
}

// TrendLength exposes the configured rate-of-change lookback.
func (s *StrainCalculator) TrendLength() int { return s.cfg.TrendLength }

// Evaluate folds one triple of trend-length rate-of-change readings into a
// strain snapshot. The defensive leg contributes only while it actually
// outperforms; underperformance never reduces strain.
func (s *StrainCalculator) Evaluate(ts time.Time, primaryROC, secondaryROC, tertiaryROC float64) models.StrainSnapshot {
	base := (primaryROC + secondaryROC) / 2
	alignment := 1.0
	if !sameSign(primaryROC, secondaryROC) {
		alignment = 0.90
	}

	s.dirHistory = append(s.dirHistory, base*alignment)
	if len(s.dirHistory) > s.cfg.SmoothLength {
		s.dirHistory = s.dirHistory[len(s.dirHistory)-s.cfg.SmoothLength:]
	}
	direction := emaOf(s.dirHistory, s.cfg.SmoothLength)

	divergence := math.Abs(primaryROC - secondaryROC)
	outperformance := tertiaryROC - primaryROC

	strain := s.cfg.DivergenceScale * divergence
	if outperformance > 0 {
		strain += s.cfg.OutperformanceScale * outperformance
	}
	strain = clip(strain, 0, 100)

	return models.StrainSnapshot{
		Timestamp:         ts,
		PrimaryROC:        primaryROC,
		SecondaryROC:      secondaryROC,
		TertiaryROC:       tertiaryROC,
		Divergence:        divergence,
		Outperformance:    outperformance,
		MarketDirection:   direction,
		DirectionState:    s.directionState(direction),
		ConfirmationState: confirmationState(primaryROC, secondaryROC),
		StrainScore:       strain,
		StrainLevel:       strainLevel(strain),
		SignalStrength:    signalStrength(direction),
	}
}

// EvaluateSeries computes trend-length rate-of-change readings from three
// aligned closing-price series and evaluates them.
func (s *StrainCalculator) EvaluateSeries(ts time.Time, primary, secondary, tertiary []float64) models.StrainSnapshot {
	return s.Evaluate(ts,
		ROCOverPeriod(primary, s.cfg.TrendLength),
		ROCOverPeriod(secondary, s.cfg.TrendLength),
		ROCOverPeriod(tertiary, s.cfg.TrendLength),
	)
}

func (s *StrainCalculator) directionState(direction float64) models.DirectionState {
	switch {
	case direction > s.cfg.DirectionThreshold:
		return models.DirectionUp
	case direction < -s.cfg.DirectionThreshold:
		return models.DirectionDown
	default:
		return models.DirectionNeutral
	}
}

func confirmationState(primary, secondary float64) models.ConfirmationState {
	switch {
	case primary > 0 && secondary > 0:
		return models.ConfirmBull
	case primary < 0 && secondary < 0:
		return models.ConfirmBear
	default:
		return models.ConfirmMixed
	}
}

func strainLevel(score float64) models.StrainLevel {
	switch {
	case score < 25:
		return models.StrainLow
	case score < 50:
		return models.StrainModerate
	case score < 75:
		return models.StrainHigh
	default:
		return models.StrainCritical
	}
}

func signalStrength(direction float64) models.SignalStrength {
	abs := math.Abs(direction)
	switch {
	case abs > 2:
		return models.SignalStrong
	case abs > 1:
		return models.SignalModerate
	default:
		return models.SignalWeak
	}
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0) || (a == 0 && b == 0)
}
