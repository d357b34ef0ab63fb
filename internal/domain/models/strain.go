package models

import "time"

// DirectionState is the smoothed market direction bucket.
type DirectionState string

const (
	DirectionUp      DirectionState = "UP"
	DirectionDown    DirectionState = "DOWN"
	DirectionNeutral DirectionState = "NEUTRAL"
)

// ConfirmationState reports whether the primary and confirming series agree.
type ConfirmationState string

const (
	ConfirmBull  ConfirmationState = "BULL"
	ConfirmBear  ConfirmationState = "BEAR"
	ConfirmMixed ConfirmationState = "MIXED"
)

// StrainLevel buckets the strain score.
type StrainLevel string

const (
	StrainLow      StrainLevel = "LOW"
	StrainModerate StrainLevel = "MODERATE"
	StrainHigh     StrainLevel = "HIGH"
	StrainCritical StrainLevel = "CRITICAL"
)

// SignalStrength grades the absolute market direction reading.
type SignalStrength string

const (
	SignalWeak     SignalStrength = "WEAK"
	SignalModerate SignalStrength = "MODERATE"
	SignalStrong   SignalStrength = "STRONG"
)

// StrainSnapshot is the output of one strain evaluation over the reference
// triad: a broad index, a correlated confirming sub-index, and a defensive
// sector expected to diverge under risk-off conditions.
type StrainSnapshot struct {
	Timestamp         time.Time         `json:"timestamp"`
	PrimaryROC        float64           `json:"primary_roc"`
	SecondaryROC      float64           `json:"secondary_roc"`
	TertiaryROC       float64           `json:"tertiary_roc"`
	Divergence        float64           `json:"divergence"`
	Outperformance    float64           `json:"outperformance"`
	MarketDirection   float64           `json:"market_direction"`
	DirectionState    DirectionState    `json:"direction_state"`
	ConfirmationState ConfirmationState `json:"confirmation_state"`
	StrainScore       float64           `json:"strain_score"`
	StrainLevel       StrainLevel       `json:"strain_level"`
	SignalStrength    SignalStrength    `json:"signal_strength"`
}
