package models

import (
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Transform selects the derived series fed into an indicator's rolling window.
// The set is closed: dispatch happens on the tag, never on indicator codes.
type Transform string

const (
	TransformIdentity     Transform = "identity"
	TransformRateOfChange Transform = "rate_of_change"
	TransformEMAGap       Transform = "ema_gap"
)

// State is the tri-state stress classification of an indicator for one cycle.
type State string

const (
	StateStable  State = "STABLE"
	StateCaution State = "CAUTION"
	StateStress  State = "STRESS"
)

// Label returns the dashboard-facing color for a state.
func (s State) Label() string {
	switch s {
	case StateStable:
		return "GREEN"
	case StateCaution:
		return "YELLOW"
	case StateStress:
		return "RED"
	default:
		return "UNKNOWN"
	}
}

// IndicatorDefinition describes one monitored series. Definitions are
// validated once at load and never mutated afterwards; a config change
// builds and validates a fresh instance.
//
// Direction is the single place the "higher raw value means more stress"
// vs "higher means healthier" convention is encoded: the normalizer
// multiplies the standard score by it so that a positive normalized value
// always means more stress. It must never be re-applied downstream.
type IndicatorDefinition struct {
	Code       string    `yaml:"code" json:"code" validate:"required"`
	Name       string    `yaml:"name" json:"name"`
	Category   string    `yaml:"category" json:"category"`
	Direction  int       `yaml:"direction" json:"direction" validate:"required,oneof=1 -1"`
	WindowSize int       `yaml:"window_size" json:"window_size" default:"252" validate:"gte=2"`
	GreenMax   float64   `yaml:"green_max" json:"green_max" default:"30" validate:"gte=0,lte=100"`
	YellowMax  float64   `yaml:"yellow_max" json:"yellow_max" default:"60" validate:"gte=0,lte=100"`
	Transform  Transform `yaml:"transform" json:"transform" default:"identity" validate:"oneof=identity rate_of_change ema_gap"`
	EMAPeriod  int       `yaml:"ema_period" json:"ema_period" default:"50" validate:"gte=2"`
	Weight     float64   `yaml:"weight" json:"weight" default:"1"`
}

// Validate fills defaults and checks the definition invariants.
// Failures are fatal to this definition only.
func (d *IndicatorDefinition) Validate(v *validator.Validate) error {
	if err := defaults.Set(d); err != nil {
		return &ConfigValidationError{Code: d.Code, Reason: err.Error()}
	}
	if err := v.Struct(d); err != nil {
		return &ConfigValidationError{Code: d.Code, Reason: err.Error()}
	}
	// Boundary values belong to the calmer bucket, so equal thresholds
	// would make the CAUTION band unreachable.
	if d.GreenMax >= d.YellowMax {
		return &ConfigValidationError{Code: d.Code, Reason: "thresholds must be strictly increasing (green_max < yellow_max)"}
	}
	return nil
}
