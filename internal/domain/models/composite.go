package models

import (
	"fmt"
	"math"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// WeightTolerance is the permitted deviation of a composite's weight sum
// from 1.0.
const WeightTolerance = 1e-6

// ComponentWeight binds one sub-metric to its share of a composite.
type ComponentWeight struct {
	SubMetricID string  `yaml:"sub_metric" json:"sub_metric" validate:"required"`
	Weight      float64 `yaml:"weight" json:"weight" validate:"gt=0,lte=1"`
}

// CompositeDefinition combines several independently normalized sub-metric
// stress scores into one composite stress score. Weights must sum to 1.0
// within WeightTolerance; the check runs once at load, never at build time.
type CompositeDefinition struct {
	Code       string            `yaml:"code" json:"code" validate:"required"`
	Name       string            `yaml:"name" json:"name"`
	Components []ComponentWeight `yaml:"components" json:"components" validate:"required,min=1,dive"`
	GreenMax   float64           `yaml:"green_max" json:"green_max" default:"35" validate:"gte=0,lte=100"`
	YellowMax  float64           `yaml:"yellow_max" json:"yellow_max" default:"65" validate:"gte=0,lte=100"`
}

// Validate fills defaults and enforces the weight-sum rule.
func (d *CompositeDefinition) Validate(v *validator.Validate) error {
	if err := defaults.Set(d); err != nil {
		return &ConfigValidationError{Code: d.Code, Reason: err.Error()}
	}
	if err := v.Struct(d); err != nil {
		return &ConfigValidationError{Code: d.Code, Reason: err.Error()}
	}
	if d.GreenMax >= d.YellowMax {
		return &ConfigValidationError{Code: d.Code, Reason: "thresholds must be strictly increasing (green_max < yellow_max)"}
	}
	var sum float64
	for _, c := range d.Components {
		sum += c.Weight
	}
	if math.Abs(sum-1.0) > WeightTolerance {
		return &ConfigValidationError{
			Code:   d.Code,
			Reason: fmt.Sprintf("component weights sum to %.9f, want 1.0", sum),
		}
	}
	return nil
}

// Contribution is one sub-metric's share of a composite score, retained for
// breakdown reporting.
type Contribution struct {
	SubMetricID  string  `json:"sub_metric"`
	StressScore  float64 `json:"stress_score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// CompositeObservation is one cycle's composite result with its per-component
// breakdown. It is derived purely from already-computed sub-metric scores and
// is safely recomputable for the same inputs.
type CompositeObservation struct {
	Code          string         `json:"code"`
	Timestamp     time.Time      `json:"timestamp"`
	Contributions []Contribution `json:"contributions"`
	Score         float64        `json:"score"`
	State         State          `json:"state"`
}
