package models

import "time"

// RawObservation is one already-fetched data point for an indicator.
// Timestamps are strictly increasing per indicator; gaps are permitted and
// are never zero-filled or interpolated.
type RawObservation struct {
	IndicatorCode string    `json:"indicator_code"`
	Timestamp     time.Time `json:"timestamp"`
	Value         float64   `json:"value"`
}

// NormalizedObservation is the per-indicator, per-timestamp output of the
// normalize/classify stage, on the uniform 0-100 stress scale
// (0 = calm, 100 = stressed).
type NormalizedObservation struct {
	IndicatorCode   string    `json:"indicator_code"`
	Timestamp       time.Time `json:"timestamp"`
	RawValue        float64   `json:"raw_value"`
	StandardScore   float64   `json:"standard_score"`
	NormalizedValue float64   `json:"normalized_value"`
	Score           float64   `json:"score"`
	State           State     `json:"state"`
	HasData         bool      `json:"has_data"`
}

// CycleResult is the classification of one indicator (plain or composite)
// for one cycle, as seen by the alert engine.
type CycleResult struct {
	State   State
	Score   float64
	HasData bool
}

// CycleSnapshot is the complete per-cycle view handed to the alert engine.
// It is built fresh every cycle and never mutated across cycles.
type CycleSnapshot struct {
	Timestamp time.Time
	Results   map[string]CycleResult
}
