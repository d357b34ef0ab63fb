package models

import "time"

// AlertTypeStressThreshold fires when at least the configured number of
// indicators classify as STRESS in the same cycle.
const AlertTypeStressThreshold = "STRESS_THRESHOLD"

// Alert is an immutable record of a detected multi-indicator stress
// condition. A new condition produces a new Alert; existing records are
// never retried or mutated. Delivery is someone else's job.
type Alert struct {
	ID                 string    `json:"id"`
	Timestamp          time.Time `json:"timestamp"`
	Type               string    `json:"type"`
	Message            string    `json:"message"`
	AffectedIndicators []string  `json:"affected_indicators"`
	DedupKey           string    `json:"dedup_key"`
}
