package analytics

import (
	"testing"

	"StressWatch/internal/domain/models"
)

func TestClassifierScoreMapping(t *testing.T) {
	c := NewClassifier(DefaultScoreScale)
	cases := []struct {
		normalized float64
		want       float64
	}{
		{0, 50},
		{1, 75},
		{-1, 25},
		{2, 100},
		{-2, 0},
		{5, 100}, // clipped
		{-5, 0},  // clipped
	}
	for _, tc := range cases {
		if got := c.Score(tc.normalized); got != tc.want {
			t.Errorf("Score(%v) = %v, want %v", tc.normalized, got, tc.want)
		}
	}
}

func TestClassifierBoundaryBelongsToCalmerBucket(t *testing.T) {
	cases := []struct {
		score float64
		want  models.State
	}{
		{30, models.StateStable},
		{30.0001, models.StateCaution},
		{60, models.StateCaution},
		{60.0001, models.StateStress},
		{0, models.StateStable},
		{100, models.StateStress},
	}
	for _, tc := range cases {
		if got := StateForScore(tc.score, 30, 60); got != tc.want {
			t.Errorf("StateForScore(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestClassifierZeroScaleFallsBackToDefault(t *testing.T) {
	c := NewClassifier(0)
	if got := c.Score(1); got != 75 {
		t.Fatalf("Score(1) = %v, want 75 with default scale", got)
	}
}
