package repository

import (
	"context"

	"StressWatch/internal/domain/models"
)

// ResultStore persists engine outputs for the presentation layer. The engine
// treats persistence as a collaborator port; failures are reported but never
// change computed results.
type ResultStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	SaveObservations(ctx context.Context, obs []models.NormalizedObservation) error
	SaveComposite(ctx context.Context, co models.CompositeObservation) error
	SaveStrain(ctx context.Context, snap models.StrainSnapshot) error
	SaveAlert(ctx context.Context, a models.Alert) error
	Health(ctx context.Context) error // ping
	Close() error
}

// AlertPublisher hands deduplicated alert records to the notification layer.
type AlertPublisher interface {
	Publish(ctx context.Context, a models.Alert) error
	Close() error
}

// Metrics is the engine's observability port.
type Metrics interface {
	RecordCycle(seconds float64)
	RecordObservation(indicator string)
	RecordNoData(indicator string)
	RecordScore(indicator string, score float64)
	RecordAlert(emitted bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
