package usecase

import (
	"context"
	"encoding/json"
	"time"

	"StressWatch/internal/domain/models"
	domrepo "StressWatch/internal/domain/repository"
	pkgkafka "StressWatch/pkg/kafka"
)

// KafkaObservationsHandler consumes raw observation messages and buffers
// them into the cycle runner. Fetching and scheduling live upstream; this
// side only sees already-fetched points.
type KafkaObservationsHandler struct {
	topic   string
	runner  *CycleRunner
	metrics domrepo.Metrics
}

func NewKafkaObservationsHandler(topic string, runner *CycleRunner, metrics domrepo.Metrics) *KafkaObservationsHandler {
	return &KafkaObservationsHandler{topic: topic, runner: runner, metrics: metrics}
}

func (h *KafkaObservationsHandler) Topic() string { return h.topic }

// incoming message schema: {indicator_code, t, value}
func (h *KafkaObservationsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		IndicatorCode string  `json:"indicator_code"`
		T             int64   `json:"t"`
		Value         float64 `json:"value"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.T, 0)).Seconds())

	return h.runner.Ingest(models.RawObservation{
		IndicatorCode: m.IndicatorCode,
		Timestamp:     time.Unix(m.T, 0).UTC(),
		Value:         m.Value,
	})
}

var _ pkgkafka.MessageHandler = (*KafkaObservationsHandler)(nil)
