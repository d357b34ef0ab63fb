package repository

import (
	"context"

	"StressWatch/internal/domain/models"
	domrepo "StressWatch/internal/domain/repository"
	pkgkafka "StressWatch/pkg/kafka"
)

// KafkaAlertPublisher implements AlertPublisher on Kafka. The notification
// layer consumes the alerts topic; the engine never retries past failures.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) domrepo.AlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) Publish(ctx context.Context, a models.Alert) error {
	return p.producer.Publish(ctx, p.topic, []byte(a.ID), a)
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
