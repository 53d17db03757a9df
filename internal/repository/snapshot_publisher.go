package repository

import (
	"context"

	"OmniTrade/internal/domain/models"
	"OmniTrade/internal/domain/repository"
	pkgkafka "OmniTrade/pkg/kafka"
)

// snapshotKey keeps every snapshot of the session on one partition so
// consumers see versions in order.
var snapshotKey = []byte("dashboard")

// KafkaSnapshotPublisher implements SnapshotPublisher for Kafka.
type KafkaSnapshotPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSnapshotPublisher creates Kafka publisher.
func NewKafkaSnapshotPublisher(producer *pkgkafka.Producer, topic string) repository.SnapshotPublisher {
	return &KafkaSnapshotPublisher{producer: producer, topic: topic}
}

func (p *KafkaSnapshotPublisher) Publish(ctx context.Context, s *models.Snapshot) error {
	return p.producer.Publish(ctx, p.topic, snapshotKey, s)
}

// PublishBatch writes several snapshots in one request.
func (p *KafkaSnapshotPublisher) PublishBatch(ctx context.Context, snaps []*models.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(snaps))
	for i, s := range snaps {
		msgs[i] = pkgkafka.Message{Key: snapshotKey, Value: s}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

// Close is a no-op; the producer is shared with the log collector and
// closed by its owner.
func (p *KafkaSnapshotPublisher) Close() error {
	return nil
}
