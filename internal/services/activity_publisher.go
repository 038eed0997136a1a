package services

import (
	"context"
	"encoding/json"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/usecase"
)

// Producer is the subset of *kgo.Client used for publishing. TryProduce
// buffers the record and returns at once; delivery is reported to promise.
type Producer interface {
	TryProduce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
}

// ActivityPublisher forwards committed activity entries to a Kafka topic,
// keyed by user id so one user's entries stay ordered. Publishing never
// waits for the broker: failures are logged from the delivery callback.
type ActivityPublisher struct {
	producer Producer
	topic    string
	logger   *zap.Logger
}

func NewActivityPublisher(producer Producer, topic string, logger *zap.Logger) *ActivityPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityPublisher{producer: producer, topic: topic, logger: logger}
}

// PublishActivity hands the entries to the producer buffer. Only encoding
// errors are returned; the request context's cancellation is not inherited.
func (p *ActivityPublisher) PublishActivity(ctx context.Context, entries []domain.ActivityEntry) error {
	if p == nil || p.producer == nil || len(entries) == 0 {
		return nil
	}
	records, err := p.records(entries)
	if err != nil {
		return err
	}

	detached := context.WithoutCancel(ctx)
	for _, r := range records {
		p.producer.TryProduce(detached, r, p.delivered)
	}
	return nil
}

func (p *ActivityPublisher) delivered(r *kgo.Record, err error) {
	if err != nil {
		p.logger.Warn("activity delivery failed",
			zap.String("topic", r.Topic),
			zap.ByteString("entry_id", header(r, "entry_id")),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("activity delivered", zap.String("topic", r.Topic), zap.Int32("partition", r.Partition), zap.Int64("offset", r.Offset))
}

func (p *ActivityPublisher) records(entries []domain.ActivityEntry) ([]*kgo.Record, error) {
	records := make([]*kgo.Record, 0, len(entries))
	for _, e := range entries {
		payload, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		records = append(records, &kgo.Record{
			Topic: p.topic,
			Key:   []byte(e.UserID),
			Value: payload,
			Headers: []kgo.RecordHeader{
				{Key: "entry_id", Value: []byte(e.ID)},
				{Key: "role", Value: []byte(e.Role)},
			},
		})
	}
	return records, nil
}

func header(r *kgo.Record, key string) []byte {
	for _, h := range r.Headers {
		if h.Key == key {
			return h.Value
		}
	}
	return nil
}

var _ usecase.ActivityPublisher = (*ActivityPublisher)(nil)
