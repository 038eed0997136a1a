package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/fastygo/teamboard/internal/config"
)

const (
	maxBufferedRecords = 10000
	deliveryTimeout    = 30 * time.Second
)

// NewProducer creates a franz-go client used only for producing.
func NewProducer(cfg config.KafkaConfig, logger *zap.Logger) (*kgo.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are not configured")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerLinger(10 * time.Millisecond),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.MaxBufferedRecords(maxBufferedRecords),
		kgo.RecordDeliveryTimeout(deliveryTimeout),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}

	logger.Info("kafka producer created", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return client, nil
}

// Probe adapts a client to a health check.
func Probe(client *kgo.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx)
	}
}
