package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hazard-admin/internal/config"
	"hazard-admin/internal/services"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// collectionKey keys messages for changes that touch the whole list.
const collectionKey = "*"

// publishBatchTimeout bounds how long a synchronous write waits to fill a
// batch. Changes are published one message at a time.
const publishBatchTimeout = 10 * time.Millisecond

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher publishes every change to a topic so map renderers can
// refresh. Publish failures are logged and swallowed.
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
	logr    *zap.Logger
}

// NewKafkaPublisher creates a producer for the configured change topic.
func NewKafkaPublisher(cfg *config.Config, logr *zap.Logger) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           publishBatchTimeout,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w, timeout: 5 * time.Second, logr: logr}
}

func (p *KafkaPublisher) ZonesChanged(ctx context.Context, c services.ZoneChange) {
	msg, err := serializeChange(c)
	if err != nil {
		p.logr.Error("serialize zone change", zap.Error(err))
		return
	}

	// The request context may already be done by the time we publish.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logr.Warn("publish zone change failed",
			zap.Error(err),
			zap.String("op", string(c.Op)),
			zap.String("zone_id", c.ZoneID),
		)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func serializeChange(c services.ZoneChange) (kafkago.Message, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize zone change: %w", err)
	}
	key := c.ZoneID
	if key == "" {
		key = collectionKey
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "op", Value: []byte(c.Op)},
			{Key: "changed_at", Value: []byte(c.At.Format(time.RFC3339))},
		},
	}, nil
}
