package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/ChemRxn-Engine/internal/config"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/reaction"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/pkg/errors"
)

// ErrProducerClosed is returned by Publish after Close.
var ErrProducerClosed = errors.New(errors.ErrCodeMessagingError, "producer closed")

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer ships reaction events to Kafka.  It implements reaction.Publisher.
type Producer struct {
	writer WriterInterface
	topic  string
	log    logging.Logger
	closed atomic.Bool
	sent   atomic.Int64
	failed atomic.Int64
}

// NewProducer builds a Producer over a kafka.Writer configured from cfg.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeMessagingError, "no kafka brokers configured")
	}
	if cfg.Topic == "" {
		cfg.Topic = TopicReactionEvents
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	acks := kafka.RequireOne
	if cfg.RequiredAcks < 0 || cfg.RequiredAcks > 1 {
		acks = kafka.RequireAll
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.ProducerRetries + 1,
		BatchSize:    cfg.BatchSize,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: acks,
	}
	return NewProducerWith(writer, cfg.Topic, log), nil
}

// NewProducerWith wraps an existing writer, primarily for tests.
func NewProducerWith(writer WriterInterface, topic string, log logging.Logger) *Producer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if topic == "" {
		topic = TopicReactionEvents
	}
	return &Producer{writer: writer, topic: topic, log: log}
}

// Publish serializes the event into an envelope and writes it keyed by the
// graph id so events for one molecule stay ordered within a partition.
func (p *Producer) Publish(ctx context.Context, event reaction.Event) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to serialize event")
	}
	envelope := EventEnvelope{
		EventID:       event.ID,
		EventType:     string(event.Type),
		Source:        envelopeSource,
		Timestamp:     event.OccurredAt,
		SchemaVersion: envelopeSchemaVersion,
		Payload:       payload,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to serialize envelope")
	}

	msg := kafka.Message{
		Key:   []byte(event.GraphID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		p.log.Error("event publish failed",
			logging.String("event_id", event.ID),
			logging.String("type", string(event.Type)),
			logging.Err(err),
		)
		return errors.Wrap(err, errors.ErrCodeMessagingError, "failed to publish event")
	}

	p.sent.Add(1)
	p.log.Debug("event published",
		logging.String("event_id", event.ID),
		logging.String("type", string(event.Type)),
		logging.String("topic", p.topic),
	)
	return nil
}

// Stats reports lifetime publish counters.
func (p *Producer) Stats() (sent, failed int64) {
	return p.sent.Load(), p.failed.Load()
}

// Close flushes and shuts the writer down.  Publish calls after Close fail
// with ErrProducerClosed.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeMessagingError, "failed to close producer")
	}
	return nil
}
