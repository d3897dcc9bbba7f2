package infra

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Message is one record bound for a broker topic.
type Message struct {
	Topic string
	Key   []byte
	Value []byte
}

// KafkaProducer wraps a kafka-go writer for publishing outbox events.
type KafkaProducer struct {
	writer  *kafka.Writer
	logger  *slog.Logger
	enabled bool
}

// NewKafkaProducer creates a Kafka producer. If brokers is empty or disabled, writes are no-ops.
func NewKafkaProducer(brokers string, enabled bool, logger *slog.Logger) *KafkaProducer {
	if !enabled || brokers == "" {
		logger.Info("kafka producer disabled")
		return &KafkaProducer{enabled: false, logger: logger}
	}

	// Hash keeps every event of one league on one partition, in order.
	w := &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	logger.Info("kafka producer initialized", "brokers", brokers)
	return &KafkaProducer{writer: w, logger: logger, enabled: true}
}

// Enabled reports whether messages actually reach a broker.
func (p *KafkaProducer) Enabled() bool { return p.enabled }

// Publish writes msgs in one batch. No-op if disabled.
func (p *KafkaProducer) Publish(ctx context.Context, msgs ...Message) error {
	if !p.enabled || len(msgs) == 0 {
		return nil
	}

	out := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, kafka.Message{Topic: m.Topic, Key: m.Key, Value: m.Value})
	}
	return p.writer.WriteMessages(ctx, out...)
}

// Close shuts down the Kafka writer.
func (p *KafkaProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// KafkaConsumer wraps a kafka-go reader, used by leaguectl to tail event topics.
type KafkaConsumer struct {
	reader *kafka.Reader
}

// NewKafkaConsumer creates a consumer for topic. An empty groupID reads the
// partition directly from the latest offset.
func NewKafkaConsumer(brokers, topic, groupID string) *KafkaConsumer {
	cfg := kafka.ReaderConfig{
		Brokers:  strings.Split(brokers, ","),
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	}
	if groupID == "" {
		cfg.StartOffset = kafka.LastOffset
	}
	return &KafkaConsumer{reader: kafka.NewReader(cfg)}
}

// ReadMessage blocks until the next message is available.
func (c *KafkaConsumer) ReadMessage(ctx context.Context) (Message, error) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return Message{}, err
	}
	return Message{Topic: m.Topic, Key: m.Key, Value: m.Value}, nil
}

// Close shuts down the Kafka reader.
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
