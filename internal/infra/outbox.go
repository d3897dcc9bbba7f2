package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tenpin/leaguebook/internal/domain"
)

// OutboxSource is the storage side of the relay.
type OutboxSource interface {
	FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxRecord, error)
	MarkPublished(ctx context.Context, seqIDs []int64) error
}

// Publisher delivers relayed events.
type Publisher interface {
	Publish(ctx context.Context, msgs ...Message) error
}

// OutboxRelay polls the event outbox and publishes events to the broker.
// Delivery is at least once: rows are removed only after the broker accepts
// the whole batch.
type OutboxRelay struct {
	source      OutboxSource
	publisher   Publisher
	metrics     *Metrics
	logger      *slog.Logger
	interval    time.Duration
	batchSize   int
	topicPrefix string
}

// NewOutboxRelay creates a relay using the poll settings from cfg.
func NewOutboxRelay(source OutboxSource, publisher Publisher, metrics *Metrics, cfg *Config, logger *slog.Logger) *OutboxRelay {
	return &OutboxRelay{
		source:      source,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger,
		interval:    cfg.OutboxPollInterval,
		batchSize:   cfg.OutboxBatchSize,
		topicPrefix: cfg.KafkaTopicPrefix,
	}
}

// Run polls until ctx is cancelled. Poll errors are logged and retried on
// the next tick.
func (r *OutboxRelay) Run(ctx context.Context) error {
	r.logger.Info("outbox relay started", "interval", r.interval, "batch_size", r.batchSize)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return nil
		case <-ticker.C:
			if _, err := r.Drain(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error("outbox relay error", "error", err)
			}
		}
	}
}

// Drain publishes batches until the outbox is empty and returns how many
// events were published.
func (r *OutboxRelay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := r.relayBatch(ctx)
		total += n
		if err != nil || n < r.batchSize {
			return total, err
		}
	}
}

func (r *OutboxRelay) relayBatch(ctx context.Context) (int, error) {
	records, err := r.source.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	msgs := make([]Message, 0, len(records))
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		value, err := json.Marshal(rec.OutboxDraft)
		if err != nil {
			return 0, fmt.Errorf("encode event %s: %w", rec.EventID, err)
		}
		msgs = append(msgs, Message{
			Topic: rec.Topic(r.topicPrefix),
			Key:   []byte(rec.PartitionKey),
			Value: value,
		})
		ids = append(ids, rec.SeqID)
	}

	if err := r.publisher.Publish(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("publish %d events: %w", len(msgs), err)
	}
	if err := r.source.MarkPublished(ctx, ids); err != nil {
		return 0, fmt.Errorf("mark published: %w", err)
	}

	r.metrics.AddOutboxPublished(len(msgs))
	r.logger.Debug("outbox batch relayed", "published", len(msgs), "last_seq", ids[len(ids)-1])
	return len(msgs), nil
}
