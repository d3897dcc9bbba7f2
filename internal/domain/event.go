package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates outbox event types.
type EventType string

const (
	EventScoresSubmitted EventType = "scores.submitted"
	EventLeagueCompleted EventType = "league.completed"
	EventLeagueDeleted   EventType = "league.deleted"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateLeague AggregateType = "league"
	AggregateGame   AggregateType = "game"
)

// OutboxDraft is an event written to event_outbox in the same transaction as
// the change it describes.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// OutboxRecord is a stored outbox row awaiting relay.
type OutboxRecord struct {
	SeqID int64
	OutboxDraft
}

// Topic is the broker topic the relay publishes this event to.
func (d OutboxDraft) Topic(prefix string) string {
	return prefix + "." + string(d.AggregateType) + "." + string(d.EventType)
}
