package application

import (
	"context"
	"time"
)

type EventType string

const (
	EventEntryCreated EventType = "entry.created"
	EventEntryUpdated EventType = "entry.updated"
	EventEntryDeleted EventType = "entry.deleted"
	EventEntryLiked   EventType = "entry.liked"
	EventEntryUnliked EventType = "entry.unliked"
)

// CatalogEvent is emitted after a successful mutation.
type CatalogEvent struct {
	Type       EventType `json:"type"`
	EntryID    string    `json:"entry_id"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher delivers catalog events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev CatalogEvent) error
}
