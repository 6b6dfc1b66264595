// Package event publishes moderation events (deletions, demotions) to a
// RabbitMQ topic exchange so downstream consumers can react to them.
package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Routing keys for moderation events.
const (
	TypeWarningAutoDeleted = "warning.auto_deleted"
	TypeWarningDeleted     = "warning.deleted"
	TypeContributorDemoted = "contributor.demoted"
)

// Event is the JSON body of every published message.
type Event struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	WarningID     string    `json:"warningId,omitempty"`
	MovieID       int64     `json:"movieId,omitempty"`
	ContributorID string    `json:"contributorId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// New stamps an event with a fresh id and the current time.
func New(typ string) Event {
	return Event{
		ID:         uuid.New(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher sends events somewhere. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
