// Package notify carries domain events out of the booking core. Delivery is
// fire-and-forget: a failed emit is logged and never rolls back the booking
// that produced it.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventLessonBooked    EventType = "lesson.booked"
	EventLessonProposed  EventType = "lesson.proposed"
	EventLessonConfirmed EventType = "lesson.confirmed"
	EventLessonDeclined  EventType = "lesson.declined"
	EventLessonCancelled EventType = "lesson.cancelled"
)

// Event is one domain notification addressed to a single user.
type Event struct {
	ID          uuid.UUID      `json:"id"`
	Type        EventType      `json:"type"`
	RecipientID int64          `json:"recipient_id"`
	SourceID    int64          `json:"source_id"` // lesson id the event refers to
	Payload     map[string]any `json:"payload,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewEvent stamps an event with an id and creation time.
func NewEvent(typ EventType, recipientID, sourceID int64, payload map[string]any) Event {
	return Event{
		ID:          uuid.New(),
		Type:        typ,
		RecipientID: recipientID,
		SourceID:    sourceID,
		Payload:     payload,
		CreatedAt:   time.Now().UTC(),
	}
}

// Sink consumes emitted events. Implementations must be safe to call from
// concurrent requests and should treat errors as non-fatal.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// Fanout delivers each event to every sink, returning the first error after
// all sinks have been tried.
type Fanout []Sink

func (f Fanout) Emit(ctx context.Context, event Event) error {
	var first error
	for _, s := range f {
		if err := s.Emit(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
