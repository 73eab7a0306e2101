package services

import (
	"soulsync-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// DateEventKind identifies a lifecycle transition of a date
type DateEventKind string

const (
	DateEventCreated   DateEventKind = "created"
	DateEventAccepted  DateEventKind = "accepted"
	DateEventDeclined  DateEventKind = "declined"
	DateEventUpdated   DateEventKind = "updated"
	DateEventCompleted DateEventKind = "completed"
	DateEventDeleted   DateEventKind = "deleted"
)

// DateEvent is published after a lifecycle write has succeeded. The
// notification worker consumes these; persistence never waits on
// delivery.
type DateEvent struct {
	Kind DateEventKind
	Date models.Date
}

// EventBus is a buffered fan-in of domain events
type EventBus struct {
	ch chan DateEvent
}

// NewEventBus creates an event bus with the given buffer size
func NewEventBus(size int) *EventBus {
	if size <= 0 {
		size = 64
	}
	return &EventBus{ch: make(chan DateEvent, size)}
}

// Publish enqueues an event without blocking the caller. When the
// buffer is full the event is dropped with a warning; the write it
// describes has already succeeded and must not be held up.
func (b *EventBus) Publish(ev DateEvent) {
	select {
	case b.ch <- ev:
	default:
		log.Warn().
			Str("date_id", ev.Date.ID).
			Str("kind", string(ev.Kind)).
			Msg("Event bus full, dropping date event")
	}
}

// Events returns the consumer side of the bus
func (b *EventBus) Events() <-chan DateEvent {
	return b.ch
}

// Close closes the bus; consumers drain remaining events and stop
func (b *EventBus) Close() {
	close(b.ch)
}
