package notify

import (
	"context"

	"soulsync-backend/internal/models"
	"soulsync-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// EventNotifier is the dispatch surface the worker uses
type EventNotifier interface {
	Notify(ctx context.Context, user models.CoupleUser, date models.Date, kind EventKind)
	NotifyAll(ctx context.Context, users []models.CoupleUser, date models.Date, kind EventKind)
}

// CoupleSource resolves couples for event fan-out
type CoupleSource interface {
	GetByCode(ctx context.Context, code string) (*models.Couple, error)
}

// ChangeBroadcaster pushes live change messages to connected members
type ChangeBroadcaster interface {
	BroadcastToCouple(coupleCode string, message services.LiveMessage)
}

// Worker consumes date lifecycle events and fans notifications out to
// the couple. The write that produced an event has already succeeded;
// any failure here is logged and swallowed, never retried.
type Worker struct {
	events     <-chan services.DateEvent
	couples    CoupleSource
	dispatcher EventNotifier
	hub        ChangeBroadcaster
}

// NewWorker creates a notification worker. hub may be nil.
func NewWorker(bus *services.EventBus, couples CoupleSource, dispatcher EventNotifier, hub ChangeBroadcaster) *Worker {
	return &Worker{
		events:     bus.Events(),
		couples:    couples,
		dispatcher: dispatcher,
		hub:        hub,
	}
}

// Run consumes events until the context is cancelled or the bus closes
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.events:
			if !ok {
				return
			}
			w.Handle(ctx, ev)
		}
	}
}

// Handle processes a single date event
func (w *Worker) Handle(ctx context.Context, ev services.DateEvent) {
	date := ev.Date

	couple, err := w.couples.GetByCode(ctx, date.CoupleCode)
	if err != nil {
		log.Error().
			Err(err).
			Str("date_id", date.ID).
			Str("couple_code", date.CoupleCode).
			Msg("Couple not found for date event")
		return
	}

	if w.hub != nil {
		w.hub.BroadcastToCouple(date.CoupleCode, services.LiveMessage{
			Type: services.LiveDateChanged,
			Data: map[string]interface{}{"date_id": date.ID, "status": date.Status},
		})
	}

	// Edits, completions and deletions ride the live broadcast alone;
	// only lifecycle decisions push to devices
	switch ev.Kind {
	case services.DateEventCreated:
		if date.Status == models.DateStatusPending {
			// Request: only the partner decides, only the partner hears
			if partner, ok := couple.Partner(date.CreatedBy); ok {
				w.dispatcher.Notify(ctx, partner, date, KindRequest)
			}
			return
		}
		// Direct create: confirmation to both members. Reminder
		// delivery itself is driven solely by the polling scan.
		w.dispatcher.NotifyAll(ctx, couple.Users, date, KindCreated)

	case services.DateEventAccepted:
		if creator, ok := couple.UserByID(date.CreatedBy); ok {
			w.dispatcher.Notify(ctx, creator, date, KindAccepted)
		}

	case services.DateEventDeclined:
		if creator, ok := couple.UserByID(date.CreatedBy); ok {
			w.dispatcher.Notify(ctx, creator, date, KindDeclined)
		}
	}
}
