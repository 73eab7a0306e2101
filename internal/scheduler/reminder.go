package scheduler

import (
	"context"
	"time"

	"soulsync-backend/internal/models"
	"soulsync-backend/internal/notify"

	"github.com/rs/zerolog/log"
)

// DateScanner is the persistence surface the reminder scan needs
type DateScanner interface {
	ListDueForReminder(ctx context.Context, from, to time.Time) ([]models.Date, error)
	ClaimReminder(ctx context.Context, id string) (bool, error)
}

// Lease serializes scan cycles across overlapping runs and instances
type Lease interface {
	TryAcquire(ctx context.Context) (release func(), ok bool, err error)
}

// Reminder polls for scheduled dates entering the reminder window and
// dispatches a reminder batch to both members at most once per date.
type Reminder struct {
	dates      DateScanner
	couples    notify.CoupleSource
	dispatcher notify.EventNotifier
	lease      Lease
	interval   time.Duration
	lookahead  time.Duration
	now        func() time.Time
}

// NewReminder creates a reminder scheduler
func NewReminder(dates DateScanner, couples notify.CoupleSource, dispatcher notify.EventNotifier, lease Lease, interval, lookahead time.Duration) *Reminder {
	return &Reminder{
		dates:      dates,
		couples:    couples,
		dispatcher: dispatcher,
		lease:      lease,
		interval:   interval,
		lookahead:  lookahead,
		now:        time.Now,
	}
}

// Run polls on the configured interval until the context is cancelled
func (r *Reminder) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Info().
		Dur("interval", r.interval).
		Dur("lookahead", r.lookahead).
		Msg("Reminder scheduler started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Reminder scheduler stopped")
			return
		case <-ticker.C:
			r.Scan(ctx)
		}
	}
}

// Scan runs one reminder cycle. The whole cycle runs under a store
// lease so overlapping cycles cannot both pass the reminder checks.
func (r *Reminder) Scan(ctx context.Context) {
	release, ok, err := r.lease.TryAcquire(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to acquire reminder scan lease")
		return
	}
	if !ok {
		log.Debug().Msg("Reminder scan already running elsewhere, skipping cycle")
		return
	}
	defer release()

	now := r.now()
	due, err := r.dates.ListDueForReminder(ctx, now, now.Add(r.lookahead))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list dates due for reminder")
		return
	}

	sent := 0
	for _, date := range due {
		if r.remind(ctx, date) {
			sent++
		}
	}
	if sent > 0 {
		log.Info().Int("count", sent).Msg("Sent date reminders")
	}
}

// remind claims the reminder flag and, having won the claim, sends the
// reminder batch to both members. Claim-before-send: a crash between
// the claim and the sends loses this reminder instead of duplicating
// it on the next cycle.
func (r *Reminder) remind(ctx context.Context, date models.Date) bool {
	claimed, err := r.dates.ClaimReminder(ctx, date.ID)
	if err != nil {
		log.Error().Err(err).Str("date_id", date.ID).Msg("Failed to claim reminder")
		return false
	}
	if !claimed {
		return false
	}

	couple, err := r.couples.GetByCode(ctx, date.CoupleCode)
	if err != nil {
		log.Error().
			Err(err).
			Str("date_id", date.ID).
			Str("couple_code", date.CoupleCode).
			Msg("Couple not found for reminder")
		return false
	}

	r.dispatcher.NotifyAll(ctx, couple.Users, date, notify.KindReminder)
	return true
}
