package notify

import (
	"context"
	"sync"
	"time"

	"soulsync-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Dispatcher fans a date event out to a recipient's channels. Push and
// email run concurrently per recipient; every failure is logged and
// swallowed so delivery never fails the operation that triggered it.
// A nil provider means that channel is not configured and is skipped.
type Dispatcher struct {
	push    PushProvider
	email   EmailProvider
	timeout time.Duration
}

// NewDispatcher creates a dispatcher. Either provider may be nil when
// the corresponding channel is unconfigured.
func NewDispatcher(push PushProvider, email EmailProvider, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{push: push, email: email, timeout: timeout}
}

// Notify sends the notification for one recipient on both channels and
// waits for both to finish
func (d *Dispatcher) Notify(ctx context.Context, user models.CoupleUser, date models.Date, kind EventKind) {
	var wg sync.WaitGroup

	if d.push != nil && user.PushToken != nil && *user.PushToken != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.sendPush(ctx, *user.PushToken, user.UserID, date, kind)
		}()
	} else if d.push != nil {
		log.Debug().
			Str("user_id", user.UserID).
			Str("date_id", date.ID).
			Msg("No push token for user, skipping push")
	}

	if d.email != nil && user.Email != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.sendEmail(ctx, user, date, kind)
		}()
	}

	wg.Wait()
}

// NotifyAll sends the notification to several recipients concurrently
// and waits for all sends to finish
func (d *Dispatcher) NotifyAll(ctx context.Context, users []models.CoupleUser, date models.Date, kind EventKind) {
	var wg sync.WaitGroup
	for _, user := range users {
		wg.Add(1)
		go func(u models.CoupleUser) {
			defer wg.Done()
			d.Notify(ctx, u, date, kind)
		}(user)
	}
	wg.Wait()
}

func (d *Dispatcher) sendPush(ctx context.Context, token, userID string, date models.Date, kind EventKind) {
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.push.Send(sendCtx, token, kind, date); err != nil {
		// Token might be stale; never fail the surrounding operation
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("date_id", date.ID).
			Str("type", string(kind)).
			Msg("Failed to send push notification")
		return
	}
	log.Info().
		Str("user_id", userID).
		Str("date_id", date.ID).
		Str("type", string(kind)).
		Msg("Push notification sent")
}

func (d *Dispatcher) sendEmail(ctx context.Context, user models.CoupleUser, date models.Date, kind EventKind) {
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.email.Send(sendCtx, user.Email, user.Name, kind, date); err != nil {
		log.Error().
			Err(err).
			Str("user_id", user.UserID).
			Str("date_id", date.ID).
			Str("type", string(kind)).
			Msg("Failed to send email notification")
		return
	}
	log.Info().
		Str("user_id", user.UserID).
		Str("date_id", date.ID).
		Str("type", string(kind)).
		Msg("Email notification sent")
}
