package notify

import (
	"context"
	"fmt"

	"soulsync-backend/internal/config"
	"soulsync-backend/internal/models"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// PushProvider delivers a push notification to a device token
type PushProvider interface {
	Send(ctx context.Context, deviceToken string, kind EventKind, date models.Date) error
}

// APNSProvider sends pushes through Apple's push service using
// token-based authentication
type APNSProvider struct {
	client *apns2.Client
	topic  string
}

// NewAPNSProvider creates a push provider from config. Returns an
// error when the signing key cannot be loaded.
func NewAPNSProvider(cfg config.PushConfig) (*APNSProvider, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNSProvider{client: client, topic: cfg.Topic}, nil
}

// Send delivers one push. High priority, default sound, badge 1, and a
// collapse id derived from the date so repeated sends for the same
// date coalesce on the device.
func (p *APNSProvider) Send(ctx context.Context, deviceToken string, kind EventKind, date models.Date) error {
	title, body := pushContent(kind, date)

	pl := payload.NewPayload().
		AlertTitle(title).
		AlertBody(body).
		Sound("default").
		Badge(1).
		Custom("dateId", date.ID).
		Custom("type", string(kind)).
		Custom("link", deepLink)

	n := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       p.topic,
		CollapseID:  "date-" + date.ID,
		Priority:    apns2.PriorityHigh,
		PushType:    apns2.PushTypeAlert,
		Payload:     pl,
	}

	res, err := p.client.PushWithContext(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %s", res.Reason)
	}
	return nil
}
