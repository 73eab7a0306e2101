package scheduler

import (
	"context"
	"testing"
	"time"

	"soulsync-backend/internal/models"
	"soulsync-backend/internal/notify"
	"soulsync-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScanner struct {
	dates map[string]*models.Date
}

func newFakeScanner() *fakeScanner {
	return &fakeScanner{dates: make(map[string]*models.Date)}
}

func (f *fakeScanner) add(d models.Date) {
	cp := d
	f.dates[d.ID] = &cp
}

func (f *fakeScanner) ListDueForReminder(_ context.Context, from, to time.Time) ([]models.Date, error) {
	var out []models.Date
	for _, d := range f.dates {
		if d.Status == models.DateStatusScheduled && !d.ReminderSent &&
			!d.DateTime.Before(from) && !d.DateTime.After(to) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeScanner) ClaimReminder(_ context.Context, id string) (bool, error) {
	d, ok := f.dates[id]
	if !ok || d.ReminderSent {
		return false, nil
	}
	d.ReminderSent = true
	return true, nil
}

type fakeLease struct {
	held bool
}

func (f *fakeLease) TryAcquire(_ context.Context) (func(), bool, error) {
	if f.held {
		return nil, false, nil
	}
	f.held = true
	return func() { f.held = false }, true, nil
}

type fakeCoupleSource struct {
	couple *models.Couple
}

func (f *fakeCoupleSource) GetByCode(_ context.Context, code string) (*models.Couple, error) {
	if f.couple == nil || f.couple.Code != code {
		return nil, repository.ErrNotFound
	}
	return f.couple, nil
}

type reminderCall struct {
	DateID string
	Users  int
	Kind   notify.EventKind
}

type fakeNotifier struct {
	calls []reminderCall
}

func (f *fakeNotifier) Notify(_ context.Context, _ models.CoupleUser, date models.Date, kind notify.EventKind) {
	f.calls = append(f.calls, reminderCall{DateID: date.ID, Users: 1, Kind: kind})
}

func (f *fakeNotifier) NotifyAll(_ context.Context, users []models.CoupleUser, date models.Date, kind notify.EventKind) {
	f.calls = append(f.calls, reminderCall{DateID: date.ID, Users: len(users), Kind: kind})
}

func reminderFixture(now time.Time) (*Reminder, *fakeScanner, *fakeNotifier, *fakeLease) {
	couple := &models.Couple{
		Code: "SWEETHEARTS42",
		Users: []models.CoupleUser{
			{CoupleCode: "SWEETHEARTS42", UserID: "amy", Email: "amy@example.com", Name: "Amy"},
			{CoupleCode: "SWEETHEARTS42", UserID: "ben", Email: "ben@example.com", Name: "Ben"},
		},
	}
	scanner := newFakeScanner()
	notifier := &fakeNotifier{}
	lease := &fakeLease{}
	r := NewReminder(scanner, &fakeCoupleSource{couple: couple}, notifier, lease, 15*time.Minute, time.Hour)
	r.now = func() time.Time { return now }
	return r, scanner, notifier, lease
}

func scheduledDate(id string, at time.Time) models.Date {
	return models.Date{
		ID:         id,
		CoupleCode: "SWEETHEARTS42",
		Title:      "Stargazing",
		DateTime:   at,
		Status:     models.DateStatusScheduled,
	}
}

func TestScanSendsReminderOnce(t *testing.T) {
	now := time.Now()
	r, scanner, notifier, _ := reminderFixture(now)
	scanner.add(scheduledDate("d-1", now.Add(30*time.Minute)))

	r.Scan(context.Background())
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "d-1", notifier.calls[0].DateID)
	assert.Equal(t, 2, notifier.calls[0].Users)
	assert.Equal(t, notify.KindReminder, notifier.calls[0].Kind)

	// Second cycle finds nothing: the claim marked the date
	r.Scan(context.Background())
	assert.Len(t, notifier.calls, 1)
}

func TestScanWindowBounds(t *testing.T) {
	now := time.Now()
	r, scanner, notifier, _ := reminderFixture(now)

	scanner.add(scheduledDate("in-window", now.Add(45*time.Minute)))
	scanner.add(scheduledDate("too-far", now.Add(3*time.Hour)))
	scanner.add(scheduledDate("already-past", now.Add(-10*time.Minute)))

	r.Scan(context.Background())
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "in-window", notifier.calls[0].DateID)
}

func TestScanSkipsNonScheduled(t *testing.T) {
	now := time.Now()
	r, scanner, notifier, _ := reminderFixture(now)

	pending := scheduledDate("pending", now.Add(30*time.Minute))
	pending.Status = models.DateStatusPending
	scanner.add(pending)

	declined := scheduledDate("declined", now.Add(30*time.Minute))
	declined.Status = models.DateStatusDeclined
	scanner.add(declined)

	r.Scan(context.Background())
	assert.Empty(t, notifier.calls)
}

func TestScanSkipsWhenLeaseHeld(t *testing.T) {
	now := time.Now()
	r, scanner, notifier, lease := reminderFixture(now)
	scanner.add(scheduledDate("d-1", now.Add(30*time.Minute)))

	lease.held = true
	r.Scan(context.Background())
	assert.Empty(t, notifier.calls)

	// Date stays unclaimed for the next holder
	lease.held = false
	r.Scan(context.Background())
	assert.Len(t, notifier.calls, 1)
}

func TestScanLostClaimSendsNothing(t *testing.T) {
	now := time.Now()
	r, scanner, notifier, _ := reminderFixture(now)

	d := scheduledDate("d-1", now.Add(30*time.Minute))
	scanner.add(d)

	// Another instance claimed between list and claim
	_, err := scanner.ClaimReminder(context.Background(), "d-1")
	require.NoError(t, err)
	claimed, err := scanner.ClaimReminder(context.Background(), "d-1")
	require.NoError(t, err)
	require.False(t, claimed)

	r.Scan(context.Background())
	assert.Empty(t, notifier.calls)
}
