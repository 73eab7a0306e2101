package services

import (
	"context"
	"testing"
	"time"

	"soulsync-backend/internal/models"
	"soulsync-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDateStore struct {
	dates map[string]*models.Date
}

func newFakeDateStore() *fakeDateStore {
	return &fakeDateStore{dates: make(map[string]*models.Date)}
}

func (f *fakeDateStore) Create(_ context.Context, date *models.Date) error {
	cp := *date
	f.dates[date.ID] = &cp
	return nil
}

func (f *fakeDateStore) GetByID(_ context.Context, id string) (*models.Date, error) {
	d, ok := f.dates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDateStore) ListByCouple(_ context.Context, coupleCode string) ([]models.Date, error) {
	var out []models.Date
	for _, d := range f.dates {
		if d.CoupleCode == coupleCode {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDateStore) AcceptPending(_ context.Context, id, acceptedBy string, acceptedAt time.Time) (bool, error) {
	d, ok := f.dates[id]
	if !ok || d.Status != models.DateStatusPending {
		return false, nil
	}
	d.Status = models.DateStatusScheduled
	d.RequestStatus = models.RequestStatusAccepted
	d.AcceptedBy = &acceptedBy
	d.AcceptedAt = &acceptedAt
	d.UpdatedAt = acceptedAt
	return true, nil
}

func (f *fakeDateStore) DeclinePending(_ context.Context, id, declinedBy, reason string, declinedAt time.Time) (bool, error) {
	d, ok := f.dates[id]
	if !ok || d.Status != models.DateStatusPending {
		return false, nil
	}
	d.Status = models.DateStatusDeclined
	d.RequestStatus = models.RequestStatusDeclined
	d.DeclinedBy = &declinedBy
	d.DeclinedAt = &declinedAt
	if reason != "" {
		d.DeclineReason = &reason
	}
	d.UpdatedAt = declinedAt
	return true, nil
}

func (f *fakeDateStore) CompleteScheduled(_ context.Context, id string, completedAt time.Time) (bool, error) {
	d, ok := f.dates[id]
	if !ok || d.Status != models.DateStatusScheduled {
		return false, nil
	}
	d.Status = models.DateStatusCompleted
	d.UpdatedAt = completedAt
	return true, nil
}

func (f *fakeDateStore) UpdateDetails(_ context.Context, date *models.Date) error {
	if _, ok := f.dates[date.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *date
	f.dates[date.ID] = &cp
	return nil
}

func (f *fakeDateStore) Delete(_ context.Context, id string) error {
	if _, ok := f.dates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.dates, id)
	return nil
}

func (f *fakeDateStore) ListDueForReminder(_ context.Context, from, to time.Time) ([]models.Date, error) {
	var out []models.Date
	for _, d := range f.dates {
		if d.Status == models.DateStatusScheduled && !d.ReminderSent &&
			!d.DateTime.Before(from) && !d.DateTime.After(to) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDateStore) ClaimReminder(_ context.Context, id string) (bool, error) {
	d, ok := f.dates[id]
	if !ok || d.ReminderSent {
		return false, nil
	}
	d.ReminderSent = true
	return true, nil
}

func seedCouple(t *testing.T, store *fakeCoupleStore) (Session, Session) {
	t.Helper()
	now := time.Now()
	require.NoError(t, store.Create(context.Background(), &models.Couple{
		Code:         "SWEETHEARTS42",
		RecoveryCode: "AB12-CD34-EF56-GH78",
		CreatedAt:    now,
		Users: []models.CoupleUser{
			{CoupleCode: "SWEETHEARTS42", UserID: "amy", Email: "amy@example.com", Name: "Amy", LastSeen: now},
			{CoupleCode: "SWEETHEARTS42", UserID: "ben", Email: "ben@example.com", Name: "Ben", LastSeen: now},
		},
	}))
	return Session{CoupleCode: "SWEETHEARTS42", UserID: "amy"},
		Session{CoupleCode: "SWEETHEARTS42", UserID: "ben"}
}

func newDateFixture(t *testing.T) (*DateService, *fakeDateStore, *EventBus, Session, Session) {
	t.Helper()
	couples := newFakeCoupleStore()
	amy, ben := seedCouple(t, couples)
	dates := newFakeDateStore()
	bus := NewEventBus(16)
	return NewDateService(dates, couples, bus), dates, bus, amy, ben
}

func drainEvent(t *testing.T, bus *EventBus) DateEvent {
	t.Helper()
	select {
	case ev := <-bus.Events():
		return ev
	default:
		t.Fatal("expected a published event")
		return DateEvent{}
	}
}

func TestCreateDateRequest(t *testing.T) {
	svc, _, bus, amy, _ := newDateFixture(t)

	date, err := svc.CreateDateRequest(context.Background(), amy, DateInput{
		Title:    "Stargazing",
		DateTime: time.Now().Add(48 * time.Hour),
		Type:     "quality-time",
	})
	require.NoError(t, err)

	assert.Equal(t, models.DateStatusPending, date.Status)
	assert.Equal(t, models.RequestStatusPending, date.RequestStatus)
	assert.Equal(t, "amy", date.CreatedBy)
	assert.Equal(t, "Amy", date.CreatedByName)

	ev := drainEvent(t, bus)
	assert.Equal(t, DateEventCreated, ev.Kind)
	assert.Equal(t, date.ID, ev.Date.ID)
}

func TestCreateDateDirect(t *testing.T) {
	svc, _, bus, amy, _ := newDateFixture(t)

	date, err := svc.CreateDate(context.Background(), amy, DateInput{
		Title:    "Movie night",
		DateTime: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, models.DateStatusScheduled, date.Status)
	assert.Equal(t, models.RequestStatusAutoApproved, date.RequestStatus)
	assert.Equal(t, "other", date.Type)

	ev := drainEvent(t, bus)
	assert.Equal(t, DateEventCreated, ev.Kind)
	assert.Equal(t, models.DateStatusScheduled, ev.Date.Status)
}

func TestCreateDateValidation(t *testing.T) {
	svc, _, _, amy, _ := newDateFixture(t)

	_, err := svc.CreateDate(context.Background(), amy, DateInput{DateTime: time.Now()})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateDate(context.Background(), amy, DateInput{Title: "No time"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateDate(context.Background(), amy, DateInput{
		Title: "Bad type", DateTime: time.Now(), Type: "skydiving",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAcceptDateRequest(t *testing.T) {
	svc, _, bus, amy, ben := newDateFixture(t)

	date, err := svc.CreateDateRequest(context.Background(), amy, DateInput{
		Title: "Stargazing", DateTime: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	drainEvent(t, bus)

	accepted, err := svc.AcceptDateRequest(context.Background(), ben, date.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DateStatusScheduled, accepted.Status)
	assert.Equal(t, models.RequestStatusAccepted, accepted.RequestStatus)
	require.NotNil(t, accepted.AcceptedBy)
	assert.Equal(t, "ben", *accepted.AcceptedBy)
	assert.NotNil(t, accepted.AcceptedAt)

	ev := drainEvent(t, bus)
	assert.Equal(t, DateEventAccepted, ev.Kind)
}

func TestAcceptOwnRequestRejected(t *testing.T) {
	svc, _, bus, amy, _ := newDateFixture(t)

	date, err := svc.CreateDateRequest(context.Background(), amy, DateInput{
		Title: "Stargazing", DateTime: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	drainEvent(t, bus)

	_, err = svc.AcceptDateRequest(context.Background(), amy, date.ID)
	assert.ErrorIs(t, err, ErrOwnRequest)
}

func TestAcceptTwiceRejected(t *testing.T) {
	svc, _, bus, amy, ben := newDateFixture(t)

	date, err := svc.CreateDateRequest(context.Background(), amy, DateInput{
		Title: "Stargazing", DateTime: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.AcceptDateRequest(context.Background(), ben, date.ID)
	require.NoError(t, err)

	_, err = svc.AcceptDateRequest(context.Background(), ben, date.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.DeclineDateRequest(context.Background(), ben, date.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// only created + accepted made it onto the bus
	drainEvent(t, bus)
	drainEvent(t, bus)
	select {
	case ev := <-bus.Events():
		t.Fatalf("unexpected event %v", ev.Kind)
	default:
	}
}

func TestDeclineDateRequest(t *testing.T) {
	svc, _, bus, amy, ben := newDateFixture(t)

	date, err := svc.CreateDateRequest(context.Background(), amy, DateInput{
		Title: "Stargazing", DateTime: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	drainEvent(t, bus)

	declined, err := svc.DeclineDateRequest(context.Background(), ben, date.ID, "working late")
	require.NoError(t, err)
	assert.Equal(t, models.DateStatusDeclined, declined.Status)
	assert.Equal(t, models.RequestStatusDeclined, declined.RequestStatus)
	require.NotNil(t, declined.DeclinedBy)
	assert.Equal(t, "ben", *declined.DeclinedBy)
	require.NotNil(t, declined.DeclineReason)
	assert.Equal(t, "working late", *declined.DeclineReason)

	ev := drainEvent(t, bus)
	assert.Equal(t, DateEventDeclined, ev.Kind)
}

func TestCompleteDate(t *testing.T) {
	svc, _, _, amy, _ := newDateFixture(t)

	date, err := svc.CreateDate(context.Background(), amy, DateInput{
		Title: "Movie night", DateTime: time.Now().Add(-2 * time.Hour),
	})
	require.NoError(t, err)

	completed, err := svc.CompleteDate(context.Background(), amy, date.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DateStatusCompleted, completed.Status)

	_, err = svc.CompleteDate(context.Background(), amy, date.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompletePendingRejected(t *testing.T) {
	svc, _, _, amy, ben := newDateFixture(t)

	date, err := svc.CreateDateRequest(context.Background(), amy, DateInput{
		Title: "Stargazing", DateTime: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.CompleteDate(context.Background(), ben, date.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDateMembershipEnforced(t *testing.T) {
	svc, dates, _, amy, _ := newDateFixture(t)

	other := &models.Date{
		ID:         "outsider",
		CoupleCode: "MOONDUO7",
		Title:      "Not yours",
		DateTime:   time.Now(),
		Status:     models.DateStatusScheduled,
	}
	require.NoError(t, dates.Create(context.Background(), other))

	_, err := svc.GetDate(context.Background(), amy, "outsider")
	assert.ErrorIs(t, err, ErrNotCoupleMember)

	_, err = svc.AcceptDateRequest(context.Background(), amy, "outsider")
	assert.ErrorIs(t, err, ErrNotCoupleMember)

	err = svc.DeleteDate(context.Background(), amy, "outsider")
	assert.ErrorIs(t, err, ErrNotCoupleMember)
}

func TestUpdateDate(t *testing.T) {
	svc, _, _, amy, _ := newDateFixture(t)

	date, err := svc.CreateDate(context.Background(), amy, DateInput{
		Title: "Movie night", DateTime: time.Now().Add(24 * time.Hour), Notes: "bring snacks",
	})
	require.NoError(t, err)

	newTime := time.Now().Add(72 * time.Hour)
	updated, err := svc.UpdateDate(context.Background(), amy, date.ID, DateInput{
		Title: "Game night", DateTime: newTime, Type: "game-night",
	})
	require.NoError(t, err)
	assert.Equal(t, "Game night", updated.Title)
	assert.Equal(t, "game-night", updated.Type)
	assert.True(t, updated.DateTime.Equal(newTime))
	assert.Empty(t, updated.Notes)
}

func TestEveryMutationPublishesEvent(t *testing.T) {
	svc, _, bus, amy, _ := newDateFixture(t)

	date, err := svc.CreateDate(context.Background(), amy, DateInput{
		Title: "Movie night", DateTime: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, DateEventCreated, drainEvent(t, bus).Kind)

	_, err = svc.UpdateDate(context.Background(), amy, date.ID, DateInput{Title: "Game night"})
	require.NoError(t, err)
	ev := drainEvent(t, bus)
	assert.Equal(t, DateEventUpdated, ev.Kind)
	assert.Equal(t, "Game night", ev.Date.Title)

	_, err = svc.CompleteDate(context.Background(), amy, date.ID)
	require.NoError(t, err)
	ev = drainEvent(t, bus)
	assert.Equal(t, DateEventCompleted, ev.Kind)
	assert.Equal(t, models.DateStatusCompleted, ev.Date.Status)

	require.NoError(t, svc.DeleteDate(context.Background(), amy, date.ID))
	ev = drainEvent(t, bus)
	assert.Equal(t, DateEventDeleted, ev.Kind)
	assert.Equal(t, date.ID, ev.Date.ID)
}

func TestListDatesPartitions(t *testing.T) {
	svc, dates, _, amy, ben := newDateFixture(t)
	now := time.Now()

	seed := []models.Date{
		{ID: "up", CoupleCode: amy.CoupleCode, Title: "Upcoming", DateTime: now.Add(24 * time.Hour), Status: models.DateStatusScheduled},
		{ID: "past", CoupleCode: amy.CoupleCode, Title: "Past", DateTime: now.Add(-24 * time.Hour), Status: models.DateStatusScheduled},
		{ID: "done", CoupleCode: amy.CoupleCode, Title: "Done", DateTime: now.Add(48 * time.Hour), Status: models.DateStatusCompleted},
		{ID: "mine", CoupleCode: amy.CoupleCode, Title: "Mine", DateTime: now.Add(24 * time.Hour), Status: models.DateStatusPending, CreatedBy: "amy"},
		{ID: "theirs", CoupleCode: amy.CoupleCode, Title: "Theirs", DateTime: now.Add(24 * time.Hour), Status: models.DateStatusPending, CreatedBy: "ben"},
		{ID: "no", CoupleCode: amy.CoupleCode, Title: "No", DateTime: now.Add(24 * time.Hour), Status: models.DateStatusDeclined, CreatedBy: "amy"},
	}
	for i := range seed {
		require.NoError(t, dates.Create(context.Background(), &seed[i]))
	}

	lists, err := svc.ListDates(context.Background(), amy)
	require.NoError(t, err)

	require.Len(t, lists.Upcoming, 1)
	assert.Equal(t, "up", lists.Upcoming[0].ID)
	require.Len(t, lists.Past, 2)
	require.Len(t, lists.MyPending, 1)
	assert.Equal(t, "mine", lists.MyPending[0].ID)
	require.Len(t, lists.PendingForMe, 1)
	assert.Equal(t, "theirs", lists.PendingForMe[0].ID)
	require.Len(t, lists.Declined, 1)

	// The same pending date lands in the opposite bucket for the partner
	benLists, err := svc.ListDates(context.Background(), ben)
	require.NoError(t, err)
	require.Len(t, benLists.MyPending, 1)
	assert.Equal(t, "theirs", benLists.MyPending[0].ID)
	require.Len(t, benLists.PendingForMe, 1)
	assert.Equal(t, "mine", benLists.PendingForMe[0].ID)
}
