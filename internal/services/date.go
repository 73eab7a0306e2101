package services

import (
	"context"
	"fmt"
	"time"

	"soulsync-backend/internal/models"

	"github.com/google/uuid"
)

// Date type tags recognised by the planner
var dateTypes = map[string]bool{
	"deep-talk":         true,
	"silent-connection": true,
	"quality-time":      true,
	"surprise":          true,
	"game-night":        true,
	"watch-party":       true,
	"self-care":         true,
	"other":             true,
}

// DateStore is the persistence surface the date service needs
type DateStore interface {
	Create(ctx context.Context, date *models.Date) error
	GetByID(ctx context.Context, id string) (*models.Date, error)
	ListByCouple(ctx context.Context, coupleCode string) ([]models.Date, error)
	AcceptPending(ctx context.Context, id, acceptedBy string, acceptedAt time.Time) (bool, error)
	DeclinePending(ctx context.Context, id, declinedBy, reason string, declinedAt time.Time) (bool, error)
	CompleteScheduled(ctx context.Context, id string, completedAt time.Time) (bool, error)
	UpdateDetails(ctx context.Context, date *models.Date) error
	Delete(ctx context.Context, id string) error
}

// DateInput carries the user-supplied fields of a new or edited date
type DateInput struct {
	Title    string    `json:"title"`
	DateTime time.Time `json:"date_time"`
	Notes    string    `json:"notes"`
	Type     string    `json:"type"`
}

// DateService drives the date request lifecycle
type DateService struct {
	dates   DateStore
	couples CoupleStore
	bus     *EventBus
	now     func() time.Time
}

// NewDateService creates a new date service
func NewDateService(dates DateStore, couples CoupleStore, bus *EventBus) *DateService {
	return &DateService{
		dates:   dates,
		couples: couples,
		bus:     bus,
		now:     time.Now,
	}
}

// CreateDateRequest creates a date awaiting the partner's approval
func (s *DateService) CreateDateRequest(ctx context.Context, sess Session, input DateInput) (*models.Date, error) {
	return s.create(ctx, sess, input, models.DateStatusPending, models.RequestStatusPending)
}

// CreateDate creates a date directly, bypassing approval
func (s *DateService) CreateDate(ctx context.Context, sess Session, input DateInput) (*models.Date, error) {
	return s.create(ctx, sess, input, models.DateStatusScheduled, models.RequestStatusAutoApproved)
}

func (s *DateService) create(ctx context.Context, sess Session, input DateInput, status, requestStatus string) (*models.Date, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrInvalidInput)
	}
	if input.DateTime.IsZero() {
		return nil, fmt.Errorf("date_time is required: %w", ErrInvalidInput)
	}
	if input.Type == "" {
		input.Type = "other"
	}
	if !dateTypes[input.Type] {
		return nil, fmt.Errorf("unknown date type %q: %w", input.Type, ErrInvalidInput)
	}

	couple, err := s.couples.GetByCode(ctx, sess.CoupleCode)
	if err != nil {
		return nil, err
	}
	creator, ok := couple.UserByID(sess.UserID)
	if !ok {
		return nil, ErrNotCoupleMember
	}

	now := s.now()
	date := &models.Date{
		ID:            uuid.New().String(),
		CoupleCode:    sess.CoupleCode,
		Title:         input.Title,
		DateTime:      input.DateTime,
		Notes:         input.Notes,
		Type:          input.Type,
		CreatedBy:     creator.UserID,
		CreatedByName: creator.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
		Status:        status,
		RequestStatus: requestStatus,
	}

	if err := s.dates.Create(ctx, date); err != nil {
		return nil, err
	}

	s.bus.Publish(DateEvent{Kind: DateEventCreated, Date: *date})
	return date, nil
}

// AcceptDateRequest transitions a pending request to scheduled. Only
// the non-creating partner may accept.
func (s *DateService) AcceptDateRequest(ctx context.Context, sess Session, dateID string) (*models.Date, error) {
	date, err := s.memberDate(ctx, sess, dateID)
	if err != nil {
		return nil, err
	}
	if date.CreatedBy == sess.UserID {
		return nil, ErrOwnRequest
	}

	ok, err := s.dates.AcceptPending(ctx, dateID, sess.UserID, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("date %s is not pending: %w", dateID, ErrInvalidTransition)
	}

	updated, err := s.dates.GetByID(ctx, dateID)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(DateEvent{Kind: DateEventAccepted, Date: *updated})
	return updated, nil
}

// DeclineDateRequest transitions a pending request to declined
func (s *DateService) DeclineDateRequest(ctx context.Context, sess Session, dateID, reason string) (*models.Date, error) {
	date, err := s.memberDate(ctx, sess, dateID)
	if err != nil {
		return nil, err
	}
	if date.CreatedBy == sess.UserID {
		return nil, ErrOwnRequest
	}

	ok, err := s.dates.DeclinePending(ctx, dateID, sess.UserID, reason, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("date %s is not pending: %w", dateID, ErrInvalidTransition)
	}

	updated, err := s.dates.GetByID(ctx, dateID)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(DateEvent{Kind: DateEventDeclined, Date: *updated})
	return updated, nil
}

// CompleteDate marks a scheduled date as completed
func (s *DateService) CompleteDate(ctx context.Context, sess Session, dateID string) (*models.Date, error) {
	if _, err := s.memberDate(ctx, sess, dateID); err != nil {
		return nil, err
	}

	ok, err := s.dates.CompleteScheduled(ctx, dateID, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("date %s is not scheduled: %w", dateID, ErrInvalidTransition)
	}

	updated, err := s.dates.GetByID(ctx, dateID)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(DateEvent{Kind: DateEventCompleted, Date: *updated})
	return updated, nil
}

// UpdateDate edits the title, time, notes or type of a date
func (s *DateService) UpdateDate(ctx context.Context, sess Session, dateID string, input DateInput) (*models.Date, error) {
	date, err := s.memberDate(ctx, sess, dateID)
	if err != nil {
		return nil, err
	}

	if input.Title != "" {
		date.Title = input.Title
	}
	if !input.DateTime.IsZero() {
		date.DateTime = input.DateTime
	}
	if input.Type != "" {
		if !dateTypes[input.Type] {
			return nil, fmt.Errorf("unknown date type %q: %w", input.Type, ErrInvalidInput)
		}
		date.Type = input.Type
	}
	date.Notes = input.Notes
	date.UpdatedAt = s.now()

	if err := s.dates.UpdateDetails(ctx, date); err != nil {
		return nil, err
	}

	s.bus.Publish(DateEvent{Kind: DateEventUpdated, Date: *date})
	return date, nil
}

// DeleteDate removes a date
func (s *DateService) DeleteDate(ctx context.Context, sess Session, dateID string) error {
	date, err := s.memberDate(ctx, sess, dateID)
	if err != nil {
		return err
	}
	if err := s.dates.Delete(ctx, dateID); err != nil {
		return err
	}

	s.bus.Publish(DateEvent{Kind: DateEventDeleted, Date: *date})
	return nil
}

// GetDate retrieves a single date, checking couple membership
func (s *DateService) GetDate(ctx context.Context, sess Session, dateID string) (*models.Date, error) {
	return s.memberDate(ctx, sess, dateID)
}

// DateLists partitions a couple's dates the way the planner views them
type DateLists struct {
	Upcoming     []models.Date `json:"upcoming"`
	Past         []models.Date `json:"past"`
	PendingForMe []models.Date `json:"pending_for_me"`
	MyPending    []models.Date `json:"my_pending"`
	Declined     []models.Date `json:"declined"`
}

// ListDates loads the couple's dates partitioned into upcoming, past,
// pending-for-me, my-pending and declined
func (s *DateService) ListDates(ctx context.Context, sess Session) (*DateLists, error) {
	dates, err := s.dates.ListByCouple(ctx, sess.CoupleCode)
	if err != nil {
		return nil, err
	}

	now := s.now()
	lists := &DateLists{}
	for _, d := range dates {
		switch {
		case d.Status == models.DateStatusPending && d.CreatedBy == sess.UserID:
			lists.MyPending = append(lists.MyPending, d)
		case d.Status == models.DateStatusPending:
			lists.PendingForMe = append(lists.PendingForMe, d)
		case d.Status == models.DateStatusDeclined:
			lists.Declined = append(lists.Declined, d)
		case d.Status == models.DateStatusScheduled && d.DateTime.After(now):
			lists.Upcoming = append(lists.Upcoming, d)
		case d.Status == models.DateStatusCompleted || !d.DateTime.After(now):
			lists.Past = append(lists.Past, d)
		}
	}
	return lists, nil
}

func (s *DateService) memberDate(ctx context.Context, sess Session, dateID string) (*models.Date, error) {
	date, err := s.dates.GetByID(ctx, dateID)
	if err != nil {
		return nil, err
	}
	if date.CoupleCode != sess.CoupleCode {
		return nil, ErrNotCoupleMember
	}
	return date, nil
}
