package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"soulsync-backend/internal/models"
	"soulsync-backend/internal/repository"

	"github.com/google/uuid"
)

var moodTags = map[string]bool{
	"happy":        true,
	"loved":        true,
	"content":      true,
	"excited":      true,
	"grateful":     true,
	"peaceful":     true,
	"tired":        true,
	"sad":          true,
	"anxious":      true,
	"disconnected": true,
}

// MoodStore is the persistence surface the mood service needs
type MoodStore interface {
	Create(ctx context.Context, entry *models.MoodEntry) error
	ListByCouple(ctx context.Context, coupleCode string) ([]models.MoodEntry, error)
	ListByDate(ctx context.Context, dateID string) ([]models.MoodEntry, error)
}

// MoodService handles per-date mood logging
type MoodService struct {
	moods   MoodStore
	dates   DateStore
	couples CoupleStore
	now     func() time.Time
}

// NewMoodService creates a new mood service
func NewMoodService(moods MoodStore, dates DateStore, couples CoupleStore) *MoodService {
	return &MoodService{
		moods:   moods,
		dates:   dates,
		couples: couples,
		now:     time.Now,
	}
}

// LogMood records the caller's mood for a date. Each member may log at
// most one mood per date.
func (s *MoodService) LogMood(ctx context.Context, sess Session, dateID, mood, notes string) (*models.MoodEntry, error) {
	if !moodTags[mood] {
		return nil, fmt.Errorf("unknown mood %q: %w", mood, ErrInvalidInput)
	}

	date, err := s.dates.GetByID(ctx, dateID)
	if err != nil {
		return nil, err
	}
	if date.CoupleCode != sess.CoupleCode {
		return nil, ErrNotCoupleMember
	}

	couple, err := s.couples.GetByCode(ctx, sess.CoupleCode)
	if err != nil {
		return nil, err
	}
	user, ok := couple.UserByID(sess.UserID)
	if !ok {
		return nil, ErrNotCoupleMember
	}

	entry := &models.MoodEntry{
		ID:         uuid.New().String(),
		CoupleCode: sess.CoupleCode,
		DateID:     dateID,
		UserID:     user.UserID,
		UserName:   user.Name,
		Mood:       mood,
		Notes:      notes,
		CreatedAt:  s.now(),
	}

	if err := s.moods.Create(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateMood) {
			return nil, ErrMoodAlreadyLogged
		}
		return nil, err
	}
	return entry, nil
}

// ListMoods retrieves the couple's mood entries, optionally filtered
// to a single date
func (s *MoodService) ListMoods(ctx context.Context, sess Session, dateID string) ([]models.MoodEntry, error) {
	if dateID == "" {
		return s.moods.ListByCouple(ctx, sess.CoupleCode)
	}

	date, err := s.dates.GetByID(ctx, dateID)
	if err != nil {
		return nil, err
	}
	if date.CoupleCode != sess.CoupleCode {
		return nil, ErrNotCoupleMember
	}
	return s.moods.ListByDate(ctx, dateID)
}
