package repository

import (
	"context"
	"errors"
	"fmt"

	"soulsync-backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateMood is returned when a user logs a second mood for the
// same date. Enforced by a unique index on (date_id, user_id).
var ErrDuplicateMood = errors.New("mood already logged for this date")

const uniqueViolationCode = "23505"

// MoodRepository handles database operations for mood entries
type MoodRepository struct {
	db *pgxpool.Pool
}

// NewMoodRepository creates a new mood repository
func NewMoodRepository(db *pgxpool.Pool) *MoodRepository {
	return &MoodRepository{db: db}
}

// Create creates a new mood entry
func (r *MoodRepository) Create(ctx context.Context, entry *models.MoodEntry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO moods (id, couple_code, date_id, user_id, user_name, mood, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.CoupleCode, entry.DateID, entry.UserID, entry.UserName,
		entry.Mood, entry.Notes, entry.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicateMood
		}
		return fmt.Errorf("failed to create mood entry: %w", err)
	}
	return nil
}

// ListByCouple retrieves all mood entries for a couple, newest first
func (r *MoodRepository) ListByCouple(ctx context.Context, coupleCode string) ([]models.MoodEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, couple_code, date_id, user_id, user_name, mood, notes, created_at
		FROM moods
		WHERE couple_code = $1
		ORDER BY created_at DESC
	`, coupleCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list mood entries: %w", err)
	}
	defer rows.Close()

	var entries []models.MoodEntry
	for rows.Next() {
		var e models.MoodEntry
		err := rows.Scan(&e.ID, &e.CoupleCode, &e.DateID, &e.UserID, &e.UserName, &e.Mood, &e.Notes, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mood entries: %w", err)
	}
	return entries, nil
}

// ListByDate retrieves the mood entries logged for one date
func (r *MoodRepository) ListByDate(ctx context.Context, dateID string) ([]models.MoodEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, couple_code, date_id, user_id, user_name, mood, notes, created_at
		FROM moods
		WHERE date_id = $1
		ORDER BY created_at
	`, dateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mood entries for date: %w", err)
	}
	defer rows.Close()

	var entries []models.MoodEntry
	for rows.Next() {
		var e models.MoodEntry
		err := rows.Scan(&e.ID, &e.CoupleCode, &e.DateID, &e.UserID, &e.UserName, &e.Mood, &e.Notes, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mood entries: %w", err)
	}
	return entries, nil
}
