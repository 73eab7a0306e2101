package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"soulsync-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dateColumns = `id, couple_code, title, date_time, notes, type, created_by, created_by_name,
	created_at, updated_at, status, request_status, accepted_by, accepted_at,
	declined_by, declined_at, decline_reason, reminder_sent`

// DateRepository handles database operations for dates
type DateRepository struct {
	db *pgxpool.Pool
}

// NewDateRepository creates a new date repository
func NewDateRepository(db *pgxpool.Pool) *DateRepository {
	return &DateRepository{db: db}
}

// Create creates a new date
func (r *DateRepository) Create(ctx context.Context, date *models.Date) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO dates (id, couple_code, title, date_time, notes, type, created_by, created_by_name,
			created_at, updated_at, status, request_status, reminder_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, date.ID, date.CoupleCode, date.Title, date.DateTime, date.Notes, date.Type,
		date.CreatedBy, date.CreatedByName, date.CreatedAt, date.UpdatedAt,
		date.Status, date.RequestStatus, date.ReminderSent,
	)
	if err != nil {
		return fmt.Errorf("failed to create date: %w", err)
	}
	return nil
}

// GetByID retrieves a date by ID
func (r *DateRepository) GetByID(ctx context.Context, id string) (*models.Date, error) {
	row := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM dates WHERE id = $1`, dateColumns), id)
	date, err := scanDate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("date %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get date: %w", err)
	}
	return date, nil
}

// ListByCouple retrieves all dates for a couple ordered by date time
func (r *DateRepository) ListByCouple(ctx context.Context, coupleCode string) ([]models.Date, error) {
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM dates WHERE couple_code = $1 ORDER BY date_time`, dateColumns),
		coupleCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list dates: %w", err)
	}
	defer rows.Close()

	var dates []models.Date
	for rows.Next() {
		date, err := scanDate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		dates = append(dates, *date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dates: %w", err)
	}
	return dates, nil
}

// AcceptPending transitions a date from pending to scheduled. Returns
// false when the date is not pending; the guard and the write are a
// single conditional statement.
func (r *DateRepository) AcceptPending(ctx context.Context, id, acceptedBy string, acceptedAt time.Time) (bool, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE dates
		SET status = $1, request_status = $2, accepted_by = $3, accepted_at = $4, updated_at = $4
		WHERE id = $5 AND status = $6
	`, models.DateStatusScheduled, models.RequestStatusAccepted, acceptedBy, acceptedAt,
		id, models.DateStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to accept date request: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// DeclinePending transitions a date from pending to declined
func (r *DateRepository) DeclinePending(ctx context.Context, id, declinedBy, reason string, declinedAt time.Time) (bool, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE dates
		SET status = $1, request_status = $2, declined_by = $3, declined_at = $4, decline_reason = $5, updated_at = $4
		WHERE id = $6 AND status = $7
	`, models.DateStatusDeclined, models.RequestStatusDeclined, declinedBy, declinedAt, reason,
		id, models.DateStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to decline date request: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// CompleteScheduled transitions a date from scheduled to completed
func (r *DateRepository) CompleteScheduled(ctx context.Context, id string, completedAt time.Time) (bool, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE dates SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4
	`, models.DateStatusCompleted, completedAt, id, models.DateStatusScheduled)
	if err != nil {
		return false, fmt.Errorf("failed to complete date: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// UpdateDetails updates the editable fields of a date
func (r *DateRepository) UpdateDetails(ctx context.Context, date *models.Date) error {
	result, err := r.db.Exec(ctx, `
		UPDATE dates SET title = $1, date_time = $2, notes = $3, type = $4, updated_at = $5
		WHERE id = $6
	`, date.Title, date.DateTime, date.Notes, date.Type, date.UpdatedAt, date.ID)
	if err != nil {
		return fmt.Errorf("failed to update date: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("date %s: %w", date.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a date by ID
func (r *DateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM dates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete date: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("date %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListDueForReminder retrieves scheduled, unreminded dates inside the
// reminder window
func (r *DateRepository) ListDueForReminder(ctx context.Context, from, to time.Time) ([]models.Date, error) {
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM dates
		WHERE status = $1 AND NOT reminder_sent AND date_time >= $2 AND date_time <= $3
		ORDER BY date_time
	`, dateColumns), models.DateStatusScheduled, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list dates due for reminder: %w", err)
	}
	defer rows.Close()

	var dates []models.Date
	for rows.Next() {
		date, err := scanDate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		dates = append(dates, *date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dates: %w", err)
	}
	return dates, nil
}

// ClaimReminder flips reminder_sent to true if it is still false.
// Returns true when this caller won the claim. Flagging happens before
// dispatch, so a crash right after the claim loses the reminder
// instead of duplicating it.
func (r *DateRepository) ClaimReminder(ctx context.Context, id string) (bool, error) {
	result, err := r.db.Exec(ctx,
		`UPDATE dates SET reminder_sent = TRUE WHERE id = $1 AND NOT reminder_sent`, id)
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

func scanDate(row pgx.Row) (*models.Date, error) {
	var date models.Date
	err := row.Scan(
		&date.ID, &date.CoupleCode, &date.Title, &date.DateTime, &date.Notes, &date.Type,
		&date.CreatedBy, &date.CreatedByName, &date.CreatedAt, &date.UpdatedAt,
		&date.Status, &date.RequestStatus, &date.AcceptedBy, &date.AcceptedAt,
		&date.DeclinedBy, &date.DeclinedAt, &date.DeclineReason, &date.ReminderSent,
	)
	if err != nil {
		return nil, err
	}
	return &date, nil
}
