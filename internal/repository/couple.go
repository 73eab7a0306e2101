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

// CoupleRepository handles database operations for couples
type CoupleRepository struct {
	db *pgxpool.Pool
}

// NewCoupleRepository creates a new couple repository
func NewCoupleRepository(db *pgxpool.Pool) *CoupleRepository {
	return &CoupleRepository{db: db}
}

// Create creates a new couple together with its first user
func (r *CoupleRepository) Create(ctx context.Context, couple *models.Couple) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO couples (code, recovery_code, created_at) VALUES ($1, $2, $3)`,
		couple.Code, couple.RecoveryCode, couple.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create couple: %w", err)
	}

	for _, u := range couple.Users {
		if err := insertUser(ctx, tx, &u); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertUser(ctx context.Context, tx pgx.Tx, u *models.CoupleUser) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO couple_users (couple_code, user_id, email, name, timezone, joined_at, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.CoupleCode, u.UserID, u.Email, u.Name, u.Timezone, u.JoinedAt, u.LastSeen)
	if err != nil {
		return fmt.Errorf("failed to create couple user: %w", err)
	}
	return nil
}

// AddUser adds a second user to an existing couple. The parent couple
// row is locked for the duration of the transaction, so concurrent
// joins serialize on the membership count instead of both reading a
// pre-insert snapshot.
func (r *CoupleRepository) AddUser(ctx context.Context, u *models.CoupleUser) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var code string
	err = tx.QueryRow(ctx,
		`SELECT code FROM couples WHERE code = $1 FOR UPDATE`, u.CoupleCode,
	).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("couple %s: %w", u.CoupleCode, ErrNotFound)
		}
		return false, fmt.Errorf("failed to lock couple: %w", err)
	}

	var count int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM couple_users WHERE couple_code = $1`, u.CoupleCode,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count couple users: %w", err)
	}
	if count >= 2 {
		return false, nil
	}

	if err := insertUser(ctx, tx, u); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// GetByCode retrieves a couple with its users by couple code
func (r *CoupleRepository) GetByCode(ctx context.Context, code string) (*models.Couple, error) {
	var couple models.Couple
	err := r.db.QueryRow(ctx,
		`SELECT code, recovery_code, created_at FROM couples WHERE code = $1`, code,
	).Scan(&couple.Code, &couple.RecoveryCode, &couple.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("couple %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get couple: %w", err)
	}

	users, err := r.listUsers(ctx, code)
	if err != nil {
		return nil, err
	}
	couple.Users = users
	return &couple, nil
}

// GetByRecoveryCode retrieves a couple with its users by recovery code
func (r *CoupleRepository) GetByRecoveryCode(ctx context.Context, recoveryCode string) (*models.Couple, error) {
	var code string
	err := r.db.QueryRow(ctx,
		`SELECT code FROM couples WHERE recovery_code = $1`, recoveryCode,
	).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("recovery code: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get couple by recovery code: %w", err)
	}
	return r.GetByCode(ctx, code)
}

// CodeExists checks if a couple code already exists
func (r *CoupleRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM couples WHERE code = $1)`, code,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check code existence: %w", err)
	}
	return exists, nil
}

// UpdateLastSeen updates a single member's last-seen timestamp. Only
// that member's row is touched, so both partners can heartbeat
// concurrently without clobbering each other.
func (r *CoupleRepository) UpdateLastSeen(ctx context.Context, coupleCode, userID string, seenAt time.Time) error {
	result, err := r.db.Exec(ctx,
		`UPDATE couple_users SET last_seen = $1 WHERE couple_code = $2 AND user_id = $3`,
		seenAt, coupleCode, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update last seen: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("couple user: %w", ErrNotFound)
	}
	return nil
}

// UpdatePushToken updates a single member's push token
func (r *CoupleRepository) UpdatePushToken(ctx context.Context, coupleCode, userID string, pushToken *string, updatedAt time.Time) error {
	result, err := r.db.Exec(ctx,
		`UPDATE couple_users SET push_token = $1, push_token_updated_at = $2 WHERE couple_code = $3 AND user_id = $4`,
		pushToken, updatedAt, coupleCode, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("couple user: %w", ErrNotFound)
	}
	return nil
}

func (r *CoupleRepository) listUsers(ctx context.Context, coupleCode string) ([]models.CoupleUser, error) {
	rows, err := r.db.Query(ctx, `
		SELECT couple_code, user_id, email, name, timezone, joined_at, last_seen, push_token, push_token_updated_at
		FROM couple_users
		WHERE couple_code = $1
		ORDER BY joined_at
	`, coupleCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get couple users: %w", err)
	}
	defer rows.Close()

	var users []models.CoupleUser
	for rows.Next() {
		var u models.CoupleUser
		err := rows.Scan(
			&u.CoupleCode, &u.UserID, &u.Email, &u.Name, &u.Timezone,
			&u.JoinedAt, &u.LastSeen, &u.PushToken, &u.PushTokenUpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan couple user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating couple users: %w", err)
	}
	return users, nil
}
