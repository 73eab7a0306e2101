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

const bucketListColumns = `id, couple_code, title, notes, category, priority, created_by, created_by_name,
	created_at, updated_at, completed, completed_at, completed_by`

// BucketListRepository handles database operations for bucket list items
type BucketListRepository struct {
	db *pgxpool.Pool
}

// NewBucketListRepository creates a new bucket list repository
func NewBucketListRepository(db *pgxpool.Pool) *BucketListRepository {
	return &BucketListRepository{db: db}
}

// Create creates a new bucket list item
func (r *BucketListRepository) Create(ctx context.Context, item *models.BucketListItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO bucket_list_items (id, couple_code, title, notes, category, priority,
			created_by, created_by_name, created_at, updated_at, completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, item.ID, item.CoupleCode, item.Title, item.Notes, item.Category, item.Priority,
		item.CreatedBy, item.CreatedByName, item.CreatedAt, item.UpdatedAt, item.Completed,
	)
	if err != nil {
		return fmt.Errorf("failed to create bucket list item: %w", err)
	}
	return nil
}

// GetByID retrieves a bucket list item by ID
func (r *BucketListRepository) GetByID(ctx context.Context, id string) (*models.BucketListItem, error) {
	row := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM bucket_list_items WHERE id = $1`, bucketListColumns), id)
	item, err := scanBucketListItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("bucket list item %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get bucket list item: %w", err)
	}
	return item, nil
}

// ListByCouple retrieves all bucket list items for a couple, newest first
func (r *BucketListRepository) ListByCouple(ctx context.Context, coupleCode string) ([]models.BucketListItem, error) {
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM bucket_list_items WHERE couple_code = $1 ORDER BY created_at DESC`,
		bucketListColumns), coupleCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket list items: %w", err)
	}
	defer rows.Close()

	var items []models.BucketListItem
	for rows.Next() {
		item, err := scanBucketListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bucket list item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bucket list items: %w", err)
	}
	return items, nil
}

// UpdateDetails updates the editable fields of a bucket list item
func (r *BucketListRepository) UpdateDetails(ctx context.Context, item *models.BucketListItem) error {
	result, err := r.db.Exec(ctx, `
		UPDATE bucket_list_items SET title = $1, notes = $2, category = $3, priority = $4, updated_at = $5
		WHERE id = $6
	`, item.Title, item.Notes, item.Category, item.Priority, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update bucket list item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("bucket list item %s: %w", item.ID, ErrNotFound)
	}
	return nil
}

// SetCompleted toggles the completion state of a bucket list item
func (r *BucketListRepository) SetCompleted(ctx context.Context, id string, completed bool, completedAt *time.Time, completedBy *string, updatedAt time.Time) error {
	result, err := r.db.Exec(ctx, `
		UPDATE bucket_list_items SET completed = $1, completed_at = $2, completed_by = $3, updated_at = $4
		WHERE id = $5
	`, completed, completedAt, completedBy, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to toggle bucket list item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("bucket list item %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete deletes a bucket list item by ID
func (r *BucketListRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM bucket_list_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bucket list item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("bucket list item %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanBucketListItem(row pgx.Row) (*models.BucketListItem, error) {
	var item models.BucketListItem
	err := row.Scan(
		&item.ID, &item.CoupleCode, &item.Title, &item.Notes, &item.Category, &item.Priority,
		&item.CreatedBy, &item.CreatedByName, &item.CreatedAt, &item.UpdatedAt,
		&item.Completed, &item.CompletedAt, &item.CompletedBy,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
