package services

import (
	"context"
	"fmt"
	"time"

	"soulsync-backend/internal/models"

	"github.com/google/uuid"
)

var bucketCategories = map[string]bool{
	"travel":     true,
	"food":       true,
	"experience": true,
	"adventure":  true,
	"learning":   true,
	"milestone":  true,
	"other":      true,
}

var bucketPriorities = map[string]bool{
	"high":   true,
	"medium": true,
	"low":    true,
}

// BucketListStore is the persistence surface the bucket list service needs
type BucketListStore interface {
	Create(ctx context.Context, item *models.BucketListItem) error
	GetByID(ctx context.Context, id string) (*models.BucketListItem, error)
	ListByCouple(ctx context.Context, coupleCode string) ([]models.BucketListItem, error)
	UpdateDetails(ctx context.Context, item *models.BucketListItem) error
	SetCompleted(ctx context.Context, id string, completed bool, completedAt *time.Time, completedBy *string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// BucketListInput carries the user-supplied fields of a bucket list item
type BucketListInput struct {
	Title    string `json:"title"`
	Notes    string `json:"notes"`
	Category string `json:"category"`
	Priority string `json:"priority"`
}

// BucketListService handles the couple's shared bucket list
type BucketListService struct {
	items   BucketListStore
	couples CoupleStore
	now     func() time.Time
}

// NewBucketListService creates a new bucket list service
func NewBucketListService(items BucketListStore, couples CoupleStore) *BucketListService {
	return &BucketListService{
		items:   items,
		couples: couples,
		now:     time.Now,
	}
}

// CreateItem adds a new bucket list item
func (s *BucketListService) CreateItem(ctx context.Context, sess Session, input BucketListInput) (*models.BucketListItem, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrInvalidInput)
	}
	if input.Category == "" {
		input.Category = "other"
	}
	if !bucketCategories[input.Category] {
		return nil, fmt.Errorf("unknown category %q: %w", input.Category, ErrInvalidInput)
	}
	if input.Priority == "" {
		input.Priority = "medium"
	}
	if !bucketPriorities[input.Priority] {
		return nil, fmt.Errorf("unknown priority %q: %w", input.Priority, ErrInvalidInput)
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
	item := &models.BucketListItem{
		ID:            uuid.New().String(),
		CoupleCode:    sess.CoupleCode,
		Title:         input.Title,
		Notes:         input.Notes,
		Category:      input.Category,
		Priority:      input.Priority,
		CreatedBy:     creator.UserID,
		CreatedByName: creator.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// BucketLists partitions items into active and completed
type BucketLists struct {
	Active    []models.BucketListItem `json:"active"`
	Completed []models.BucketListItem `json:"completed"`
}

// ListItems loads the couple's bucket list partitioned by completion
func (s *BucketListService) ListItems(ctx context.Context, sess Session) (*BucketLists, error) {
	items, err := s.items.ListByCouple(ctx, sess.CoupleCode)
	if err != nil {
		return nil, err
	}

	lists := &BucketLists{}
	for _, item := range items {
		if item.Completed {
			lists.Completed = append(lists.Completed, item)
		} else {
			lists.Active = append(lists.Active, item)
		}
	}
	return lists, nil
}

// UpdateItem edits a bucket list item
func (s *BucketListService) UpdateItem(ctx context.Context, sess Session, itemID string, input BucketListInput) (*models.BucketListItem, error) {
	item, err := s.memberItem(ctx, sess, itemID)
	if err != nil {
		return nil, err
	}

	if input.Title != "" {
		item.Title = input.Title
	}
	if input.Category != "" {
		if !bucketCategories[input.Category] {
			return nil, fmt.Errorf("unknown category %q: %w", input.Category, ErrInvalidInput)
		}
		item.Category = input.Category
	}
	if input.Priority != "" {
		if !bucketPriorities[input.Priority] {
			return nil, fmt.Errorf("unknown priority %q: %w", input.Priority, ErrInvalidInput)
		}
		item.Priority = input.Priority
	}
	item.Notes = input.Notes
	item.UpdatedAt = s.now()

	if err := s.items.UpdateDetails(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ToggleComplete sets or clears the completion state of an item
func (s *BucketListService) ToggleComplete(ctx context.Context, sess Session, itemID string, completed bool) (*models.BucketListItem, error) {
	if _, err := s.memberItem(ctx, sess, itemID); err != nil {
		return nil, err
	}

	now := s.now()
	var completedAt *time.Time
	var completedBy *string
	if completed {
		completedAt = &now
		completedBy = &sess.UserID
	}

	if err := s.items.SetCompleted(ctx, itemID, completed, completedAt, completedBy, now); err != nil {
		return nil, err
	}
	return s.items.GetByID(ctx, itemID)
}

// DeleteItem removes a bucket list item
func (s *BucketListService) DeleteItem(ctx context.Context, sess Session, itemID string) error {
	if _, err := s.memberItem(ctx, sess, itemID); err != nil {
		return err
	}
	return s.items.Delete(ctx, itemID)
}

func (s *BucketListService) memberItem(ctx context.Context, sess Session, itemID string) (*models.BucketListItem, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.CoupleCode != sess.CoupleCode {
		return nil, ErrNotCoupleMember
	}
	return item, nil
}
