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

type fakeBucketListStore struct {
	items map[string]*models.BucketListItem
}

func newFakeBucketListStore() *fakeBucketListStore {
	return &fakeBucketListStore{items: make(map[string]*models.BucketListItem)}
}

func (f *fakeBucketListStore) Create(_ context.Context, item *models.BucketListItem) error {
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeBucketListStore) GetByID(_ context.Context, id string) (*models.BucketListItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (f *fakeBucketListStore) ListByCouple(_ context.Context, coupleCode string) ([]models.BucketListItem, error) {
	var out []models.BucketListItem
	for _, item := range f.items {
		if item.CoupleCode == coupleCode {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeBucketListStore) UpdateDetails(_ context.Context, item *models.BucketListItem) error {
	if _, ok := f.items[item.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeBucketListStore) SetCompleted(_ context.Context, id string, completed bool, completedAt *time.Time, completedBy *string, updatedAt time.Time) error {
	item, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	item.Completed = completed
	item.CompletedAt = completedAt
	item.CompletedBy = completedBy
	item.UpdatedAt = updatedAt
	return nil
}

func (f *fakeBucketListStore) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func newBucketFixture(t *testing.T) (*BucketListService, *fakeBucketListStore, Session, Session) {
	t.Helper()
	couples := newFakeCoupleStore()
	amy, ben := seedCouple(t, couples)
	items := newFakeBucketListStore()
	return NewBucketListService(items, couples), items, amy, ben
}

func TestCreateBucketListItem(t *testing.T) {
	svc, _, amy, _ := newBucketFixture(t)

	item, err := svc.CreateItem(context.Background(), amy, BucketListInput{
		Title:    "See the northern lights",
		Category: "travel",
		Priority: "high",
	})
	require.NoError(t, err)
	assert.Equal(t, "amy", item.CreatedBy)
	assert.Equal(t, "Amy", item.CreatedByName)
	assert.False(t, item.Completed)
}

func TestCreateBucketListItemDefaults(t *testing.T) {
	svc, _, amy, _ := newBucketFixture(t)

	item, err := svc.CreateItem(context.Background(), amy, BucketListInput{Title: "Learn to salsa"})
	require.NoError(t, err)
	assert.Equal(t, "other", item.Category)
	assert.Equal(t, "medium", item.Priority)
}

func TestCreateBucketListItemValidation(t *testing.T) {
	svc, _, amy, _ := newBucketFixture(t)

	_, err := svc.CreateItem(context.Background(), amy, BucketListInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateItem(context.Background(), amy, BucketListInput{Title: "X", Category: "chores"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateItem(context.Background(), amy, BucketListInput{Title: "X", Priority: "urgent"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestToggleComplete(t *testing.T) {
	svc, _, amy, ben := newBucketFixture(t)

	item, err := svc.CreateItem(context.Background(), amy, BucketListInput{Title: "Cook a five-course dinner"})
	require.NoError(t, err)

	done, err := svc.ToggleComplete(context.Background(), ben, item.ID, true)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedBy)
	assert.Equal(t, "ben", *done.CompletedBy)
	assert.NotNil(t, done.CompletedAt)

	undone, err := svc.ToggleComplete(context.Background(), ben, item.ID, false)
	require.NoError(t, err)
	assert.False(t, undone.Completed)
	assert.Nil(t, undone.CompletedBy)
	assert.Nil(t, undone.CompletedAt)
}

func TestListItemsPartition(t *testing.T) {
	svc, _, amy, _ := newBucketFixture(t)

	active, err := svc.CreateItem(context.Background(), amy, BucketListInput{Title: "Road trip"})
	require.NoError(t, err)
	done, err := svc.CreateItem(context.Background(), amy, BucketListInput{Title: "Picnic"})
	require.NoError(t, err)
	_, err = svc.ToggleComplete(context.Background(), amy, done.ID, true)
	require.NoError(t, err)

	lists, err := svc.ListItems(context.Background(), amy)
	require.NoError(t, err)
	require.Len(t, lists.Active, 1)
	assert.Equal(t, active.ID, lists.Active[0].ID)
	require.Len(t, lists.Completed, 1)
	assert.Equal(t, done.ID, lists.Completed[0].ID)
}

func TestBucketListMembershipEnforced(t *testing.T) {
	svc, items, amy, _ := newBucketFixture(t)

	require.NoError(t, items.Create(context.Background(), &models.BucketListItem{
		ID: "outsider", CoupleCode: "MOONDUO7", Title: "Not yours",
	}))

	_, err := svc.UpdateItem(context.Background(), amy, "outsider", BucketListInput{Title: "Stolen"})
	assert.ErrorIs(t, err, ErrNotCoupleMember)

	err = svc.DeleteItem(context.Background(), amy, "outsider")
	assert.ErrorIs(t, err, ErrNotCoupleMember)
}
