package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jewelstore/models"
)

func newOrder() *models.Order {
	return &models.Order{
		CustomerName:  "Amina",
		PrimaryPhone:  "+254712345678",
		Address:       "14 Riverside Drive, Nairobi",
		Location:      "Westlands",
		LineItems:     []models.LineItem{{ProductID: "ring-01", UnitPrice: 500, Quantity: 2}},
		TotalPrice:    1100,
		PaymentMethod: models.PaymentMethodCOD,
	}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrders()

	order := newOrder()
	require.NoError(t, repo.Create(ctx, order))
	assert.False(t, order.ID.IsZero())
	assert.Equal(t, models.StatusPending, order.Status)
	assert.False(t, order.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.CustomerName, got.CustomerName)
	assert.Equal(t, order.TotalPrice, got.TotalPrice)

	_, err = repo.GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_FilterAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrders()

	first := newOrder()
	second := newOrder()
	third := newOrder()
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, third))

	_, err := repo.Transition(ctx, second.ID, models.StatusCompleted)
	require.NoError(t, err)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, first.ID, all[0].ID, "creation order preserved")

	pending, err := repo.List(ctx, models.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	completed, err := repo.List(ctx, models.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, second.ID, completed[0].ID)
}

func TestTransition(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrders()

	order := newOrder()
	require.NoError(t, repo.Create(ctx, order))

	got, err := repo.Transition(ctx, order.ID, models.StatusRequested)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRequested, got.Status)

	// retry with the same target state is a no-op success
	got, err = repo.Transition(ctx, order.ID, models.StatusRequested)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRequested, got.Status)

	// requested orders cannot be completed
	_, err = repo.Transition(ctx, order.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err = repo.Transition(ctx, order.ID, models.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)

	// cancelled is terminal; status must remain unchanged
	_, err = repo.Transition(ctx, order.ID, models.StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	got, err = repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)

	_, err = repo.Transition(ctx, primitive.NewObjectID(), models.StatusCompleted)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrders()

	first := newOrder()
	first.IdempotencyKey = "attempt-1"
	require.NoError(t, repo.Create(ctx, first))

	retry := newOrder()
	retry.IdempotencyKey = "attempt-1"
	assert.ErrorIs(t, repo.Create(ctx, retry), ErrDuplicateKey)

	existing, err := repo.FindByIdempotencyKey(ctx, "attempt-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, existing.ID)

	_, err = repo.FindByIdempotencyKey(ctx, "attempt-2")
	assert.ErrorIs(t, err, ErrNotFound)

	// orders without a key never collide
	require.NoError(t, repo.Create(ctx, newOrder()))
	require.NoError(t, repo.Create(ctx, newOrder()))
}

func TestDelete_FreesIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrders()

	order := newOrder()
	order.IdempotencyKey = "attempt-1"
	require.NoError(t, repo.Create(ctx, order))
	require.NoError(t, repo.Delete(ctx, order.ID))

	// the key must die with the order, as the Mongo index entry does
	_, err := repo.FindByIdempotencyKey(ctx, "attempt-1")
	assert.ErrorIs(t, err, ErrNotFound)

	recreated := newOrder()
	recreated.IdempotencyKey = "attempt-1"
	require.NoError(t, repo.Create(ctx, recreated))

	existing, err := repo.FindByIdempotencyKey(ctx, "attempt-1")
	require.NoError(t, err)
	assert.Equal(t, recreated.ID, existing.ID)
	assert.False(t, existing.ID.IsZero())
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrders()

	order := newOrder()
	require.NoError(t, repo.Create(ctx, order))
	_, err := repo.Transition(ctx, order.ID, models.StatusCompleted)
	require.NoError(t, err)

	// remove works regardless of status
	require.NoError(t, repo.Delete(ctx, order.ID))
	_, err = repo.GetByID(ctx, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, order.ID), ErrNotFound)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}
