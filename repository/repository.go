package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jewelstore/models"
)

var (
	// ErrNotFound means no order exists with the given id.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidTransition means the order's current status does not permit
	// the requested target status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrDuplicateKey means an order with the same idempotency key already
	// exists; the caller should return that order instead of creating one.
	ErrDuplicateKey = errors.New("duplicate idempotency key")
)

// OrderRepository is the persistence boundary for orders. The server enforces
// transition legality here, atomically per order id, so two racing
// administrators resolve to last-writer-wins with no intermediate state.
type OrderRepository interface {
	// Create inserts the order, assigning its id. Returns ErrDuplicateKey if
	// the order carries an idempotency key already seen.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	// List returns orders in creation order. An empty status means all.
	List(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	// Transition moves the order to the target status if legal from its
	// current status. Retrying with the order already at the target status is
	// a no-op success. Returns ErrInvalidTransition otherwise.
	Transition(ctx context.Context, id primitive.ObjectID, to models.OrderStatus) (*models.Order, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	// Delete hard-deletes the order regardless of status.
	Delete(ctx context.Context, id primitive.ObjectID) error
}
