package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"jewelstore/models"
)

// MemoryOrders is an in-memory OrderRepository for tests and local runs.
// It gives the same per-order atomicity as the Mongo implementation: every
// read-modify-write happens under one lock.
type MemoryOrders struct {
	mu       sync.RWMutex
	byID     map[primitive.ObjectID]models.Order
	byKey    map[string]primitive.ObjectID
	creation []primitive.ObjectID
}

func NewMemoryOrders() *MemoryOrders {
	return &MemoryOrders{
		byID:  make(map[primitive.ObjectID]models.Order),
		byKey: make(map[string]primitive.ObjectID),
	}
}

func (m *MemoryOrders) Create(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order.IdempotencyKey != "" {
		if _, exists := m.byKey[order.IdempotencyKey]; exists {
			return ErrDuplicateKey
		}
	}
	order.ID = primitive.NewObjectID()
	order.Status = models.StatusPending
	order.CreatedAt = time.Now().UTC()
	m.byID[order.ID] = *order
	m.creation = append(m.creation, order.ID)
	if order.IdempotencyKey != "" {
		m.byKey[order.IdempotencyKey] = order.ID
	}
	return nil
}

func (m *MemoryOrders) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &order, nil
}

func (m *MemoryOrders) List(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	orders := make([]models.Order, 0, len(m.creation))
	for _, id := range m.creation {
		order, ok := m.byID[id]
		if !ok {
			continue // deleted
		}
		if status != "" && order.Status != status {
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (m *MemoryOrders) Transition(ctx context.Context, id primitive.ObjectID, to models.OrderStatus) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !models.CanTransition(order.Status, to) {
		return nil, ErrInvalidTransition
	}
	order.Status = to
	m.byID[id] = order
	return &order, nil
}

func (m *MemoryOrders) FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byKey[key]
	if !ok {
		return nil, ErrNotFound
	}
	order, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &order, nil
}

func (m *MemoryOrders) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	// Drop the key with the order, as the Mongo index does with the document.
	if order.IdempotencyKey != "" {
		delete(m.byKey, order.IdempotencyKey)
	}
	delete(m.byID, id)
	return nil
}

var _ OrderRepository = (*MemoryOrders)(nil)
