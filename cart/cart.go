// Package cart holds a shopper's working set of selected line items behind a
// swappable storage cell, the way the storefront keeps its cart in browser
// storage. Call sites never touch the storage directly.
package cart

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"

	"jewelstore/models"
)

var (
	ErrQuantityTooLow = errors.New("quantity must be at least 1")
	ErrLineNotFound   = errors.New("cart line not found")
)

// Storage is one persistence cell holding the serialized cart. Implementations
// must treat a missing value as empty.
type Storage interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Clear() error
}

// Cart is the shopper's cart. Line items keep insertion order, and duplicate
// product ids stay as independent lines; each line is addressed by its own
// generated line id.
type Cart struct {
	mu        sync.Mutex
	storage   Storage
	listeners []func([]models.LineItem)
}

func New(storage Storage) *Cart {
	return &Cart{storage: storage}
}

// Subscribe registers a listener invoked after every mutation with the new
// contents, so a cart-count badge can refresh without polling. Listeners run
// outside the cart's lock and may read the cart.
func (c *Cart) Subscribe(fn func(items []models.LineItem)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// AddItem appends a new line entry and returns it with its assigned line id.
// Identical items are not merged.
func (c *Cart) AddItem(item models.LineItem) (models.LineItem, error) {
	if item.Quantity < 1 {
		return models.LineItem{}, ErrQuantityTooLow
	}
	c.mu.Lock()
	item.LineID = uuid.NewString()
	items := append(c.load(), item)
	if err := c.save(items); err != nil {
		c.mu.Unlock()
		return models.LineItem{}, err
	}
	listeners := c.listeners
	c.mu.Unlock()

	notify(listeners, items)
	return item, nil
}

// UpdateQuantity replaces a line's quantity. Zero and negative values are
// accepted here and rejected at checkout; the cart page historically allowed
// them.
func (c *Cart) UpdateQuantity(lineID string, quantity int64) error {
	c.mu.Lock()
	items := c.load()
	for i := range items {
		if items[i].LineID == lineID {
			items[i].Quantity = quantity
			if err := c.save(items); err != nil {
				c.mu.Unlock()
				return err
			}
			listeners := c.listeners
			c.mu.Unlock()

			notify(listeners, items)
			return nil
		}
	}
	c.mu.Unlock()
	return ErrLineNotFound
}

// RemoveItem deletes one line entry.
func (c *Cart) RemoveItem(lineID string) error {
	c.mu.Lock()
	items := c.load()
	for i := range items {
		if items[i].LineID == lineID {
			items = append(items[:i], items[i+1:]...)
			if err := c.save(items); err != nil {
				c.mu.Unlock()
				return err
			}
			listeners := c.listeners
			c.mu.Unlock()

			notify(listeners, items)
			return nil
		}
	}
	c.mu.Unlock()
	return ErrLineNotFound
}

// ReadAll returns the current line items in insertion order.
func (c *Cart) ReadAll() []models.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// Clear empties the cart, as done after a confirmed order placement.
func (c *Cart) Clear() error {
	c.mu.Lock()
	if err := c.storage.Clear(); err != nil {
		c.mu.Unlock()
		return err
	}
	listeners := c.listeners
	c.mu.Unlock()

	notify(listeners, nil)
	return nil
}

// load reads the stored cart. Corrupt or unreadable data is an empty cart;
// no error surfaces to the caller.
func (c *Cart) load() []models.LineItem {
	data, err := c.storage.Read()
	if err != nil || len(data) == 0 {
		return nil
	}
	var items []models.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	return items
}

func (c *Cart) save(items []models.LineItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.storage.Write(data)
}

func notify(listeners []func([]models.LineItem), items []models.LineItem) {
	for _, fn := range listeners {
		fn(items)
	}
}
