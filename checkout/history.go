package checkout

import (
	"encoding/json"

	"jewelstore/cart"
)

// History is the shopper's locally kept list of placed order ids. Shoppers
// are unauthenticated, so this list is the only way back to past orders;
// losing the storage cell loses the history. Corrupt data reads as empty.
type History struct {
	storage cart.Storage
}

func NewHistory(storage cart.Storage) *History {
	return &History{storage: storage}
}

// Append records a placed order id.
func (h *History) Append(orderID string) error {
	ids := h.IDs()
	ids = append(ids, orderID)
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return h.storage.Write(data)
}

// IDs returns the recorded order ids in placement order.
func (h *History) IDs() []string {
	data, err := h.storage.Read()
	if err != nil || len(data) == 0 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil
	}
	return ids
}
