package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the closed set of order states. Values are validated at the
// API boundary; raw strings never reach the store.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"   // initial
	StatusRequested OrderStatus = "requested" // customer asked to cancel
	StatusCompleted OrderStatus = "completed" // terminal
	StatusCancelled OrderStatus = "cancelled" // terminal
)

// ParseStatus validates a raw status string.
func ParseStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusPending, StatusRequested, StatusCompleted, StatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// IsTerminal reports whether no further transition is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// transitionSources is the single source of truth for transition legality:
// for each target status, the statuses an order may move from.
//
//	pending   -> requested | completed | cancelled
//	requested -> cancelled | pending
var transitionSources = map[OrderStatus][]OrderStatus{
	StatusCompleted: {StatusPending},
	StatusRequested: {StatusPending},
	StatusCancelled: {StatusPending, StatusRequested},
	StatusPending:   {StatusRequested}, // reject a cancellation request
}

// TransitionSources returns the legal source statuses for a target status.
// The returned slice must not be mutated.
func TransitionSources(to OrderStatus) []OrderStatus {
	return transitionSources[to]
}

// CanTransition reports whether an order may move from one status to another.
// A transition to the current status is allowed as an idempotent no-op.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, src := range transitionSources[to] {
		if src == from {
			return true
		}
	}
	return false
}

// PaymentMethodCOD is the only payment method in use.
const PaymentMethodCOD = "Cash on Delivery"

// Order is a placed order. TotalPrice is a snapshot computed at submission
// time, never recomputed afterward.
type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CustomerName   string             `bson:"customer_name" json:"customerName"`
	PrimaryPhone   string             `bson:"primary_phone" json:"primaryPhone"`
	AlternatePhone string             `bson:"alternate_phone,omitempty" json:"alternatePhone,omitempty"`
	Email          string             `bson:"email,omitempty" json:"email,omitempty"`
	Address        string             `bson:"address" json:"address"`
	Location       string             `bson:"location" json:"location"`
	LineItems      []LineItem         `bson:"line_items" json:"lineItems"`
	TotalPrice     int64              `bson:"total_price" json:"totalPrice"`
	PaymentMethod  string             `bson:"payment_method" json:"paymentMethod"`
	TransactionID  string             `bson:"transaction_id,omitempty" json:"transactionId,omitempty"`
	IdempotencyKey string             `bson:"idempotency_key,omitempty" json:"-"`
	Status         OrderStatus        `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
}

// ItemsTotal sums unitPrice×quantity over the line items.
func ItemsTotal(items []LineItem) int64 {
	var total int64
	for _, it := range items {
		total += it.UnitPrice * it.Quantity
	}
	return total
}

// OrderTotal is the items total plus the shipping surcharge.
func OrderTotal(items []LineItem, shippingFee int64) int64 {
	return ItemsTotal(items) + shippingFee
}
