// controllers/order.go
package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jewelstore/models"
	"jewelstore/repository"
	"jewelstore/utils"
)

// IdempotencyKeyHeader is the client-supplied deduplication key on order
// creation. Without it, a retried submission creates a second order.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderController handles order creation, listing and status transitions.
type OrderController struct {
	Repo         repository.OrderRepository
	EmailService *utils.EmailService
	Payments     *utils.PaymentProcessor
	ShippingFee  int64
}

// NewOrderController creates a new OrderController. EmailService may be nil
// when outbound mail is not configured.
func NewOrderController(repo repository.OrderRepository, emailService *utils.EmailService, payments *utils.PaymentProcessor, shippingFee int64) *OrderController {
	return &OrderController{
		Repo:         repo,
		EmailService: emailService,
		Payments:     payments,
		ShippingFee:  shippingFee,
	}
}

// CreateOrder creates a new order from a checkout submission.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var order models.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if msg := validateOrder(&order); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	// The stored total is a snapshot; verify it before it becomes one.
	expected := models.OrderTotal(order.LineItems, oc.ShippingFee)
	if order.TotalPrice != expected {
		http.Error(w, fmt.Sprintf("Total price mismatch: expected %d", expected), http.StatusBadRequest)
		return
	}

	key := r.Header.Get(IdempotencyKeyHeader)
	if key != "" {
		if existing, err := oc.Repo.FindByIdempotencyKey(r.Context(), key); err == nil {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(existing)
			return
		}
	}
	order.IdempotencyKey = key

	txn, err := oc.Payments.Process(r.Context(), order.PaymentMethod, order.TotalPrice)
	if err != nil {
		http.Error(w, "Payment processing failed", http.StatusInternalServerError)
		return
	}
	order.TransactionID = txn

	err = oc.Repo.Create(r.Context(), &order)
	if errors.Is(err, repository.ErrDuplicateKey) {
		// Lost a race with a concurrent retry carrying the same key.
		existing, ferr := oc.Repo.FindByIdempotencyKey(r.Context(), key)
		if ferr != nil {
			http.Error(w, "Failed to create order", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(existing)
		return
	}
	if err != nil {
		http.Error(w, "Failed to create order", http.StatusInternalServerError)
		return
	}

	if oc.EmailService != nil && order.Email != "" {
		go func(o models.Order) {
			if err := oc.EmailService.SendOrderConfirmationEmail(o.Email, o); err != nil {
				log.Printf("Failed to send confirmation email to %s: %v", o.Email, err)
			}
		}(order)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}

func validateOrder(order *models.Order) string {
	if strings.TrimSpace(order.CustomerName) == "" {
		return "Customer name is required"
	}
	if strings.TrimSpace(order.PrimaryPhone) == "" {
		return "Primary phone is required"
	}
	if strings.TrimSpace(order.Address) == "" {
		return "Address is required"
	}
	if strings.TrimSpace(order.Location) == "" {
		return "Location is required"
	}
	if len(order.LineItems) == 0 {
		return "Order has no line items"
	}
	for _, item := range order.LineItems {
		if item.Quantity < 1 {
			return "Line item quantity must be at least 1"
		}
		if item.UnitPrice < 0 {
			return "Line item unit price must not be negative"
		}
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = models.PaymentMethodCOD
	}
	return ""
}

// GetOrders retrieves all orders, optionally filtered by status server-side.
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	var status models.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" && raw != "all" {
		parsed, ok := models.ParseStatus(raw)
		if !ok {
			http.Error(w, "Invalid status filter", http.StatusBadRequest)
			return
		}
		status = parsed
	}

	orders, err := oc.Repo.List(r.Context(), status)
	if err != nil {
		http.Error(w, "Failed to retrieve orders", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

// GetOrderByID retrieves one order. Shoppers use this with their locally
// kept order ids; no authentication is required.
func (oc *OrderController) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, ok := oc.orderID(w, r)
	if !ok {
		return
	}
	order, err := oc.Repo.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "Order no longer exists", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to retrieve order", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}

// MarkCompleted fulfils a pending order.
func (oc *OrderController) MarkCompleted(w http.ResponseWriter, r *http.Request) {
	oc.transition(w, r, models.StatusCompleted)
}

// RequestCancellation is the customer's self-service cancellation request,
// valid only while the order is pending.
func (oc *OrderController) RequestCancellation(w http.ResponseWriter, r *http.Request) {
	oc.transition(w, r, models.StatusRequested)
}

// ApproveCancellation cancels a pending or cancellation-requested order.
func (oc *OrderController) ApproveCancellation(w http.ResponseWriter, r *http.Request) {
	oc.transition(w, r, models.StatusCancelled)
}

// RejectCancellation reverts a cancellation-requested order to pending.
func (oc *OrderController) RejectCancellation(w http.ResponseWriter, r *http.Request) {
	oc.transition(w, r, models.StatusPending)
}

// transition applies one status-transition command. Legality is enforced by
// the repository in a single atomic update; the client's button state is a
// hint only.
func (oc *OrderController) transition(w http.ResponseWriter, r *http.Request, to models.OrderStatus) {
	id, ok := oc.orderID(w, r)
	if !ok {
		return
	}

	order, err := oc.Repo.Transition(r.Context(), id, to)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "Order no longer exists", http.StatusNotFound)
		return
	}
	if errors.Is(err, repository.ErrInvalidTransition) {
		http.Error(w, fmt.Sprintf("Order cannot move to %q from its current status", to), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "Failed to update order", http.StatusInternalServerError)
		return
	}

	if oc.EmailService != nil && order.Email != "" && to.IsTerminal() {
		go func(o models.Order) {
			if err := oc.EmailService.SendStatusEmail(o.Email, o); err != nil {
				log.Printf("Failed to send status email to %s: %v", o.Email, err)
			}
		}(*order)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}

// DeleteOrder hard-deletes an order regardless of status. Irreversible.
func (oc *OrderController) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := oc.orderID(w, r)
	if !ok {
		return
	}
	err := oc.Repo.Delete(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "Order no longer exists", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to delete order", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Order removed"})
}

func (oc *OrderController) orderID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	vars := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return primitive.NilObjectID, false
	}
	return id, true
}
