package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"jewelstore/models"
	"jewelstore/repository"
	"jewelstore/utils"
)

func newTestRouter(t *testing.T) (*mux.Router, *repository.MemoryOrders) {
	t.Helper()
	repo := repository.NewMemoryOrders()
	oc := NewOrderController(repo, nil, &utils.PaymentProcessor{Delay: time.Millisecond}, 100)

	router := mux.NewRouter()
	router.HandleFunc("/orders", oc.CreateOrder).Methods("POST")
	router.HandleFunc("/orders", oc.GetOrders).Methods("GET")
	router.HandleFunc("/orders/{id}", oc.GetOrderByID).Methods("GET")
	router.HandleFunc("/orders/{id}", oc.DeleteOrder).Methods("DELETE")
	router.HandleFunc("/orders/{id}/complete", oc.MarkCompleted).Methods("PATCH")
	router.HandleFunc("/orders/{id}/cancel", oc.ApproveCancellation).Methods("PATCH")
	router.HandleFunc("/orders/{id}/cancel-request", oc.RequestCancellation).Methods("PATCH")
	router.HandleFunc("/orders/{id}/revert-to-pending", oc.RejectCancellation).Methods("PATCH")
	return router, repo
}

func orderBody() map[string]interface{} {
	return map[string]interface{}{
		"customerName": "Amina Odhiambo",
		"primaryPhone": "+254712345678",
		"address":      "14 Riverside Drive, Nairobi",
		"location":     "Westlands",
		"email":        "amina@example.com",
		"lineItems": []map[string]interface{}{
			{"productId": "ring-01", "name": "Gold Ring", "unitPrice": 500, "quantity": 2},
		},
		"totalPrice":    1100,
		"paymentMethod": models.PaymentMethodCOD,
	}
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeOrder(t *testing.T, rec *httptest.ResponseRecorder) models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
	return order
}

func TestCreateOrder(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/orders", orderBody(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	order := decodeOrder(t, rec)
	assert.False(t, order.ID.IsZero())
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, int64(1100), order.TotalPrice)
	assert.NotEmpty(t, order.TransactionID)
	assert.False(t, order.CreatedAt.IsZero())
}

func TestCreateOrder_Validation(t *testing.T) {
	router, repo := newTestRouter(t)

	cases := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"missing name", func(b map[string]interface{}) { b["customerName"] = "" }},
		{"missing phone", func(b map[string]interface{}) { b["primaryPhone"] = "" }},
		{"missing address", func(b map[string]interface{}) { b["address"] = "" }},
		{"missing location", func(b map[string]interface{}) { b["location"] = "" }},
		{"no line items", func(b map[string]interface{}) { b["lineItems"] = []map[string]interface{}{} }},
		{"zero quantity", func(b map[string]interface{}) {
			b["lineItems"] = []map[string]interface{}{{"productId": "ring-01", "unitPrice": 500, "quantity": 0}}
		}},
		{"total mismatch", func(b map[string]interface{}) { b["totalPrice"] = 999 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := orderBody()
			tc.mutate(body)
			rec := doJSON(t, router, http.MethodPost, "/orders", body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	orders, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, orders, "no order created from rejected submissions")
}

func TestCreateOrder_DuplicateSubmission(t *testing.T) {
	t.Run("no key, two orders", func(t *testing.T) {
		router, repo := newTestRouter(t)
		first := decodeOrder(t, doJSON(t, router, http.MethodPost, "/orders", orderBody(), nil))
		second := decodeOrder(t, doJSON(t, router, http.MethodPost, "/orders", orderBody(), nil))
		assert.NotEqual(t, first.ID, second.ID)

		orders, err := repo.List(context.Background(), "")
		require.NoError(t, err)
		assert.Len(t, orders, 2)
	})

	t.Run("same key, one order", func(t *testing.T) {
		router, repo := newTestRouter(t)
		headers := map[string]string{IdempotencyKeyHeader: "checkout-1"}
		first := decodeOrder(t, doJSON(t, router, http.MethodPost, "/orders", orderBody(), headers))
		second := decodeOrder(t, doJSON(t, router, http.MethodPost, "/orders", orderBody(), headers))
		assert.Equal(t, first.ID, second.ID)

		orders, err := repo.List(context.Background(), "")
		require.NoError(t, err)
		assert.Len(t, orders, 1)
	})
}

func TestMarkCompleted_ThenCancelRejected(t *testing.T) {
	router, _ := newTestRouter(t)
	order := decodeOrder(t, doJSON(t, router, http.MethodPost, "/orders", orderBody(), nil))
	path := "/orders/" + order.ID.Hex()

	rec := doJSON(t, router, http.MethodPatch, path+"/complete", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusCompleted, decodeOrder(t, rec).Status)

	// completed is terminal; approval of a cancellation must be rejected
	rec = doJSON(t, router, http.MethodPatch, path+"/cancel", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodGet, path, nil, nil)
	assert.Equal(t, models.StatusCompleted, decodeOrder(t, rec).Status, "status unchanged")
}

func TestCancellationRequestFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	order := decodeOrder(t, doJSON(t, router, http.MethodPost, "/orders", orderBody(), nil))
	path := "/orders/" + order.ID.Hex()

	rec := doJSON(t, router, http.MethodPatch, path+"/cancel-request", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusRequested, decodeOrder(t, rec).Status)

	// admin rejects the request; order reverts to pending
	rec = doJSON(t, router, http.MethodPatch, path+"/revert-to-pending", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusPending, decodeOrder(t, rec).Status)

	// this time the admin approves
	rec = doJSON(t, router, http.MethodPatch, path+"/cancel-request", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodPatch, path+"/cancel", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusCancelled, decodeOrder(t, rec).Status)
}

// A customer may race an admin: the cancellation request arrives after the
// order completed. The server, not the client, rejects it.
func TestCancelRequestAfterCompletion(t *testing.T) {
	router, _ := newTestRouter(t)
	order := decodeOrder(t, doJSON(t, router, http.MethodPost, "/orders", orderBody(), nil))
	path := "/orders/" + order.ID.Hex()

	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPatch, path+"/complete", nil, nil).Code)
	rec := doJSON(t, router, http.MethodPatch, path+"/cancel-request", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTransitionRetryIsIdempotent(t *testing.T) {
	router, _ := newTestRouter(t)
	order := decodeOrder(t, doJSON(t, router, http.MethodPost, "/orders", orderBody(), nil))
	path := "/orders/" + order.ID.Hex() + "/complete"

	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPatch, path, nil, nil).Code)
	rec := doJSON(t, router, http.MethodPatch, path, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "retry with the same target state succeeds")
	assert.Equal(t, models.StatusCompleted, decodeOrder(t, rec).Status)
}

func TestGetOrders_StatusFilter(t *testing.T) {
	router, _ := newTestRouter(t)
	first := decodeOrder(t, doJSON(t, router, http.MethodPost, "/orders", orderBody(), nil))
	decodeOrder(t, doJSON(t, router, http.MethodPost, "/orders", orderBody(), nil))
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPatch, "/orders/"+first.ID.Hex()+"/complete", nil, nil).Code)

	var orders []models.Order
	rec := doJSON(t, router, http.MethodGet, "/orders?status=completed", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&orders))
	require.Len(t, orders, 1)
	assert.Equal(t, first.ID, orders[0].ID)

	rec = doJSON(t, router, http.MethodGet, "/orders?status=all", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&orders))
	assert.Len(t, orders, 2)

	rec = doJSON(t, router, http.MethodGet, "/orders?status=shipped", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderByID_Errors(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/orders/not-a-hex-id", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/orders/"+primitive.NewObjectID().Hex(), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteOrder(t *testing.T) {
	router, _ := newTestRouter(t)
	order := decodeOrder(t, doJSON(t, router, http.MethodPost, "/orders", orderBody(), nil))
	path := "/orders/" + order.ID.Hex()

	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodDelete, path, nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodGet, path, nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodDelete, path, nil, nil).Code)
}
