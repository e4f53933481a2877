package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"jewelstore/models"
)

// IdempotencyKeyHeader carries the checkout attempt's key to the server.
const IdempotencyKeyHeader = "Idempotency-Key"

// HTTPPlacer posts orders to the backend over HTTP.
type HTTPPlacer struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPPlacer(baseURL string) *HTTPPlacer {
	return &HTTPPlacer{BaseURL: baseURL, Client: http.DefaultClient}
}

func (p *HTTPPlacer) PlaceOrder(ctx context.Context, order models.Order, idempotencyKey string) (*models.Order, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set(IdempotencyKeyHeader, idempotencyKey)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("order submission failed: %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var placed models.Order
	if err := json.NewDecoder(resp.Body).Decode(&placed); err != nil {
		return nil, err
	}
	return &placed, nil
}
