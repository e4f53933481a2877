package utils

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PaymentProcessor stands in for a real payment gateway. Cash-on-delivery
// orders still get a fabricated transaction id after a simulated gateway
// round-trip.
type PaymentProcessor struct {
	Delay time.Duration
}

func NewPaymentProcessor() *PaymentProcessor {
	return &PaymentProcessor{Delay: 1500 * time.Millisecond}
}

// Process simulates gateway latency and returns a transaction id.
func (p *PaymentProcessor) Process(ctx context.Context, method string, amount int64) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(p.Delay):
	}
	return uuid.NewString(), nil
}
