// Package checkout turns a cart snapshot plus customer-entered delivery
// details into a placed order. The snapshot is captured when the checkout
// begins and is not live-synced with later cart edits.
package checkout

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"jewelstore/cart"
	"jewelstore/models"
)

const (
	// PhonePrefix is the fixed national prefix customer phones normalize to.
	PhonePrefix = "+254"
	// phoneDigits is the minimum subscriber digits after the prefix.
	phoneDigits = 9
	// minAddressChars is the minimum alphanumeric characters in an address.
	minAddressChars = 10
	// DefaultShippingFee is the fixed surcharge added to the items total.
	DefaultShippingFee int64 = 100
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[A-Za-z]{2,}$`)

// ErrEmptyCart is returned when checkout is attempted over an empty snapshot.
var ErrEmptyCart = errors.New("cart is empty")

// Details are the customer-entered fields on the checkout form.
type Details struct {
	CustomerName   string
	PrimaryPhone   string
	AlternatePhone string
	Email          string
	Address        string
	Location       string
	TermsAccepted  bool
}

// ValidationErrors maps field names to messages, reported inline with no
// network call made.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for field, msg := range v {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NormalizePhone strips formatting and rewrites the number onto the national
// prefix. It accepts local formats (leading 0), bare subscriber digits, and
// numbers already carrying the prefix.
func NormalizePhone(raw string) (string, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	num := digits.String()
	num = strings.TrimPrefix(num, strings.TrimPrefix(PhonePrefix, "+"))
	num = strings.TrimPrefix(num, "0")
	if len(num) < phoneDigits {
		return "", false
	}
	return PhonePrefix + num, true
}

// Validate checks the form per the storefront's rules. A nil map means the
// details are submittable.
func (d Details) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if !d.TermsAccepted {
		errs["terms"] = "terms must be accepted"
	}
	if strings.TrimSpace(d.CustomerName) == "" {
		errs["customerName"] = "name is required"
	}
	if strings.TrimSpace(d.PrimaryPhone) == "" {
		errs["primaryPhone"] = "phone number is required"
	} else if _, ok := NormalizePhone(d.PrimaryPhone); !ok {
		errs["primaryPhone"] = "phone number is too short"
	}
	if d.AlternatePhone != "" {
		if _, ok := NormalizePhone(d.AlternatePhone); !ok {
			errs["alternatePhone"] = "phone number is too short"
		}
	}
	if strings.TrimSpace(d.Address) == "" {
		errs["address"] = "address is required"
	} else if alnumCount(d.Address) < minAddressChars {
		errs["address"] = "address is too short"
	}
	if strings.TrimSpace(d.Location) == "" {
		errs["location"] = "location is required"
	}
	if d.Email != "" && !emailPattern.MatchString(d.Email) {
		errs["email"] = "email address is invalid"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func alnumCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			n++
		}
	}
	return n
}

// OrderPlacer submits a built order to the backend. The idempotency key is
// stable across retries of one checkout attempt, so a resend after a timeout
// cannot create a second order.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order models.Order, idempotencyKey string) (*models.Order, error)
}

// Checkout is one checkout session over a fixed cart snapshot.
type Checkout struct {
	cart        *cart.Cart
	snapshot    []models.LineItem
	shippingFee int64
	placer      OrderPlacer
	history     *History
	key         string
}

// Begin captures the cart snapshot and an idempotency key for this attempt.
// History may be nil when the caller does not track placed order ids.
func Begin(c *cart.Cart, placer OrderPlacer, history *History, shippingFee int64) *Checkout {
	return &Checkout{
		cart:        c,
		snapshot:    c.ReadAll(),
		shippingFee: shippingFee,
		placer:      placer,
		history:     history,
		key:         uuid.NewString(),
	}
}

// Snapshot returns the captured line items in display order.
func (co *Checkout) Snapshot() []models.LineItem {
	return co.snapshot
}

// Total is the items total plus the shipping surcharge.
func (co *Checkout) Total() int64 {
	return models.OrderTotal(co.snapshot, co.shippingFee)
}

// Submit validates the details and places the order. Validation failures
// return ValidationErrors before any network call. On server or network
// failure the cart is left intact so the shopper can retry; Submit may be
// called again on the same Checkout and reuses the idempotency key. On
// confirmed success the order id is recorded and the cart cleared.
func (co *Checkout) Submit(ctx context.Context, details Details) (*models.Order, error) {
	if errs := details.Validate(); errs != nil {
		return nil, errs
	}
	if len(co.snapshot) == 0 {
		return nil, ErrEmptyCart
	}
	for _, item := range co.snapshot {
		if item.Quantity < 1 {
			return nil, ValidationErrors{"lineItems": "quantities must be at least 1"}
		}
	}

	phone, _ := NormalizePhone(details.PrimaryPhone)
	alternate := ""
	if details.AlternatePhone != "" {
		alternate, _ = NormalizePhone(details.AlternatePhone)
	}
	order := models.Order{
		CustomerName:   strings.TrimSpace(details.CustomerName),
		PrimaryPhone:   phone,
		AlternatePhone: alternate,
		Email:          strings.TrimSpace(details.Email),
		Address:        strings.TrimSpace(details.Address),
		Location:       strings.TrimSpace(details.Location),
		LineItems:      co.snapshot,
		TotalPrice:     co.Total(),
		PaymentMethod:  models.PaymentMethodCOD,
	}

	placed, err := co.placer.PlaceOrder(ctx, order, co.key)
	if err != nil {
		return nil, err
	}
	if co.history != nil {
		co.history.Append(placed.ID.Hex())
	}
	if err := co.cart.Clear(); err != nil {
		// Order is placed; a failed clear must not look like a failed order.
		return placed, nil
	}
	return placed, nil
}
