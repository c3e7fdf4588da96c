// Package order models placed orders and their status workflow.
package order

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"firstpick/internal/domain/billing"
)

// ========================================
// Snapshot structs (stored in Order)
// ========================================

// Item is frozen at checkout: name and price are copied from the catalog
// and never re-read.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

func (it Item) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// ========================================
// Entity
// ========================================

// Order is immutable after creation except for Status/UpdatedAt.
//   - ID: storage document id (the unique key)
//   - OrderNumber: "ORDyyMMddNNNN" display label, not unique
type Order struct {
	ID          string          `json:"id"`
	OrderNumber string          `json:"orderId"`
	UserID      string          `json:"userId"`
	Billing     billing.Details `json:"billingDetails"`
	Items       []Item          `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ========================================
// Errors
// ========================================

var (
	ErrInvalidUserID       = errors.New("order: invalid userId")
	ErrInvalidOrderNumber  = errors.New("order: invalid orderNumber")
	ErrInvalidItems        = errors.New("order: invalid items")
	ErrInvalidItemSnapshot = errors.New("order: invalid item snapshot")
	ErrInvalidCreatedAt    = errors.New("order: invalid createdAt")
)

// ========================================
// Constructors
// ========================================

// New builds a pending order. ID stays empty until the repository assigns it.
func New(
	orderNumber string,
	userID string,
	details billing.Details,
	items []Item,
	createdAt time.Time,
) (Order, error) {
	o := Order{
		OrderNumber: strings.TrimSpace(orderNumber),
		UserID:      strings.TrimSpace(userID),
		Billing:     details.Normalize(),
		Items:       normalizeItems(items),
		Status:      StatusPending,
		CreatedAt:   createdAt.UTC(),
		UpdatedAt:   createdAt.UTC(),
	}
	o.TotalAmount = ComputeTotal(o.Items)

	if err := o.validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

// ComputeTotal returns sum(price * quantity) rounded to 2 decimals.
func ComputeTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total.Round(2)
}

// ========================================
// Behavior
// ========================================

// SetStatus moves the order to next. strict enables the transition table.
func (o *Order) SetStatus(next Status, strict bool, now time.Time) error {
	if err := CheckTransition(o.Status, next, strict); err != nil {
		return err
	}
	o.Status = next
	o.UpdatedAt = now.UTC()
	return nil
}

// ========================================
// Order number
// ========================================

// GenerateOrderNumber returns "ORD" + yyMMdd + a zero-padded 4 digit suffix.
// rnd(n) must return a value in [0, n); nil uses math/rand/v2.
func GenerateOrderNumber(now time.Time, rnd func(n int) int) string {
	if rnd == nil {
		rnd = rand.IntN
	}
	return fmt.Sprintf("ORD%s%04d", now.Format("060102"), rnd(10000))
}

// ========================================
// Validation
// ========================================

func (o Order) validate() error {
	if o.UserID == "" {
		return ErrInvalidUserID
	}
	if o.OrderNumber == "" {
		return ErrInvalidOrderNumber
	}
	if err := validateItems(o.Items); err != nil {
		return err
	}
	if !o.Status.IsValid() {
		return ErrInvalidStatus
	}
	if o.CreatedAt.IsZero() {
		return ErrInvalidCreatedAt
	}
	return nil
}

func validateItems(items []Item) error {
	if len(items) == 0 {
		return ErrInvalidItems
	}
	for _, it := range items {
		if it.ProductID == "" {
			return ErrInvalidItemSnapshot
		}
		if it.Quantity <= 0 {
			return ErrInvalidItemSnapshot
		}
		if it.Price.IsNegative() {
			return ErrInvalidItemSnapshot
		}
	}
	return nil
}

// ========================================
// Helpers
// ========================================

func normalizeItems(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		it.ProductID = strings.TrimSpace(it.ProductID)
		it.Name = strings.TrimSpace(it.Name)
		out = append(out, it)
	}
	return out
}
