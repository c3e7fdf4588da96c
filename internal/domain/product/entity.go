// Package product holds the catalog entity that the cart and checkout flows read.
package product

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProduct = errors.New("product: invalid")
	ErrInvalidPrice   = errors.New("product: invalid price")
)

// StockStatus is "available" or "outOfStock".
type StockStatus string

const (
	StockAvailable  StockStatus = "available"
	StockOutOfStock StockStatus = "outOfStock"
)

func (s StockStatus) IsValid() bool {
	return s == StockAvailable || s == StockOutOfStock
}

// Catalog categories. Stored values are the upper-snake constants; the
// storefront URLs use the short slugs.
const (
	CategoryWaterBottles      = "WATER_BOTTLES"
	CategoryCashewNuts        = "CASHEW_NUTS"
	CategoryChoppingBoard     = "CHOPPING_BOARD"
	CategoryInvisibleNecklace = "INVISIBLE_NACKLACE"
)

var categorySlugs = map[string]string{
	"waterbottle":       CategoryWaterBottles,
	"cashewnuts":        CategoryCashewNuts,
	"choppingboard":     CategoryChoppingBoard,
	"invisiblenecklace": CategoryInvisibleNecklace,
}

// Categories lists every known category value.
func Categories() []string {
	return []string{
		CategoryWaterBottles,
		CategoryCashewNuts,
		CategoryChoppingBoard,
		CategoryInvisibleNecklace,
	}
}

// CategoryFromSlug resolves a URL slug ("waterbottle") or a stored category
// value ("WATER_BOTTLES") to the stored value. Unknown input returns "".
func CategoryFromSlug(s string) string {
	s = strings.TrimSpace(s)
	if v, ok := categorySlugs[strings.ToLower(s)]; ok {
		return v
	}
	for _, c := range Categories() {
		if strings.EqualFold(c, s) {
			return c
		}
	}
	return ""
}

// Product is a catalog record. Read-only from the cart/order point of view.
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Description    string          `json:"description"`
	MainImageURL   string          `json:"mainImageUrl"`
	ExtraImageURLs []string        `json:"extraImageUrls"`
	Category       string          `json:"category"`
	StockStatus    StockStatus     `json:"stockStatus"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt,omitempty"`
}

// Validate checks the fields an admin must supply.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("%w: description is empty", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Category) == "" {
		return fmt.Errorf("%w: category is empty", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price is negative", ErrInvalidPrice)
	}
	if !p.StockStatus.IsValid() {
		return fmt.Errorf("%w: stockStatus %q", ErrInvalidProduct, p.StockStatus)
	}
	return nil
}

// ParsePrice decodes a price stored either as a number or as a numeric string
// ("199", "199.50"). The result is rounded to 2 decimals.
func ParsePrice(v any) (decimal.Decimal, error) {
	var (
		d   decimal.Decimal
		err error
	)
	switch t := v.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("%w: missing", ErrInvalidPrice)
	case decimal.Decimal:
		d = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidPrice)
		}
		d, err = decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
		}
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidPrice, t)
		}
		d = decimal.NewFromFloat(t)
	case float32:
		d = decimal.NewFromFloat32(t)
	case int:
		d = decimal.NewFromInt(int64(t))
	case int32:
		d = decimal.NewFromInt32(t)
	case int64:
		d = decimal.NewFromInt(t)
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidPrice, v)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative", ErrInvalidPrice)
	}
	return d.Round(2), nil
}

// Matches reports whether q occurs (case-insensitive) in the name, category
// or description. An empty query matches everything.
func (p Product) Matches(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Category), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}
