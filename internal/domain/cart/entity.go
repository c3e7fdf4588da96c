// Package cart models the per-user shopping cart document.
package cart

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidCart     = errors.New("cart: invalid")
	ErrInvalidQuantity = errors.New("cart: quantity must be >= 1")
	ErrItemNotFound    = errors.New("cart: item not found")
)

// CartItem is one stored line: a product reference and a quantity (>= 1).
type CartItem struct {
	ProductID string `json:"productId" firestore:"productId"`
	Quantity  int    `json:"quantity" firestore:"quantity"`
}

// Cart is the cart document of one user.
//   - ID is the owner's user id (Firestore docId)
//   - Items holds at most one entry per productId, in insertion order
type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewCart creates a cart for userID. items may be nil.
func NewCart(userID string, items []CartItem, now time.Time) (*Cart, error) {
	c := &Cart{
		ID:        strings.TrimSpace(userID),
		Items:     normalizeAndMerge(items),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Add merges qty into the entry for productID, appending a new entry when the
// product is not in the cart yet.
func (c *Cart) Add(productID string, qty int, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return ErrInvalidCart
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}

	if idx := c.indexOf(pid); idx >= 0 {
		c.Items[idx].Quantity += qty
	} else {
		c.Items = append(c.Items, CartItem{ProductID: pid, Quantity: qty})
	}

	c.touch(now)
	return c.validate()
}

// SetQty replaces the quantity of an existing entry.
// A qty below 1 is ignored: it returns (false, nil) and leaves the cart as is.
// Removal goes through Remove.
func (c *Cart) SetQty(productID string, qty int, now time.Time) (bool, error) {
	if c == nil {
		return false, ErrInvalidCart
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return false, ErrInvalidCart
	}
	if qty < 1 {
		return false, nil
	}

	idx := c.indexOf(pid)
	if idx < 0 {
		return false, ErrItemNotFound
	}
	if c.Items[idx].Quantity == qty {
		return false, nil
	}
	c.Items[idx].Quantity = qty

	c.touch(now)
	return true, c.validate()
}

// Remove drops the entry for productID. It reports whether anything changed.
func (c *Cart) Remove(productID string, now time.Time) bool {
	if c == nil {
		return false
	}
	idx := c.indexOf(strings.TrimSpace(productID))
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx:idx], c.Items[idx+1:]...)
	c.touch(now)
	return true
}

// Subtract takes the given quantities off the matching entries and drops
// entries that reach zero. Products not in the cart are skipped. It reports
// whether anything changed.
func (c *Cart) Subtract(items []CartItem, now time.Time) bool {
	if c == nil {
		return false
	}
	changed := false
	for _, it := range items {
		idx := c.indexOf(strings.TrimSpace(it.ProductID))
		if idx < 0 || it.Quantity < 1 {
			continue
		}
		if c.Items[idx].Quantity > it.Quantity {
			c.Items[idx].Quantity -= it.Quantity
		} else {
			c.Items = append(c.Items[:idx:idx], c.Items[idx+1:]...)
		}
		changed = true
	}
	if changed {
		c.touch(now)
	}
	return changed
}

// Clear empties the cart and returns the items it held.
func (c *Cart) Clear(now time.Time) []CartItem {
	if c == nil {
		return nil
	}
	snap := cloneItems(c.Items)
	c.Items = []CartItem{}
	c.touch(now)
	return snap
}

// Quantity returns the stored quantity for productID (0 if absent).
func (c *Cart) Quantity(productID string) int {
	if c == nil {
		return 0
	}
	if idx := c.indexOf(strings.TrimSpace(productID)); idx >= 0 {
		return c.Items[idx].Quantity
	}
	return 0
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Clone returns a deep copy.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Items = cloneItems(c.Items)
	return &cp
}

func (c *Cart) indexOf(pid string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == pid {
			return i
		}
	}
	return -1
}

func (c *Cart) touch(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

func (c *Cart) validate() error {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return ErrInvalidCart
	}
	if c.UpdatedAt.Before(c.CreatedAt) {
		return ErrInvalidCart
	}
	if c.Items == nil {
		c.Items = []CartItem{}
	}

	seen := make(map[string]struct{}, len(c.Items))
	for _, it := range c.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return ErrInvalidCart
		}
		if it.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if _, dup := seen[it.ProductID]; dup {
			return ErrInvalidCart
		}
		seen[it.ProductID] = struct{}{}
	}
	return nil
}

// ----------------------------
// Helpers
// ----------------------------

// normalizeAndMerge trims ids, drops invalid entries and folds duplicates into
// the first occurrence, keeping insertion order.
func normalizeAndMerge(src []CartItem) []CartItem {
	out := make([]CartItem, 0, len(src))
	pos := make(map[string]int, len(src))

	for _, it := range src {
		pid := strings.TrimSpace(it.ProductID)
		if pid == "" || it.Quantity < 1 {
			continue
		}
		if i, ok := pos[pid]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		pos[pid] = len(out)
		out = append(out, CartItem{ProductID: pid, Quantity: it.Quantity})
	}
	return out
}

func cloneItems(src []CartItem) []CartItem {
	out := make([]CartItem, len(src))
	copy(out, src)
	return out
}

// Normalize applies the merge invariant to items read from storage.
func Normalize(items []CartItem) []CartItem {
	return normalizeAndMerge(items)
}
