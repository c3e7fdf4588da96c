package cart

import (
	"context"
	"errors"
)

// ErrNoChange may be returned by a MutateFunc to skip the write.
var ErrNoChange = errors.New("cart: no change")

// MutateFunc edits the cart in place. The cart passed in is never nil: when
// no document exists yet it is an empty cart with ID set and zero timestamps.
type MutateFunc func(c *Cart) error

// Repository is the Cart Repository: one document per user id.
//
// Storage (Firestore):
//   - collection: carts
//   - docId: userId
//   - fields: items([]{id, quantity}), createdAt, updatedAt
type Repository interface {
	// GetByUserID returns (nil, nil) when the user has no cart document.
	GetByUserID(ctx context.Context, userID string) (*Cart, error)

	// Mutate runs read-modify-write on the user's cart atomically: a write
	// that lost a race against another writer is retried against fresh data,
	// so concurrent edits by the same user are not dropped.
	// If fn returns ErrNoChange the current cart is returned without writing.
	Mutate(ctx context.Context, userID string, fn MutateFunc) (*Cart, error)
}
