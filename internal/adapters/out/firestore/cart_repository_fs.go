package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "firstpick/internal/domain/cart"
)

// CartRepositoryFS implements cart.Repository using Firestore.
//
// Collection design:
// - collection: carts
// - docId: userId (docId is the source of truth)
// - fields: items([]{id, quantity}), createdAt, updatedAt
type CartRepositoryFS struct {
	Client *firestore.Client
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

// GetByUserID returns (nil, nil) if not found.
func (r *CartRepositoryFS) GetByUserID(ctx context.Context, userID string) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, errors.New("cart_repository_fs: userID is empty")
	}

	snap, err := r.col().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return cartFromSnapshot(uid, snap), nil
}

// Mutate runs fn inside a Firestore transaction. The SDK retries the
// transaction when the document changed underneath it, so concurrent edits
// are applied one after another.
func (r *CartRepositoryFS) Mutate(ctx context.Context, userID string, fn cartdom.MutateFunc) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, errors.New("cart_repository_fs: userID is empty")
	}
	ref := r.col().Doc(uid)

	var out *cartdom.Cart
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var c *cartdom.Cart

		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			c = cartFromSnapshot(uid, snap)
		case status.Code(err) == codes.NotFound:
			c = &cartdom.Cart{ID: uid, Items: []cartdom.CartItem{}}
		default:
			return err
		}

		if err := fn(c); err != nil {
			if errors.Is(err, cartdom.ErrNoChange) {
				out = c
				return nil
			}
			return err
		}

		out = c
		return tx.Set(ref, cartDocFromDomain(c))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type cartDoc struct {
	Items     []cartItemDoc `firestore:"items"`
	CreatedAt time.Time     `firestore:"createdAt"`
	UpdatedAt time.Time     `firestore:"updatedAt"`
}

// cartItemDoc keeps the storefront's field names: the product reference is
// stored under "id".
type cartItemDoc struct {
	ID       string `firestore:"id"`
	Quantity int    `firestore:"quantity"`
}

// cartFromSnapshot parses document data leniently: entries may carry the
// product under "id" or "productId", and quantity may be missing (=1).
func cartFromSnapshot(uid string, snap *firestore.DocumentSnapshot) *cartdom.Cart {
	c := &cartdom.Cart{ID: uid, Items: []cartdom.CartItem{}}
	raw := snap.Data()
	if raw == nil {
		return c
	}

	c.CreatedAt = firstTime(raw, "createdAt")
	c.UpdatedAt = firstTime(raw, "updatedAt")
	if c.CreatedAt.IsZero() {
		c.CreatedAt = snap.CreateTime.UTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = snap.UpdateTime.UTC()
	}

	list, _ := raw["items"].([]any)
	items := make([]cartdom.CartItem, 0, len(list))
	for _, v := range list {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		qty := 1
		if q, ok := m["quantity"]; ok {
			qty = asInt(q)
		}
		items = append(items, cartdom.CartItem{
			ProductID: firstString(m, "id", "productId"),
			Quantity:  qty,
		})
	}
	c.Items = cartdom.Normalize(items)
	return c
}

func cartDocFromDomain(c *cartdom.Cart) cartDoc {
	items := make([]cartItemDoc, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, cartItemDoc{ID: it.ProductID, Quantity: it.Quantity})
	}
	return cartDoc{
		Items:     items,
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
	}
}
