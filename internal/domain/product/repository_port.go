package product

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var ErrNotFound = errors.New("product: not found")

// Reader is the Catalog Store as seen by the cart and checkout flows.
type Reader interface {
	// GetByID returns ErrNotFound when the product does not exist.
	GetByID(ctx context.Context, id string) (Product, error)
	List(ctx context.Context) ([]Product, error)
	ListByCategory(ctx context.Context, category string) ([]Product, error)
}

// Repository adds the admin write side.
type Repository interface {
	Reader

	// Create assigns the storage id when p.ID is empty.
	Create(ctx context.Context, p Product) (Product, error)
	// Update overwrites an existing product; ErrNotFound if absent.
	Update(ctx context.Context, p Product) (Product, error)
	// Delete removes the product document; ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
	// NewID reserves a storage id before the product is written
	// (image object paths are keyed by it).
	NewID() string
}

// ImageStore is the blob store holding product images.
type ImageStore interface {
	// Upload writes the object at objectPath and returns its public URL.
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// MainImagePath / ExtraImagePath are the object paths used when a product
// is created. Images replaced while editing live under EditImagePath.
func MainImagePath(category, productID string) string {
	return fmt.Sprintf("products/%s/%s/main.jpg", category, productID)
}

func ExtraImagePath(category, productID string, n int) string {
	return fmt.Sprintf("products/%s/%s/extra%d.jpg", category, productID, n)
}

func EditImagePath(productID, name string) string {
	return fmt.Sprintf("products/%s/%s.jpg", productID, name)
}
