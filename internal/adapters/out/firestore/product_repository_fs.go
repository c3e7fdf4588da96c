package firestore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	productdom "firstpick/internal/domain/product"
)

// ProductRepositoryFS implements product.Repository using Firestore.
//
//   - collection: products
//   - docId: product id (also mirrored in the productID field)
//   - price is stored as a string, images as mainImage / extraImages,
//     creation time as timestamp
type ProductRepositoryFS struct {
	Client *firestore.Client
}

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("products")
}

func (r *ProductRepositoryFS) GetByID(ctx context.Context, id string) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return productdom.Product{}, productdom.ErrNotFound
		}
		return productdom.Product{}, err
	}
	return docToProduct(snap)
}

// List returns every product, newest first.
func (r *ProductRepositoryFS) List(ctx context.Context) ([]productdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	list, err := collect(ctx, r.col().Query, docToProduct)
	if err != nil {
		return nil, err
	}
	sortProducts(list)
	return list, nil
}

func (r *ProductRepositoryFS) ListByCategory(ctx context.Context, category string) ([]productdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	list, err := collect(ctx, r.col().Where("category", "==", strings.TrimSpace(category)), docToProduct)
	if err != nil {
		return nil, err
	}
	sortProducts(list)
	return list, nil
}

func (r *ProductRepositoryFS) NewID() string {
	return r.col().NewDoc().ID
}

func (r *ProductRepositoryFS) Create(ctx context.Context, p productdom.Product) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errNilClient
	}
	if strings.TrimSpace(p.ID) == "" {
		p.ID = r.NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	if _, err := r.col().Doc(p.ID).Create(ctx, productToDoc(p)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return productdom.Product{}, fmt.Errorf("product %s: already exists", p.ID)
		}
		return productdom.Product{}, err
	}
	return p, nil
}

// Update overwrites the editable fields; timestamp and productID are kept.
func (r *ProductRepositoryFS) Update(ctx context.Context, p productdom.Product) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errNilClient
	}
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	extras := p.ExtraImageURLs
	if extras == nil {
		extras = []string{}
	}

	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{
		{Path: "name", Value: p.Name},
		{Path: "price", Value: p.Price.String()},
		{Path: "description", Value: p.Description},
		{Path: "category", Value: p.Category},
		{Path: "stockStatus", Value: string(p.StockStatus)},
		{Path: "mainImage", Value: p.MainImageURL},
		{Path: "extraImages", Value: extras},
		{Path: "updatedAt", Value: p.UpdatedAt.UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return productdom.Product{}, productdom.ErrNotFound
		}
		return productdom.Product{}, err
	}
	return p, nil
}

// Delete removes the document. Stored images are left in the bucket.
func (r *ProductRepositoryFS) Delete(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.ErrNotFound
	}
	if _, err := r.col().Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return productdom.ErrNotFound
		}
		return err
	}
	return nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

func productToDoc(p productdom.Product) map[string]any {
	extras := p.ExtraImageURLs
	if extras == nil {
		extras = []string{}
	}
	doc := map[string]any{
		"productID":   p.ID,
		"name":        p.Name,
		"price":       p.Price.String(),
		"description": p.Description,
		"category":    p.Category,
		"stockStatus": string(p.StockStatus),
		"mainImage":   p.MainImageURL,
		"extraImages": extras,
		"timestamp":   p.CreatedAt.UTC(),
	}
	if !p.UpdatedAt.IsZero() {
		doc["updatedAt"] = p.UpdatedAt.UTC()
	}
	return doc
}

func docToProduct(snap *firestore.DocumentSnapshot) (productdom.Product, error) {
	raw := snap.Data()
	if raw == nil {
		return productdom.Product{}, fmt.Errorf("product %s: empty document", snap.Ref.ID)
	}

	price, err := productdom.ParsePrice(raw["price"])
	if err != nil {
		return productdom.Product{}, fmt.Errorf("product %s: %w", snap.Ref.ID, err)
	}

	extras := asStringSlice(raw["extraImages"])
	if extras == nil {
		extras = asStringSlice(raw["extraImageUrls"])
	}

	stock := productdom.StockStatus(asString(raw["stockStatus"]))
	if !stock.IsValid() {
		stock = productdom.StockAvailable
	}

	return productdom.Product{
		ID:             snap.Ref.ID,
		Name:           asString(raw["name"]),
		Price:          price,
		Description:    asString(raw["description"]),
		MainImageURL:   firstString(raw, "mainImage", "mainImageUrl"),
		ExtraImageURLs: extras,
		Category:       asString(raw["category"]),
		StockStatus:    stock,
		CreatedAt:      firstTime(raw, "timestamp", "createdAt"),
		UpdatedAt:      firstTime(raw, "updatedAt"),
	}, nil
}

func sortProducts(list []productdom.Product) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
