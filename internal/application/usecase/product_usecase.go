package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	productdom "firstpick/internal/domain/product"
)

// ProductInput is the admin form for creating or editing a product.
type ProductInput struct {
	Name        string `json:"name" validate:"required"`
	Price       string `json:"price" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
	StockStatus string `json:"stockStatus" validate:"omitempty,oneof=available outOfStock"`
}

// Image is an uploaded file.
type Image struct {
	ContentType string
	Body        io.Reader
}

// ProductImages carries the files of one admin submission. On update a nil
// slot in Extras keeps the stored URL for that position, and ExtraCount,
// when set, is the number of extra images the product keeps; stored images
// past it are dropped.
type ProductImages struct {
	Main       *Image
	Extras     []*Image
	ExtraCount *int
}

// ProductUsecase serves catalog reads and admin product management.
type ProductUsecase struct {
	repo     productdom.Repository
	images   productdom.ImageStore
	identity Identity
	clock    Clock
	validate *validator.Validate
	log      *zap.Logger
}

func NewProductUsecase(repo productdom.Repository, images productdom.ImageStore, identity Identity, log *zap.Logger) *ProductUsecase {
	if identity == nil {
		identity = ContextIdentity{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductUsecase{
		repo:     repo,
		images:   images,
		identity: identity,
		clock:    systemClock{},
		validate: validator.New(),
		log:      log,
	}
}

// WithClock is useful for tests.
func (uc *ProductUsecase) WithClock(c Clock) *ProductUsecase {
	if c != nil {
		uc.clock = c
	}
	return uc
}

// ------------------------------------------------------------
// Catalog reads (public)
// ------------------------------------------------------------

func (uc *ProductUsecase) Get(ctx context.Context, id string) (productdom.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			return productdom.Product{}, err
		}
		return productdom.Product{}, persistence("product.get", err)
	}
	return p, nil
}

func (uc *ProductUsecase) List(ctx context.Context) ([]productdom.Product, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, persistence("product.list", err)
	}
	return list, nil
}

// ListByCategory accepts a URL slug ("waterbottle") or a stored category.
func (uc *ProductUsecase) ListByCategory(ctx context.Context, category string) ([]productdom.Product, error) {
	c := productdom.CategoryFromSlug(category)
	if c == "" {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidArgument, category)
	}
	list, err := uc.repo.ListByCategory(ctx, c)
	if err != nil {
		return nil, persistence("product.listByCategory", err)
	}
	return list, nil
}

// Search matches q against name, category and description.
func (uc *ProductUsecase) Search(ctx context.Context, q string) ([]productdom.Product, error) {
	all, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]productdom.Product, 0, len(all))
	for _, p := range all {
		if p.Matches(q) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ------------------------------------------------------------
// Admin
// ------------------------------------------------------------

// Create stores a new product. The main image is required; extra images are
// uploaded as extra1..N under the product's category folder.
func (uc *ProductUsecase) Create(ctx context.Context, in ProductInput, imgs ProductImages) (productdom.Product, error) {
	if _, err := requireAdmin(ctx, uc.identity); err != nil {
		return productdom.Product{}, err
	}
	p, err := uc.fromInput(in)
	if err != nil {
		return productdom.Product{}, err
	}
	if imgs.Main == nil {
		return productdom.Product{}, fmt.Errorf("%w: main image is required", ErrInvalidArgument)
	}
	for i, img := range imgs.Extras {
		if img == nil {
			return productdom.Product{}, fmt.Errorf("%w: extra image %d is missing", ErrInvalidArgument, i+1)
		}
	}

	p.ID = uc.repo.NewID()
	now := uc.clock.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	p.MainImageURL, err = uc.upload(ctx, productdom.MainImagePath(p.Category, p.ID), imgs.Main)
	if err != nil {
		return productdom.Product{}, err
	}
	p.ExtraImageURLs = make([]string, 0, len(imgs.Extras))
	for i, img := range imgs.Extras {
		u, err := uc.upload(ctx, productdom.ExtraImagePath(p.Category, p.ID, i+1), img)
		if err != nil {
			return productdom.Product{}, err
		}
		p.ExtraImageURLs = append(p.ExtraImageURLs, u)
	}

	saved, err := uc.repo.Create(ctx, p)
	if err != nil {
		return productdom.Product{}, persistence("product.create", err)
	}
	uc.log.Info("product created", zap.String("product_id", saved.ID), zap.String("category", saved.Category))
	return saved, nil
}

// Update overwrites an existing product. New images replace the stored
// ones at products/{id}/main.jpg and products/{id}/extra{i}.jpg.
func (uc *ProductUsecase) Update(ctx context.Context, id string, in ProductInput, imgs ProductImages) (productdom.Product, error) {
	if _, err := requireAdmin(ctx, uc.identity); err != nil {
		return productdom.Product{}, err
	}
	cur, err := uc.Get(ctx, id)
	if err != nil {
		return productdom.Product{}, err
	}
	p, err := uc.fromInput(in)
	if err != nil {
		return productdom.Product{}, err
	}

	n, err := extraSlots(len(cur.ExtraImageURLs), imgs)
	if err != nil {
		return productdom.Product{}, err
	}

	p.ID = cur.ID
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = uc.clock.Now().UTC()
	p.MainImageURL = cur.MainImageURL
	if imgs.Main != nil {
		if p.MainImageURL, err = uc.upload(ctx, productdom.EditImagePath(p.ID, "main"), imgs.Main); err != nil {
			return productdom.Product{}, err
		}
	}

	extras := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i < len(imgs.Extras) && imgs.Extras[i] != nil {
			u, err := uc.upload(ctx, productdom.EditImagePath(p.ID, fmt.Sprintf("extra%d", i)), imgs.Extras[i])
			if err != nil {
				return productdom.Product{}, err
			}
			extras = append(extras, u)
			continue
		}
		extras = append(extras, cur.ExtraImageURLs[i])
	}
	p.ExtraImageURLs = extras

	saved, err := uc.repo.Update(ctx, p)
	if err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			return productdom.Product{}, err
		}
		return productdom.Product{}, persistence("product.update", err)
	}
	uc.log.Info("product updated", zap.String("product_id", saved.ID))
	return saved, nil
}

// extraSlots returns how many extra images an edit leaves on the product.
// Every slot below that count needs either an upload or a stored URL.
func extraSlots(stored int, imgs ProductImages) (int, error) {
	n := max(stored, len(imgs.Extras))
	if imgs.ExtraCount != nil {
		n = *imgs.ExtraCount
		if n < 0 || n < len(imgs.Extras) {
			return 0, fmt.Errorf("%w: extra image count %d does not cover %d uploads", ErrInvalidArgument, n, len(imgs.Extras))
		}
	}
	for i := stored; i < n; i++ {
		if i >= len(imgs.Extras) || imgs.Extras[i] == nil {
			return 0, fmt.Errorf("%w: extra image %d is missing", ErrInvalidArgument, i)
		}
	}
	return n, nil
}

// Delete removes a product from the catalog. Carts that still reference it
// report it as missing on the next load.
func (uc *ProductUsecase) Delete(ctx context.Context, id string) error {
	admin, err := requireAdmin(ctx, uc.identity)
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			return err
		}
		uc.log.Error("product delete failed", zap.String("product_id", id), zap.Error(err))
		return persistence("product.delete", err)
	}
	uc.log.Info("product deleted", zap.String("product_id", id), zap.String("by", admin))
	return nil
}

// Categories returns the known category values.
func (uc *ProductUsecase) Categories() []string {
	return productdom.Categories()
}

func (uc *ProductUsecase) fromInput(in ProductInput) (productdom.Product, error) {
	if err := uc.validate.Struct(in); err != nil {
		return productdom.Product{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	price, err := productdom.ParsePrice(in.Price)
	if err != nil {
		return productdom.Product{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	category := productdom.CategoryFromSlug(in.Category)
	if category == "" {
		return productdom.Product{}, fmt.Errorf("%w: unknown category %q", ErrInvalidArgument, in.Category)
	}
	stock := productdom.StockStatus(in.StockStatus)
	if stock == "" {
		stock = productdom.StockAvailable
	}

	p := productdom.Product{
		Name:        strings.TrimSpace(in.Name),
		Price:       price,
		Description: strings.TrimSpace(in.Description),
		Category:    category,
		StockStatus: stock,
	}
	if err := p.Validate(); err != nil {
		return productdom.Product{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return p, nil
}

func (uc *ProductUsecase) upload(ctx context.Context, path string, img *Image) (string, error) {
	if uc.images == nil {
		return "", fmt.Errorf("%w: image storage is not configured", ErrPersistence)
	}
	ct := img.ContentType
	if ct == "" {
		ct = "image/jpeg"
	}
	u, err := uc.images.Upload(ctx, path, ct, img.Body)
	if err != nil {
		uc.log.Error("image upload failed", zap.String("path", path), zap.Error(err))
		return "", persistence("image.upload", err)
	}
	return u, nil
}
