package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	cartdom "firstpick/internal/domain/cart"
	productdom "firstpick/internal/domain/product"
)

// catalogLookupConcurrency bounds parallel GetByID calls while reconciling.
const catalogLookupConcurrency = 8

// CartLine is one reconciled row: a stored entry joined with live product data.
type CartLine struct {
	ProductID    string                 `json:"productId"`
	Name         string                 `json:"name"`
	Price        decimal.Decimal        `json:"price"`
	Quantity     int                    `json:"quantity"`
	LineTotal    decimal.Decimal        `json:"lineTotal"`
	MainImageURL string                 `json:"mainImageUrl"`
	StockStatus  productdom.StockStatus `json:"stockStatus"`
}

// CartView is the reconciled cart returned to the storefront.
// MissingProductIDs lists stored entries whose product no longer exists;
// they are left out of Lines and Total but stay in the stored cart.
type CartView struct {
	UserID            string          `json:"userId"`
	Lines             []CartLine      `json:"items"`
	MissingProductIDs []string        `json:"missingProductIds,omitempty"`
	ItemCount         int             `json:"itemCount"`
	Total             decimal.Decimal `json:"cartTotal"`
}

// CartUsecase coordinates cart operations for the current user.
type CartUsecase struct {
	repo     cartdom.Repository
	catalog  productdom.Reader
	identity Identity
	clock    Clock
	log      *zap.Logger
}

func NewCartUsecase(repo cartdom.Repository, catalog productdom.Reader, identity Identity, log *zap.Logger) *CartUsecase {
	if identity == nil {
		identity = ContextIdentity{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CartUsecase{
		repo:     repo,
		catalog:  catalog,
		identity: identity,
		clock:    systemClock{},
		log:      log,
	}
}

// WithClock is useful for tests.
func (uc *CartUsecase) WithClock(c Clock) *CartUsecase {
	if c != nil {
		uc.clock = c
	}
	return uc
}

// Load returns the reconciled cart. A user without a cart document gets an
// empty view.
func (uc *CartUsecase) Load(ctx context.Context) (CartView, error) {
	uid, err := requireUser(ctx, uc.identity)
	if err != nil {
		return CartView{}, err
	}

	c, err := uc.repo.GetByUserID(ctx, uid)
	if err != nil {
		uc.log.Error("cart load failed", zap.String("user_id", uid), zap.Error(err))
		return CartView{}, persistence("cart.get", err)
	}
	return uc.reconcile(ctx, uid, c)
}

// Add merges qty of productID into the cart, creating the cart on first write.
func (uc *CartUsecase) Add(ctx context.Context, productID string, qty int) (CartView, error) {
	uid, err := requireUser(ctx, uc.identity)
	if err != nil {
		return CartView{}, err
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return CartView{}, fmt.Errorf("%w: productId is required", ErrInvalidArgument)
	}
	if qty < 1 {
		return CartView{}, fmt.Errorf("%w: %w", ErrInvalidArgument, cartdom.ErrInvalidQuantity)
	}

	if _, err := uc.catalog.GetByID(ctx, pid); err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			return CartView{}, &ProductUnavailableError{ProductIDs: []string{pid}}
		}
		return CartView{}, persistence("product.get", err)
	}

	now := uc.clock.Now().UTC()
	c, err := uc.repo.Mutate(ctx, uid, func(c *cartdom.Cart) error {
		return c.Add(pid, qty, now)
	})
	if err != nil {
		return CartView{}, uc.mutationError("cart.add", uid, err)
	}
	return uc.reconcile(ctx, uid, c)
}

// UpdateQuantity replaces the quantity of an existing entry.
// qty < 1 is ignored and the current cart is returned unchanged.
func (uc *CartUsecase) UpdateQuantity(ctx context.Context, productID string, qty int) (CartView, error) {
	uid, err := requireUser(ctx, uc.identity)
	if err != nil {
		return CartView{}, err
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return CartView{}, fmt.Errorf("%w: productId is required", ErrInvalidArgument)
	}

	now := uc.clock.Now().UTC()
	c, err := uc.repo.Mutate(ctx, uid, func(c *cartdom.Cart) error {
		changed, err := c.SetQty(pid, qty, now)
		if err != nil {
			return err
		}
		if !changed {
			return cartdom.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return CartView{}, uc.mutationError("cart.update", uid, err)
	}
	return uc.reconcile(ctx, uid, c)
}

// Remove drops productID from the cart. Removing an absent product is a no-op.
func (uc *CartUsecase) Remove(ctx context.Context, productID string) (CartView, error) {
	uid, err := requireUser(ctx, uc.identity)
	if err != nil {
		return CartView{}, err
	}
	pid := strings.TrimSpace(productID)

	now := uc.clock.Now().UTC()
	c, err := uc.repo.Mutate(ctx, uid, func(c *cartdom.Cart) error {
		if !c.Remove(pid, now) {
			return cartdom.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return CartView{}, uc.mutationError("cart.remove", uid, err)
	}
	return uc.reconcile(ctx, uid, c)
}

// Clear empties the current user's cart. A user without a cart document is
// left without one.
func (uc *CartUsecase) Clear(ctx context.Context) error {
	uid, err := requireUser(ctx, uc.identity)
	if err != nil {
		return err
	}

	now := uc.clock.Now().UTC()
	_, err = uc.repo.Mutate(ctx, uid, func(c *cartdom.Cart) error {
		if c.IsEmpty() {
			return cartdom.ErrNoChange
		}
		c.Clear(now)
		return nil
	})
	if err != nil {
		return uc.mutationError("cart.clear", uid, err)
	}
	return nil
}

// consume takes ordered quantities off the user's cart. Entries added or
// raised after the order was snapshotted are kept.
func (uc *CartUsecase) consume(ctx context.Context, uid string, ordered []cartdom.CartItem) error {
	now := uc.clock.Now().UTC()
	_, err := uc.repo.Mutate(ctx, uid, func(c *cartdom.Cart) error {
		if !c.Subtract(ordered, now) {
			return cartdom.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return persistence("cart.consume", err)
	}
	return nil
}

func (uc *CartUsecase) mutationError(op, uid string, err error) error {
	switch {
	case errors.Is(err, cartdom.ErrItemNotFound),
		errors.Is(err, cartdom.ErrInvalidQuantity),
		errors.Is(err, cartdom.ErrInvalidCart):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	uc.log.Error("cart write failed", zap.String("op", op), zap.String("user_id", uid), zap.Error(err))
	return persistence(op, err)
}

// reconcile joins stored entries with the catalog. Vanished products are
// logged and reported in MissingProductIDs.
func (uc *CartUsecase) reconcile(ctx context.Context, uid string, c *cartdom.Cart) (CartView, error) {
	view := CartView{UserID: uid, Lines: []CartLine{}, Total: decimal.Zero}
	if c.IsEmpty() {
		return view, nil
	}

	products, missing, err := resolveProducts(ctx, uc.catalog, c.Items)
	if err != nil {
		return CartView{}, err
	}

	total := decimal.Zero
	for i, it := range c.Items {
		p := products[i]
		if p == nil {
			continue
		}
		line := CartLine{
			ProductID:    it.ProductID,
			Name:         p.Name,
			Price:        p.Price,
			Quantity:     it.Quantity,
			LineTotal:    p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
			MainImageURL: p.MainImageURL,
			StockStatus:  p.StockStatus,
		}
		total = total.Add(line.LineTotal)
		view.ItemCount += it.Quantity
		view.Lines = append(view.Lines, line)
	}
	for _, pid := range missing {
		uc.log.Warn("cart references a missing product",
			zap.String("user_id", uid),
			zap.String("product_id", pid),
		)
	}

	view.MissingProductIDs = missing
	view.Total = total.Round(2)
	return view, nil
}

// resolveProducts looks up every entry concurrently. The returned slice is
// index-aligned with items; nil marks a product that no longer exists.
func resolveProducts(ctx context.Context, catalog productdom.Reader, items []cartdom.CartItem) ([]*productdom.Product, []string, error) {
	out := make([]*productdom.Product, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(catalogLookupConcurrency)
	for i, it := range items {
		g.Go(func() error {
			p, err := catalog.GetByID(gctx, it.ProductID)
			if err != nil {
				if errors.Is(err, productdom.ErrNotFound) {
					return nil
				}
				return persistence("product.get", err)
			}
			out[i] = &p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var missing []string
	for i, p := range out {
		if p == nil {
			missing = append(missing, items[i].ProductID)
		}
	}
	return out, missing, nil
}
