package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	billingdom "firstpick/internal/domain/billing"
	cartdom "firstpick/internal/domain/cart"
	orderdom "firstpick/internal/domain/order"
	productdom "firstpick/internal/domain/product"
)

// BuyNowItem is a single line checked out directly from the product page.
// The price always comes from the catalog.
type BuyNowItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CheckoutInput struct {
	Billing billingdom.Details `json:"billingDetails"`
	BuyNow  *BuyNowItem        `json:"buyNow,omitempty"`
}

// CheckoutResult is what the confirmation screen needs.
type CheckoutResult struct {
	OrderID     string          `json:"id"`
	OrderNumber string          `json:"orderId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      orderdom.Status `json:"status"`
	Items       []orderdom.Item `json:"items"`
}

// CheckoutUsecase turns a cart (or a buy-now line) into an order.
type CheckoutUsecase struct {
	orders   orderdom.Repository
	carts    *CartUsecase
	catalog  productdom.Reader
	identity Identity
	clock    Clock
	rnd      func(n int) int
	log      *zap.Logger
}

func NewCheckoutUsecase(
	orders orderdom.Repository,
	carts *CartUsecase,
	catalog productdom.Reader,
	identity Identity,
	log *zap.Logger,
) *CheckoutUsecase {
	if identity == nil {
		identity = ContextIdentity{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutUsecase{
		orders:   orders,
		carts:    carts,
		catalog:  catalog,
		identity: identity,
		clock:    systemClock{},
		log:      log,
	}
}

// WithClock is useful for tests.
func (uc *CheckoutUsecase) WithClock(c Clock) *CheckoutUsecase {
	if c != nil {
		uc.clock = c
	}
	return uc
}

// WithRand overrides the order number suffix source (rnd(n) in [0, n)).
func (uc *CheckoutUsecase) WithRand(rnd func(n int) int) *CheckoutUsecase {
	uc.rnd = rnd
	return uc
}

// Checkout places an order.
//
// Billing is validated before anything is read. Nothing is written until the
// order itself. Once the order is stored the ordered quantities are taken off
// the cart; anything added meanwhile stays. If that write fails the result is
// returned together with ErrCartNotCleared.
func (uc *CheckoutUsecase) Checkout(ctx context.Context, in CheckoutInput) (CheckoutResult, error) {
	if err := in.Billing.Validate(); err != nil {
		return CheckoutResult{}, err
	}

	uid, err := requireUser(ctx, uc.identity)
	if err != nil {
		return CheckoutResult{}, err
	}

	var items []orderdom.Item
	if in.BuyNow != nil {
		items, err = uc.buyNowItems(ctx, *in.BuyNow)
	} else {
		items, err = uc.cartItems(ctx, uid)
	}
	if err != nil {
		return CheckoutResult{}, err
	}

	now := uc.clock.Now()
	o, err := orderdom.New(
		orderdom.GenerateOrderNumber(now, uc.rnd),
		uid,
		in.Billing,
		items,
		now,
	)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	saved, err := uc.orders.Create(ctx, o)
	if err != nil {
		uc.log.Error("order create failed", zap.String("user_id", uid), zap.Error(err))
		return CheckoutResult{}, persistence("order.create", err)
	}

	res := CheckoutResult{
		OrderID:     saved.ID,
		OrderNumber: saved.OrderNumber,
		TotalAmount: saved.TotalAmount,
		Status:      saved.Status,
		Items:       saved.Items,
	}

	if in.BuyNow == nil {
		if err := uc.carts.consume(ctx, uid, orderedQuantities(saved.Items)); err != nil {
			uc.log.Warn("order placed but cart not cleared",
				zap.String("order_id", saved.ID),
				zap.String("user_id", uid),
				zap.Error(err),
			)
			return res, fmt.Errorf("%w: %w", ErrCartNotCleared, err)
		}
	}

	uc.log.Info("order placed",
		zap.String("order_id", saved.ID),
		zap.String("order_number", saved.OrderNumber),
		zap.String("user_id", uid),
		zap.String("total", saved.TotalAmount.StringFixed(2)),
	)
	return res, nil
}

func (uc *CheckoutUsecase) buyNowItems(ctx context.Context, b BuyNowItem) ([]orderdom.Item, error) {
	pid := strings.TrimSpace(b.ProductID)
	if pid == "" {
		return nil, fmt.Errorf("%w: productId is required", ErrInvalidArgument)
	}
	if b.Quantity < 1 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, cartdom.ErrInvalidQuantity)
	}

	p, err := uc.catalog.GetByID(ctx, pid)
	if err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			return nil, &ProductUnavailableError{ProductIDs: []string{pid}}
		}
		return nil, persistence("product.get", err)
	}
	return []orderdom.Item{snapshot(pid, p, b.Quantity)}, nil
}

// cartItems snapshots the stored cart. Any entry whose product vanished
// rejects the whole checkout.
func (uc *CheckoutUsecase) cartItems(ctx context.Context, uid string) ([]orderdom.Item, error) {
	c, err := uc.carts.repo.GetByUserID(ctx, uid)
	if err != nil {
		return nil, persistence("cart.get", err)
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	products, missing, err := resolveProducts(ctx, uc.catalog, c.Items)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &ProductUnavailableError{ProductIDs: missing}
	}

	items := make([]orderdom.Item, 0, len(c.Items))
	for i, it := range c.Items {
		items = append(items, snapshot(it.ProductID, *products[i], it.Quantity))
	}
	return items, nil
}

func orderedQuantities(items []orderdom.Item) []cartdom.CartItem {
	out := make([]cartdom.CartItem, 0, len(items))
	for _, it := range items {
		out = append(out, cartdom.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func snapshot(pid string, p productdom.Product, qty int) orderdom.Item {
	return orderdom.Item{
		ProductID: pid,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  qty,
	}
}
