package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cartdom "firstpick/internal/domain/cart"
	orderdom "firstpick/internal/domain/order"
)

func placeOrder(t *testing.T, f checkoutFixture, uid string) CheckoutResult {
	t.Helper()
	f.carts.Seed(uid, cartdom.CartItem{ProductID: "p1", Quantity: 1})
	res, err := f.uc.Checkout(asUser(uid), CheckoutInput{Billing: goodBilling()})
	require.NoError(t, err)
	return res
}

func TestOrderSetStatus_ShippedVisibleInHistory(t *testing.T) {
	f := newCheckoutFixture(t)
	placed := placeOrder(t, f, "u1")
	shippedAt := fixedNow.Add(2 * time.Hour)
	uc := NewOrderUsecase(f.orders, nil, false, zap.NewNop()).
		WithClock(ClockFunc(func() time.Time { return shippedAt }))

	before, err := uc.ListMine(asUser("u1"))
	require.NoError(t, err)
	require.Len(t, before, 1)

	updated, err := uc.SetStatus(asAdmin("admin"), placed.OrderID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, orderdom.StatusShipped, updated.Status)
	assert.Equal(t, shippedAt, updated.UpdatedAt)

	after, err := uc.ListMine(asUser("u1"))
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, orderdom.StatusShipped, after[0].Status)

	// nothing but status moved
	want := before[0]
	want.Status = orderdom.StatusShipped
	want.UpdatedAt = after[0].UpdatedAt
	assert.Equal(t, want, after[0])
}

func TestOrderSetStatus_Guards(t *testing.T) {
	f := newCheckoutFixture(t)
	placed := placeOrder(t, f, "u1")
	uc := NewOrderUsecase(f.orders, nil, false, zap.NewNop())

	_, err := uc.SetStatus(context.Background(), placed.OrderID, "shipped")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = uc.SetStatus(asUser("u1"), placed.OrderID, "shipped")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = uc.SetStatus(asAdmin("admin"), placed.OrderID, "teleported")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = uc.SetStatus(asAdmin("admin"), "nope", "shipped")
	assert.ErrorIs(t, err, orderdom.ErrNotFound)
}

func TestOrderSetStatus_UnguardedByDefault(t *testing.T) {
	f := newCheckoutFixture(t)
	placed := placeOrder(t, f, "u1")
	uc := NewOrderUsecase(f.orders, nil, false, zap.NewNop())

	_, err := uc.SetStatus(asAdmin("admin"), placed.OrderID, "delivered")
	require.NoError(t, err)
	o, err := uc.SetStatus(asAdmin("admin"), placed.OrderID, "pending")
	require.NoError(t, err)
	assert.Equal(t, orderdom.StatusPending, o.Status)
}

func TestOrderSetStatus_Strict(t *testing.T) {
	f := newCheckoutFixture(t)
	placed := placeOrder(t, f, "u1")
	uc := NewOrderUsecase(f.orders, nil, true, zap.NewNop())

	_, err := uc.SetStatus(asAdmin("admin"), placed.OrderID, "delivered")
	assert.ErrorIs(t, err, orderdom.ErrInvalidTransition)

	_, err = uc.SetStatus(asAdmin("admin"), placed.OrderID, "cancelled")
	require.NoError(t, err)

	_, err = uc.SetStatus(asAdmin("admin"), placed.OrderID, "shipped")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOrderGet_OwnerOrAdmin(t *testing.T) {
	f := newCheckoutFixture(t)
	placed := placeOrder(t, f, "u1")
	uc := NewOrderUsecase(f.orders, nil, false, zap.NewNop())

	o, err := uc.Get(asUser("u1"), placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, placed.OrderNumber, o.OrderNumber)

	_, err = uc.Get(asUser("u2"), placed.OrderID)
	assert.ErrorIs(t, err, orderdom.ErrNotFound)

	_, err = uc.Get(asAdmin("admin"), placed.OrderID)
	assert.NoError(t, err)
}

func TestOrderListAll(t *testing.T) {
	f := newCheckoutFixture(t)
	placeOrder(t, f, "u1")
	placeOrder(t, f, "u2")
	placeOrder(t, f, "u3")
	uc := NewOrderUsecase(f.orders, nil, false, zap.NewNop())

	_, err := uc.ListAll(asUser("u1"), orderdom.Filter{}, orderdom.Page{})
	assert.ErrorIs(t, err, ErrForbidden)

	res, err := uc.ListAll(asAdmin("admin"), orderdom.Filter{}, orderdom.Page{Number: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, 2, res.TotalPages)

	res, err = uc.ListAll(asAdmin("admin"), orderdom.Filter{UserID: "u2"}, orderdom.Page{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "u2", res.Items[0].UserID)
}

func TestOrderListMine_RequiresUser(t *testing.T) {
	uc := NewOrderUsecase(NewMockOrderRepository(), nil, false, zap.NewNop())
	_, err := uc.ListMine(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
