package mallHandler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	cartdom "firstpick/internal/domain/cart"
	common "firstpick/internal/domain/common"
	contactdom "firstpick/internal/domain/contact"
	orderdom "firstpick/internal/domain/order"
	productdom "firstpick/internal/domain/product"
	userdom "firstpick/internal/domain/user"
)

// ------------------------------------------------------------
// Catalog
// ------------------------------------------------------------

type memCatalog struct {
	products map[string]productdom.Product
}

func newCatalog(ps ...productdom.Product) *memCatalog {
	m := &memCatalog{products: map[string]productdom.Product{}}
	for _, p := range ps {
		m.products[p.ID] = p
	}
	return m
}

func (m *memCatalog) GetByID(_ context.Context, id string) (productdom.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

func (m *memCatalog) List(_ context.Context) ([]productdom.Product, error) {
	out := make([]productdom.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCatalog) ListByCategory(ctx context.Context, category string) ([]productdom.Product, error) {
	all, _ := m.List(ctx)
	out := []productdom.Product{}
	for _, p := range all {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memCatalog) Create(_ context.Context, p productdom.Product) (productdom.Product, error) {
	m.products[p.ID] = p
	return p, nil
}

func (m *memCatalog) Update(_ context.Context, p productdom.Product) (productdom.Product, error) {
	if _, ok := m.products[p.ID]; !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *memCatalog) Delete(_ context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return productdom.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memCatalog) NewID() string { return fmt.Sprintf("prod-%d", len(m.products)+1) }

func product(id, name, price, category string) productdom.Product {
	return productdom.Product{
		ID:          id,
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Description: name + " description",
		Category:    category,
		StockStatus: productdom.StockAvailable,
		CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// ------------------------------------------------------------
// Carts
// ------------------------------------------------------------

type memCarts struct {
	mu    sync.Mutex
	carts map[string]*cartdom.Cart
}

func newCarts() *memCarts { return &memCarts{carts: map[string]*cartdom.Cart{}} }

func (m *memCarts) GetByUserID(_ context.Context, uid string) (*cartdom.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[uid]
	if !ok {
		return nil, nil
	}
	return c.Clone(), nil
}

func (m *memCarts) Mutate(_ context.Context, uid string, fn cartdom.MutateFunc) (*cartdom.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[uid]
	if ok {
		c = c.Clone()
	} else {
		c = &cartdom.Cart{ID: uid, Items: []cartdom.CartItem{}}
	}
	if err := fn(c); err != nil {
		if errors.Is(err, cartdom.ErrNoChange) {
			return c, nil
		}
		return nil, err
	}
	m.carts[uid] = c.Clone()
	return c, nil
}

// ------------------------------------------------------------
// Orders
// ------------------------------------------------------------

type memOrders struct {
	mu     sync.Mutex
	seq    int
	orders map[string]orderdom.Order
}

func newOrders() *memOrders { return &memOrders{orders: map[string]orderdom.Order{}} }

func (m *memOrders) Create(_ context.Context, o orderdom.Order) (orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	o.ID = fmt.Sprintf("doc-%d", m.seq)
	m.orders[o.ID] = o
	return o, nil
}

func (m *memOrders) GetByID(_ context.Context, id string) (orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return o, nil
}

func (m *memOrders) sorted() []orderdom.Order {
	out := make([]orderdom.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memOrders) ListByUser(_ context.Context, uid string) ([]orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []orderdom.Order
	for _, o := range m.sorted() {
		if o.UserID == uid {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) List(_ context.Context, f orderdom.Filter, page orderdom.Page) (orderdom.PageResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []orderdom.Order
	for _, o := range m.sorted() {
		if f.Matches(o) {
			matched = append(matched, o)
		}
	}
	return common.Paginate(matched, page, orderdom.DefaultPerPage, orderdom.MaxPerPage), nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id string, fn orderdom.StatusFunc) (orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	if err := fn(&o); err != nil {
		return orderdom.Order{}, err
	}
	m.orders[id] = o
	return o, nil
}

// ------------------------------------------------------------
// Contact form and profiles
// ------------------------------------------------------------

type memContacts struct {
	mu   sync.Mutex
	subs map[string]contactdom.Submission
}

func (m *memContacts) Put(_ context.Context, s contactdom.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[s.ID] = s
	return nil
}

func (m *memContacts) List(context.Context) ([]contactdom.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]contactdom.Submission, 0, len(m.subs))
	for _, s := range m.subs {
		out = append(out, s)
	}
	return out, nil
}

func (m *memContacts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[id]; !ok {
		return contactdom.ErrNotFound
	}
	delete(m.subs, id)
	return nil
}

type memUsers struct {
	mu       sync.Mutex
	profiles map[string]userdom.Profile
}

func (m *memUsers) Get(_ context.Context, uid string) (userdom.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[uid]
	if !ok {
		return userdom.Profile{}, userdom.ErrNotFound
	}
	return p, nil
}

func (m *memUsers) Save(_ context.Context, uid string, fn userdom.SaveFunc) (userdom.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[uid]
	if !ok {
		p = userdom.Profile{UID: uid}
	}
	if err := fn(&p); err != nil {
		return userdom.Profile{}, err
	}
	m.profiles[uid] = p
	return p, nil
}
