package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
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

var errBackend = errors.New("backend unavailable")

var fixedNow = time.Date(2025, 3, 7, 10, 15, 0, 0, time.UTC)

func fixedClock() Clock { return ClockFunc(func() time.Time { return fixedNow }) }

func asUser(uid string) context.Context {
	return WithUser(context.Background(), uid, false)
}

func asAdmin(uid string) context.Context {
	return WithUser(context.Background(), uid, true)
}

// ------------------------------------------------------------
// Catalog
// ------------------------------------------------------------

// MockCatalog implements productdom.Repository in memory.
type MockCatalog struct {
	mu       sync.RWMutex
	products map[string]productdom.Product
	seq      int

	GetErr    error
	CreateErr error
	Gets      int
}

func NewMockCatalog(ps ...productdom.Product) *MockCatalog {
	m := &MockCatalog{products: map[string]productdom.Product{}}
	for _, p := range ps {
		m.products[p.ID] = p
	}
	return m
}

func product(id, name, price string) productdom.Product {
	return productdom.Product{
		ID:          id,
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Category:    productdom.CategoryWaterBottles,
		StockStatus: productdom.StockAvailable,
	}
}

func (m *MockCatalog) SetPrice(id, price string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.products[id]
	p.Price = decimal.RequireFromString(price)
	m.products[id] = p
}

func (m *MockCatalog) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return productdom.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *MockCatalog) GetByID(_ context.Context, id string) (productdom.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	if m.GetErr != nil {
		return productdom.Product{}, m.GetErr
	}
	p, ok := m.products[id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

func (m *MockCatalog) List(_ context.Context) ([]productdom.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]productdom.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockCatalog) ListByCategory(ctx context.Context, category string) ([]productdom.Product, error) {
	all, _ := m.List(ctx)
	out := make([]productdom.Product, 0, len(all))
	for _, p := range all {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockCatalog) Create(_ context.Context, p productdom.Product) (productdom.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return productdom.Product{}, m.CreateErr
	}
	if p.ID == "" {
		m.seq++
		p.ID = fmt.Sprintf("gen-%d", m.seq)
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *MockCatalog) Update(_ context.Context, p productdom.Product) (productdom.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *MockCatalog) NewID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return fmt.Sprintf("prod-%d", m.seq)
}

// ------------------------------------------------------------
// Carts
// ------------------------------------------------------------

// MockCartRepository implements cartdom.Repository in memory.
type MockCartRepository struct {
	mu    sync.Mutex
	carts map[string]*cartdom.Cart

	GetErr    error
	MutateErr error
	Writes    int
}

func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{carts: map[string]*cartdom.Cart{}}
}

func (m *MockCartRepository) Seed(uid string, items ...cartdom.CartItem) {
	c, err := cartdom.NewCart(uid, items, fixedNow.Add(-time.Hour))
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[uid] = c
}

func (m *MockCartRepository) Items(uid string) []cartdom.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[uid]
	if !ok {
		return nil
	}
	return c.Clone().Items
}

func (m *MockCartRepository) GetByUserID(_ context.Context, uid string) (*cartdom.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	c, ok := m.carts[uid]
	if !ok {
		return nil, nil
	}
	return c.Clone(), nil
}

func (m *MockCartRepository) Mutate(_ context.Context, uid string, fn cartdom.MutateFunc) (*cartdom.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MutateErr != nil {
		return nil, m.MutateErr
	}

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
	m.Writes++
	m.carts[uid] = c.Clone()
	return c, nil
}

// ------------------------------------------------------------
// Orders
// ------------------------------------------------------------

// MockOrderRepository implements orderdom.Repository in memory.
type MockOrderRepository struct {
	mu     sync.Mutex
	orders map[string]orderdom.Order
	seq    int

	CreateErr error
	Created   []orderdom.Order

	// OnCreate runs before the order is stored.
	OnCreate func()
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: map[string]orderdom.Order{}}
}

func (m *MockOrderRepository) Create(_ context.Context, o orderdom.Order) (orderdom.Order, error) {
	if m.OnCreate != nil {
		m.OnCreate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return orderdom.Order{}, m.CreateErr
	}
	m.seq++
	o.ID = fmt.Sprintf("doc-%d", m.seq)
	o.Items = append([]orderdom.Item(nil), o.Items...)
	m.orders[o.ID] = o
	m.Created = append(m.Created, o)
	return o, nil
}

func (m *MockOrderRepository) GetByID(_ context.Context, id string) (orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return o, nil
}

func (m *MockOrderRepository) all() []orderdom.Order {
	out := make([]orderdom.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *MockOrderRepository) ListByUser(_ context.Context, uid string) ([]orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []orderdom.Order
	for _, o := range m.all() {
		if o.UserID == uid {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MockOrderRepository) List(_ context.Context, f orderdom.Filter, page orderdom.Page) (orderdom.PageResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []orderdom.Order
	for _, o := range m.all() {
		if f.Matches(o) {
			matched = append(matched, o)
		}
	}
	return common.Paginate(matched, page, orderdom.DefaultPerPage, orderdom.MaxPerPage), nil
}

func (m *MockOrderRepository) UpdateStatus(_ context.Context, id string, fn orderdom.StatusFunc) (orderdom.Order, error) {
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
// Images
// ------------------------------------------------------------

type MockImageStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Err     error
}

func NewMockImageStore() *MockImageStore {
	return &MockImageStore{Objects: map[string][]byte{}}
}

func (m *MockImageStore) Upload(_ context.Context, path, _ string, r io.Reader) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[path] = b
	return "https://storage.googleapis.com/test-bucket/" + path, nil
}

func jpeg(s string) *Image {
	return &Image{ContentType: "image/jpeg", Body: bytes.NewBufferString(s)}
}

// ------------------------------------------------------------
// Contact submissions
// ------------------------------------------------------------

type MockContactRepository struct {
	mu   sync.Mutex
	subs map[string]contactdom.Submission

	PutErr error
}

func NewMockContactRepository() *MockContactRepository {
	return &MockContactRepository{subs: map[string]contactdom.Submission{}}
}

func (m *MockContactRepository) Put(_ context.Context, s contactdom.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.subs[s.ID] = s
	return nil
}

func (m *MockContactRepository) List(context.Context) ([]contactdom.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]contactdom.Submission, 0, len(m.subs))
	for _, s := range m.subs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (m *MockContactRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[id]; !ok {
		return contactdom.ErrNotFound
	}
	delete(m.subs, id)
	return nil
}

// ------------------------------------------------------------
// Profiles
// ------------------------------------------------------------

type MockUserRepository struct {
	mu       sync.Mutex
	profiles map[string]userdom.Profile

	SaveErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{profiles: map[string]userdom.Profile{}}
}

func (m *MockUserRepository) Get(_ context.Context, uid string) (userdom.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[uid]
	if !ok {
		return userdom.Profile{}, userdom.ErrNotFound
	}
	return p, nil
}

func (m *MockUserRepository) Save(_ context.Context, uid string, fn userdom.SaveFunc) (userdom.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return userdom.Profile{}, m.SaveErr
	}
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
