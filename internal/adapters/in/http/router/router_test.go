package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"firstpick/internal/adapters/in/http/middleware"
	usecase "firstpick/internal/application/usecase"
	common "firstpick/internal/domain/common"
	contactdom "firstpick/internal/domain/contact"
	orderdom "firstpick/internal/domain/order"
	productdom "firstpick/internal/domain/product"
	userdom "firstpick/internal/domain/user"
)

type verifier map[string]*fbauth.Token

func (v verifier) VerifyIDToken(_ context.Context, tok string) (*fbauth.Token, error) {
	if t, ok := v[tok]; ok {
		return t, nil
	}
	return nil, errors.New("bad token")
}

type emptyCatalog struct{}

func (emptyCatalog) GetByID(context.Context, string) (productdom.Product, error) {
	return productdom.Product{}, productdom.ErrNotFound
}
func (emptyCatalog) List(context.Context) ([]productdom.Product, error) {
	return []productdom.Product{}, nil
}
func (emptyCatalog) ListByCategory(context.Context, string) ([]productdom.Product, error) {
	return []productdom.Product{}, nil
}
func (emptyCatalog) Create(_ context.Context, p productdom.Product) (productdom.Product, error) {
	return p, nil
}
func (emptyCatalog) Update(context.Context, productdom.Product) (productdom.Product, error) {
	return productdom.Product{}, productdom.ErrNotFound
}
func (emptyCatalog) Delete(context.Context, string) error { return productdom.ErrNotFound }
func (emptyCatalog) NewID() string                        { return "id" }

type emptyOrders struct{}

func (emptyOrders) Create(_ context.Context, o orderdom.Order) (orderdom.Order, error) { return o, nil }
func (emptyOrders) GetByID(context.Context, string) (orderdom.Order, error) {
	return orderdom.Order{}, orderdom.ErrNotFound
}
func (emptyOrders) ListByUser(context.Context, string) ([]orderdom.Order, error) { return nil, nil }
func (emptyOrders) List(_ context.Context, _ orderdom.Filter, p orderdom.Page) (orderdom.PageResult, error) {
	return common.Paginate([]orderdom.Order(nil), p, orderdom.DefaultPerPage, orderdom.MaxPerPage), nil
}
func (emptyOrders) UpdateStatus(context.Context, string, orderdom.StatusFunc) (orderdom.Order, error) {
	return orderdom.Order{}, orderdom.ErrNotFound
}

type emptyContacts struct{}

func (emptyContacts) Put(context.Context, contactdom.Submission) error { return nil }
func (emptyContacts) List(context.Context) ([]contactdom.Submission, error) {
	return nil, nil
}
func (emptyContacts) Delete(context.Context, string) error { return contactdom.ErrNotFound }

type emptyUsers struct{}

func (emptyUsers) Get(context.Context, string) (userdom.Profile, error) {
	return userdom.Profile{}, userdom.ErrNotFound
}
func (emptyUsers) Save(_ context.Context, uid string, fn userdom.SaveFunc) (userdom.Profile, error) {
	p := userdom.Profile{UID: uid}
	return p, fn(&p)
}

func newTestRouter(ready func(*http.Request) error) http.Handler {
	log := zap.NewNop()
	return NewRouter(RouterDeps{
		OrderUC:   usecase.NewOrderUsecase(emptyOrders{}, nil, false, log),
		ProductUC: usecase.NewProductUsecase(emptyCatalog{}, nil, nil, log),
		ContactUC: usecase.NewContactUsecase(emptyContacts{}, nil, log),
		ProfileUC: usecase.NewProfileUsecase(emptyUsers{}, nil, log),
		Auth: middleware.NewAuthMiddleware(verifier{
			"shopper": {UID: "u-1"},
			"admin":   {UID: "u-9"},
		}, []string{"u-9"}, log),
		AllowedOrigin: "https://shop.example.com",
		Log:           log,
		Ready:         ready,
	})
}

func get(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter(t *testing.T) {
	h := newTestRouter(nil)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"ready", http.MethodGet, "/readyz", "", http.StatusOK},
		{"public catalog", http.MethodGet, "/mall/products", "", http.StatusOK},
		{"public product missing", http.MethodGet, "/mall/products/nope", "", http.StatusNotFound},
		{"own orders need a token", http.MethodGet, "/mall/me/orders", "", http.StatusUnauthorized},
		{"own orders", http.MethodGet, "/mall/me/orders", "shopper", http.StatusOK},
		{"console needs a token", http.MethodGet, "/console/orders", "", http.StatusUnauthorized},
		{"console needs admin", http.MethodGet, "/console/orders", "shopper", http.StatusForbidden},
		{"console as admin", http.MethodGet, "/console/orders", "admin", http.StatusOK},
		{"contact form is public", http.MethodPost, "/mall/contact", "", http.StatusBadRequest},
		{"profile needs a token", http.MethodGet, "/mall/me/profile", "", http.StatusUnauthorized},
		{"profile not yet set", http.MethodGet, "/mall/me/profile", "shopper", http.StatusNotFound},
		{"contact inbox needs admin", http.MethodGet, "/console/contact-submissions", "shopper", http.StatusForbidden},
		{"contact inbox", http.MethodGet, "/console/contact-submissions", "admin", http.StatusOK},
		{"unknown path", http.MethodGet, "/nowhere", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(h, tt.method, tt.path, tt.token)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_NotReady(t *testing.T) {
	h := newTestRouter(func(*http.Request) error { return errors.New("firestore unreachable") })
	assert.Equal(t, http.StatusServiceUnavailable, get(h, http.MethodGet, "/readyz", "").Code)
}

func TestRouter_Preflight(t *testing.T) {
	h := newTestRouter(nil)
	req := httptest.NewRequest(http.MethodOptions, "/mall/me/cart", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
