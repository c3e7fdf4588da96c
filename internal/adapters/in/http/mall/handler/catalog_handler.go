package mallHandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"firstpick/internal/adapters/in/http/handlers/common"
	usecase "firstpick/internal/application/usecase"
)

// CatalogHandler serves the public catalog:
//
//	GET /products            all products, or search results when ?q= is set
//	GET /products/{id}
//	GET /categories          known category names
//	GET /categories/{slug}/products
type CatalogHandler struct {
	uc  *usecase.ProductUsecase
	log *zap.Logger
	mux chi.Router
}

func NewCatalogHandler(uc *usecase.ProductUsecase, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &CatalogHandler{uc: uc, log: log, mux: chi.NewRouter()}
	h.mux.MethodNotAllowed(common.MethodNotAllowed)
	h.mux.NotFound(common.NotFound)
	h.mux.Get("/products", h.list)
	h.mux.Get("/products/{id}", h.get)
	h.mux.Get("/categories", h.categories)
	h.mux.Get("/categories/{slug}/products", h.listByCategory)
	return h
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	var (
		res any
		err error
	)
	if q != "" {
		res, err = h.uc.Search(r.Context(), q)
	} else {
		res, err = h.uc.List(r.Context())
	}
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, res)
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) categories(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, h.uc.Categories())
}

func (h *CatalogHandler) listByCategory(w http.ResponseWriter, r *http.Request) {
	list, err := h.uc.ListByCategory(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, list)
}
