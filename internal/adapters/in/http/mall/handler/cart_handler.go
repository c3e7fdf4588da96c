package mallHandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"firstpick/internal/adapters/in/http/handlers/common"
	usecase "firstpick/internal/application/usecase"
)

// CartHandler serves the signed-in user's cart:
//
//	GET    /                     reconciled cart view
//	DELETE /                     clear
//	POST   /items                {productId, quantity}
//	PATCH  /items/{productId}    {quantity}; quantity < 1 is ignored
//	DELETE /items/{productId}
type CartHandler struct {
	uc  *usecase.CartUsecase
	log *zap.Logger
	mux chi.Router
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func NewCartHandler(uc *usecase.CartUsecase, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &CartHandler{uc: uc, log: log, mux: chi.NewRouter()}
	h.mux.MethodNotAllowed(common.MethodNotAllowed)
	h.mux.NotFound(common.NotFound)
	h.mux.Get("/", h.get)
	h.mux.Delete("/", h.clear)
	h.mux.Post("/items", h.addItem)
	h.mux.Patch("/items/{productId}", h.setQuantity)
	h.mux.Delete("/items/{productId}", h.removeItem)
	return h
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	v, err := h.uc.Load(r.Context())
	h.writeView(w, v, err)
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	v, err := h.uc.Add(r.Context(), req.ProductID, qty)
	h.writeView(w, v, err)
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	v, err := h.uc.UpdateQuantity(r.Context(), chi.URLParam(r, "productId"), req.Quantity)
	h.writeView(w, v, err)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	v, err := h.uc.Remove(r.Context(), chi.URLParam(r, "productId"))
	h.writeView(w, v, err)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Clear(r.Context()); err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) writeView(w http.ResponseWriter, v usecase.CartView, err error) {
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, v)
}
