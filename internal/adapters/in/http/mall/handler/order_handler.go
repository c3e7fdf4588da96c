package mallHandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"firstpick/internal/adapters/in/http/handlers/common"
	usecase "firstpick/internal/application/usecase"
	orderdom "firstpick/internal/domain/order"
)

// OrderHandler serves the signed-in user's order history:
//
//	GET /       own orders, newest first
//	GET /{id}   one own order
type OrderHandler struct {
	uc  *usecase.OrderUsecase
	log *zap.Logger
	mux chi.Router
}

func NewOrderHandler(uc *usecase.OrderUsecase, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &OrderHandler{uc: uc, log: log, mux: chi.NewRouter()}
	h.mux.MethodNotAllowed(common.MethodNotAllowed)
	h.mux.NotFound(common.NotFound)
	h.mux.Get("/", h.list)
	h.mux.Get("/{id}", h.get)
	return h
}

func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.uc.ListMine(r.Context())
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	if list == nil {
		list = []orderdom.Order{}
	}
	common.WriteJSON(w, http.StatusOK, list)
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.uc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, o)
}
