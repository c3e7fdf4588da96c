package consoleHandler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"firstpick/internal/adapters/in/http/handlers/common"
	usecase "firstpick/internal/application/usecase"
	orderdom "firstpick/internal/domain/order"
)

// OrderHandler is the admin order console:
//
//	GET   /               ?page=&perPage=&status=pending,shipped&q=&userId=
//	GET   /{id}
//	PATCH /{id}/status    {"status": "shipped"}
type OrderHandler struct {
	uc  *usecase.OrderUsecase
	log *zap.Logger
	mux chi.Router
}

type setStatusRequest struct {
	Status string `json:"status"`
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
	h.mux.Patch("/{id}/status", h.setStatus)
	return h
}

func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	page, err := common.QueryInt(r, "page", 1)
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	perPage, err := common.QueryInt(r, "perPage", orderdom.DefaultPerPage)
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}

	res, err := h.uc.ListAll(r.Context(), filter, orderdom.Page{Number: page, PerPage: perPage})
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	if res.Items == nil {
		res.Items = []orderdom.Order{}
	}
	common.WriteJSON(w, http.StatusOK, res)
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.uc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	o, err := h.uc.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, o)
}

// parseFilter reads status as a comma list of status names.
func parseFilter(r *http.Request) (orderdom.Filter, error) {
	q := r.URL.Query()
	f := orderdom.Filter{
		UserID: strings.TrimSpace(q.Get("userId")),
		Query:  strings.TrimSpace(q.Get("q")),
	}
	for _, raw := range strings.Split(q.Get("status"), ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		s, err := orderdom.ParseStatus(raw)
		if err != nil {
			return orderdom.Filter{}, fmt.Errorf("%w: %w", usecase.ErrInvalidArgument, err)
		}
		f.Statuses = append(f.Statuses, s)
	}
	return f, nil
}
