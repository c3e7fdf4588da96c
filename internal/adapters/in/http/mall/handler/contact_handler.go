package mallHandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"firstpick/internal/adapters/in/http/handlers/common"
	usecase "firstpick/internal/application/usecase"
)

// ContactHandler accepts the public contact form:
//
//	POST /   {"name", "email", "phone", "message"}
type ContactHandler struct {
	uc  *usecase.ContactUsecase
	log *zap.Logger
	mux chi.Router
}

func NewContactHandler(uc *usecase.ContactUsecase, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &ContactHandler{uc: uc, log: log, mux: chi.NewRouter()}
	h.mux.MethodNotAllowed(common.MethodNotAllowed)
	h.mux.NotFound(common.NotFound)
	h.mux.Post("/", h.submit)
	return h
}

func (h *ContactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *ContactHandler) submit(w http.ResponseWriter, r *http.Request) {
	var in usecase.ContactInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	s, err := h.uc.Submit(r.Context(), in)
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, s)
}
