package consoleHandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"firstpick/internal/adapters/in/http/handlers/common"
	usecase "firstpick/internal/application/usecase"
	contactdom "firstpick/internal/domain/contact"
)

// ContactHandler lets admins read the contact form inbox:
//
//	GET    /       newest first
//	DELETE /{id}
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
	h.mux.Get("/", h.list)
	h.mux.Delete("/{id}", h.delete)
	return h
}

func (h *ContactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *ContactHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.uc.List(r.Context())
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	if list == nil {
		list = []contactdom.Submission{}
	}
	common.WriteJSON(w, http.StatusOK, list)
}

func (h *ContactHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
