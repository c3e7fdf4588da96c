package mallHandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"firstpick/internal/adapters/in/http/handlers/common"
	usecase "firstpick/internal/application/usecase"
)

// ProfileHandler serves the signed-in user's profile:
//
//	GET /   404 until a username has been set
//	PUT /   {"username": "asha"}
type ProfileHandler struct {
	uc  *usecase.ProfileUsecase
	log *zap.Logger
	mux chi.Router
}

type usernameRequest struct {
	Username string `json:"username"`
}

func NewProfileHandler(uc *usecase.ProfileUsecase, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &ProfileHandler{uc: uc, log: log, mux: chi.NewRouter()}
	h.mux.MethodNotAllowed(common.MethodNotAllowed)
	h.mux.NotFound(common.NotFound)
	h.mux.Get("/", h.get)
	h.mux.Put("/", h.put)
	return h
}

func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.Get(r.Context())
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) put(w http.ResponseWriter, r *http.Request) {
	var req usernameRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	p, err := h.uc.SetUsername(r.Context(), req.Username)
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, p)
}
