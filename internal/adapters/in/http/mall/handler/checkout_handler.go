package mallHandler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"firstpick/internal/adapters/in/http/handlers/common"
	usecase "firstpick/internal/application/usecase"
)

// CheckoutHandler handles POST / with a usecase.CheckoutInput body.
type CheckoutHandler struct {
	uc  *usecase.CheckoutUsecase
	log *zap.Logger
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutHandler{uc: uc, log: log}
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		common.MethodNotAllowed(w, r)
		return
	}

	var in usecase.CheckoutInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}

	res, err := h.uc.Checkout(r.Context(), in)
	switch {
	case errors.Is(err, usecase.ErrCartNotCleared):
		// the order exists; the shopper still needs its number
		common.WriteJSON(w, http.StatusInternalServerError, common.ErrorResponse{
			Error:   "order placed but the cart could not be cleared",
			OrderID: res.OrderNumber,
		})
	case err != nil:
		common.WriteUsecaseError(w, h.log, err)
	default:
		common.WriteJSON(w, http.StatusCreated, res)
	}
}
