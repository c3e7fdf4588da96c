package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	usecase "firstpick/internal/application/usecase"
	billingdom "firstpick/internal/domain/billing"
	cartdom "firstpick/internal/domain/cart"
	contactdom "firstpick/internal/domain/contact"
	orderdom "firstpick/internal/domain/order"
	productdom "firstpick/internal/domain/product"
	userdom "firstpick/internal/domain/user"
)

// maxJSONBody caps request bodies decoded by DecodeJSON.
const maxJSONBody = 1 << 20

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error      string                  `json:"error"`
	Fields     []billingdom.FieldError `json:"fields,omitempty"`
	ProductIDs []string                `json:"productIds,omitempty"`
	OrderID    string                  `json:"orderId,omitempty"`
}

// ------------------------------
// Utility functions
// ------------------------------

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, ErrorResponse{Error: msg})
}

func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed")
}

func NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found")
}

// DecodeJSON decodes a single JSON object and rejects unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid json body: %v", usecase.ErrInvalidArgument, err)
	}
	return nil
}

// QueryInt parses a positive integer query parameter; blank yields def.
func QueryInt(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidArgument, key)
	}
	return n, nil
}

// ------------------------------
// Error mapping
// ------------------------------

// StatusOf maps a usecase error onto an HTTP status.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, usecase.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, billingdom.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrProductUnavailable):
		return http.StatusConflict
	case errors.Is(err, orderdom.ErrNotFound),
		errors.Is(err, productdom.ErrNotFound),
		errors.Is(err, cartdom.ErrItemNotFound),
		errors.Is(err, contactdom.ErrNotFound),
		errors.Is(err, userdom.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrEmptyCart),
		errors.Is(err, usecase.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteUsecaseError writes the mapped status and body for err.
// Server-side failures are logged and answered with a generic message.
func WriteUsecaseError(w http.ResponseWriter, log *zap.Logger, err error) {
	code := StatusOf(err)
	body := ErrorResponse{Error: err.Error()}

	var ve *billingdom.ValidationError
	if errors.As(err, &ve) {
		body.Fields = ve.Fields
	}
	var pu *usecase.ProductUnavailableError
	if errors.As(err, &pu) {
		body.ProductIDs = pu.ProductIDs
	}

	if code >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", zap.Error(err))
		}
		body = ErrorResponse{Error: "internal server error"}
	}
	WriteJSON(w, code, body)
}
