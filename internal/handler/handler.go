package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"medcart/internal/model"

	"github.com/rs/zerolog"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeDomainError maps a business error to its HTTP status. Unexpected
// errors become a 500 without leaking detail.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		writeError(w, http.StatusInternalServerError, "internal server error", logger)
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Code {
	case model.ErrCodeIllegalTransition:
		status = http.StatusUnprocessableEntity
	case model.ErrCodeLimitReached:
		status = http.StatusConflict
	case model.ErrCodeOutOfStock, model.ErrCodeInvalidQuantity, model.ErrCodeEmptyCart, model.ErrCodeUnknownStatus:
		status = http.StatusBadRequest
	case model.ErrCodeOrderNotFound, model.ErrCodeMedicineNotFound:
		status = http.StatusNotFound
	case model.ErrCodeRemoteSync:
		status = http.StatusBadGateway
	}

	logger.Warn().
		Str("code", domainErr.Code).
		Int("status", status).
		Str("error", domainErr.Message).
		Msg("domain error")

	writeJSON(w, status, ErrorResponse{Error: domainErr.Message, Code: domainErr.Code})
}

// cartIDFrom extracts the cart identity from the request. Each customer
// session carries its cart ID in a header set by the storefront.
func cartIDFrom(r *http.Request) (model.CartID, bool) {
	id := r.Header.Get("X-Cart-ID")
	if id == "" {
		return "", false
	}
	return model.CartID(id), true
}
