package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tradequest/tradequest/internal/domain"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already sent; all we can do is log.
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// mapServiceErrorToUserMessage converts domain errors to HTTP status codes
// and messages a caller can act on. Validation problems are 400, missing
// aggregates 404, commit races 409, and rule violations 422.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidRequestSummary
	case errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusNotFound, ErrMsgProfileNotFound
	case errors.Is(err, domain.ErrContestNotFound):
		return http.StatusNotFound, ErrMsgContestNotFound
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrMsgParticipantMissing
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, ErrMsgSettlementBusy
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, ErrMsgNotEnoughBalance
	case errors.Is(err, domain.ErrSellCapExceeded):
		return http.StatusUnprocessableEntity, ErrMsgSellCapReached
	case errors.Is(err, domain.ErrRoundsExhausted):
		return http.StatusUnprocessableEntity, ErrMsgNoRoundsLeft
	case errors.Is(err, domain.ErrRoundNotOpen):
		return http.StatusUnprocessableEntity, ErrMsgRoundNotOpen
	case errors.Is(err, domain.ErrExternalData):
		return http.StatusBadGateway, ErrMsgMarketUnavailable
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
