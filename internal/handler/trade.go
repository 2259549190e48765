package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tradequest/tradequest/internal/domain"
	"github.com/tradequest/tradequest/internal/logger"
	"github.com/tradequest/tradequest/internal/profile"
)

// TradeHandler serves single-player trade settlement and history.
type TradeHandler struct {
	service profile.Service
}

func NewTradeHandler(service profile.Service) *TradeHandler {
	return &TradeHandler{service: service}
}

// SettleTradeRequest represents the body of the settle request
type SettleTradeRequest struct {
	UserID     string          `json:"user_id" validate:"required,max=64"`
	Position   string          `json:"position" validate:"required,position"`
	BetAmount  decimal.Decimal `json:"bet_amount" validate:"required"`
	EntryPrice decimal.Decimal `json:"entry_price" validate:"required"`
	ExitPrice  decimal.Decimal `json:"exit_price" validate:"required"`
	Leverage   int             `json:"leverage,omitempty" validate:"omitempty,min=1,max=100"`
}

// HandleSettleTrade settles one trade against the caller's profile.
func (h *TradeHandler) HandleSettleTrade(w http.ResponseWriter, r *http.Request) {
	var req SettleTradeRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Settle trade"); err != nil {
		return
	}

	outcome, err := h.service.SettleTrade(r.Context(), req.UserID, domain.TradeIntent{
		Position:   domain.Position(req.Position),
		BetAmount:  req.BetAmount,
		EntryPrice: req.EntryPrice,
		ExitPrice:  req.ExitPrice,
		Leverage:   req.Leverage,
	})
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to settle trade", "error", err, "user_id", req.UserID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, outcome)
}

// TradeHistoryResponse wraps the user's settled trades.
type TradeHistoryResponse struct {
	UserID string               `json:"user_id"`
	Trades []domain.TradeRecord `json:"trades"`
}

// HandleTradeHistory returns the user's settled trades, oldest first.
func (h *TradeHandler) HandleTradeHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetQueryParam(r, w, "user_id")
	if !ok {
		return
	}

	trades, err := h.service.TradeHistory(r.Context(), userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to get trade history", "error", err, "user_id", userID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, TradeHistoryResponse{UserID: userID, Trades: trades})
}
