package handler

import (
	"net/http"
	"strconv"

	"github.com/tradequest/tradequest/internal/domain"
	"github.com/tradequest/tradequest/internal/logger"
	"github.com/tradequest/tradequest/internal/market"
)

const (
	defaultCandleLimit = 50
	maxCandleLimit     = 500
)

// MarketHandler serves candle data for the trading charts.
type MarketHandler struct {
	source market.Source
}

func NewMarketHandler(source market.Source) *MarketHandler {
	return &MarketHandler{source: source}
}

// CandlesResponse wraps one symbol's candle series.
type CandlesResponse struct {
	Symbol   string          `json:"symbol"`
	Interval string          `json:"interval"`
	Candles  []domain.Candle `json:"candles"`
}

// HandleGetCandles returns up to limit candles for symbol and interval.
func (h *MarketHandler) HandleGetCandles(w http.ResponseWriter, r *http.Request) {
	symbol, ok := GetQueryParam(r, w, "symbol")
	if !ok {
		return
	}
	interval := GetOptionalQueryParam(r, "interval", "1m")

	limitStr := GetOptionalQueryParam(r, "limit", strconv.Itoa(defaultCandleLimit))
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > maxCandleLimit {
		http.Error(w, ErrMsgInvalidLimit, http.StatusBadRequest)
		return
	}

	candles, err := h.source.Candles(r.Context(), symbol, interval, limit)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to fetch candles", "error", err, "symbol", symbol)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, CandlesResponse{Symbol: symbol, Interval: interval, Candles: candles})
}
