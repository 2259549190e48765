package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the direction of a trade.
type Position string

const (
	PositionBuy  Position = "BUY"
	PositionSell Position = "SELL"
	PositionHold Position = "HOLD"
)

// Valid reports whether the position is one of BUY, SELL, HOLD.
func (p Position) Valid() bool {
	switch p {
	case PositionBuy, PositionSell, PositionHold:
		return true
	}
	return false
}

// DefaultLeverage is the fixed multiplier applied to percentage price moves.
const DefaultLeverage = 5

// TradeIntent is the input to a settlement: what the user wants scored.
type TradeIntent struct {
	Position   Position        `json:"position"`
	BetAmount  decimal.Decimal `json:"bet_amount"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	ExitPrice  decimal.Decimal `json:"exit_price"`
	Leverage   int             `json:"leverage,omitempty"`
}

// TradeRecord is the immutable log entry for one settled trade.
// Created exactly once per settlement, append-only.
type TradeRecord struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Position   Position        `json:"position"`
	BetAmount  decimal.Decimal `json:"bet_amount"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	ExitPrice  decimal.Decimal `json:"exit_price"`
	PnL        decimal.Decimal `json:"pnl"`
	Leverage   int             `json:"leverage"`
	Timestamp  time.Time       `json:"timestamp"`
}
