package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserProfile is the authoritative per-user aggregate. It is created on
// first contact with a new user id and mutated only through settlement.
type UserProfile struct {
	UserID        string          `json:"user_id"`
	Username      string          `json:"username"`
	Balance       decimal.Decimal `json:"balance"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	XP            int64           `json:"xp"`
	Level         int             `json:"level"`
	RankTier      int             `json:"rank_tier"`
	RankName      string          `json:"rank_name"`
	TotalTrades   int             `json:"total_trades"`
	WinningTrades int             `json:"winning_trades"`
	LosingTrades  int             `json:"losing_trades"`
	BestTrade     decimal.Decimal `json:"best_trade"`
	WorstTrade    decimal.Decimal `json:"worst_trade"`
	CurrentStreak int             `json:"current_streak"`
	LongestStreak int             `json:"longest_streak"`
	// Achievements only ever grows; order is insertion order.
	Achievements []string  `json:"achievements"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasAchievement reports whether the profile already holds the given id.
func (p *UserProfile) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// WinRate returns the fraction of winning trades, 0 when no trades settled.
func (p *UserProfile) WinRate() float64 {
	if p.TotalTrades == 0 {
		return 0
	}
	return float64(p.WinningTrades) / float64(p.TotalTrades)
}
