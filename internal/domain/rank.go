package domain

import "github.com/shopspring/decimal"

// RankTier is one of seven ordered profit bands mapping to a trader title.
// Bands are contiguous and exhaustive: the first tier is open below, the
// last is open above, every other tier covers [MinProfit, MaxProfit).
type RankTier struct {
	Tier      int             `json:"tier"`
	Name      string          `json:"name"`
	MinProfit decimal.Decimal `json:"min_profit"` // inclusive; ignored for the first tier
	MaxProfit decimal.Decimal `json:"max_profit"` // exclusive; ignored for the last tier
}

// Rarity classifies achievements for display.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// AchievementInfo is the static catalog entry exposed to clients.
// The unlock predicate itself lives in the ledger package.
type AchievementInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XPReward    int64  `json:"xp_reward"`
	Rarity      Rarity `json:"rarity"`
}
