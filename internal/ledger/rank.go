package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/tradequest/tradequest/internal/domain"
)

// rankTiers is the static seven-tier table. Bands are contiguous and
// non-overlapping: tier 0 is open below, tier 6 open above. Apprentice
// starts at exactly 0 profit.
var rankTiers = []domain.RankTier{
	{Tier: 0, Name: "Novice Trader", MaxProfit: decimal.NewFromInt(0)},
	{Tier: 1, Name: "Apprentice Trader", MinProfit: decimal.NewFromInt(0), MaxProfit: decimal.NewFromInt(1_000)},
	{Tier: 2, Name: "Skilled Trader", MinProfit: decimal.NewFromInt(1_000), MaxProfit: decimal.NewFromInt(5_000)},
	{Tier: 3, Name: "Expert Trader", MinProfit: decimal.NewFromInt(5_000), MaxProfit: decimal.NewFromInt(25_000)},
	{Tier: 4, Name: "Master Trader", MinProfit: decimal.NewFromInt(25_000), MaxProfit: decimal.NewFromInt(100_000)},
	{Tier: 5, Name: "Elite Trader", MinProfit: decimal.NewFromInt(100_000), MaxProfit: decimal.NewFromInt(500_000)},
	{Tier: 6, Name: "Legendary Trader", MinProfit: decimal.NewFromInt(500_000)},
}

// RankTiers returns a copy of the static tier table.
func RankTiers() []domain.RankTier {
	out := make([]domain.RankTier, len(rankTiers))
	copy(out, rankTiers)
	return out
}

// RankFor returns the unique tier whose band contains totalProfit.
// Linear scan; the table is seven rows.
func RankFor(totalProfit decimal.Decimal) domain.RankTier {
	last := len(rankTiers) - 1
	for i, t := range rankTiers {
		aboveMin := i == 0 || totalProfit.GreaterThanOrEqual(t.MinProfit)
		belowMax := i == last || totalProfit.LessThan(t.MaxProfit)
		if aboveMin && belowMax {
			return t
		}
	}
	// Unreachable: the bands are exhaustive over (-inf, +inf).
	return rankTiers[last]
}

// LevelFor derives the level from total XP.
func LevelFor(xp int64) int {
	if xp < 0 {
		return 1
	}
	return int(xp/XPPerLevel) + 1
}
