package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/tradequest/tradequest/internal/domain"
)

// achievement pairs a catalog entry with its unlock predicate.
// Predicates are total: they never error, only inspect the profile.
type achievement struct {
	domain.AchievementInfo
	unlocked func(p *domain.UserProfile) bool
}

var catalog = []achievement{
	{
		AchievementInfo: domain.AchievementInfo{
			ID: "first_trade", Name: "First Steps", Description: "Settle your first trade",
			XPReward: 50, Rarity: domain.RarityCommon,
		},
		unlocked: func(p *domain.UserProfile) bool { return p.TotalTrades >= 1 },
	},
	{
		AchievementInfo: domain.AchievementInfo{
			ID: "ten_trades", Name: "Getting Serious", Description: "Settle 10 trades",
			XPReward: 100, Rarity: domain.RarityCommon,
		},
		unlocked: func(p *domain.UserProfile) bool { return p.TotalTrades >= 10 },
	},
	{
		AchievementInfo: domain.AchievementInfo{
			ID: "centurion", Name: "Centurion", Description: "Settle 100 trades",
			XPReward: 500, Rarity: domain.RarityRare,
		},
		unlocked: func(p *domain.UserProfile) bool { return p.TotalTrades >= 100 },
	},
	{
		AchievementInfo: domain.AchievementInfo{
			ID: "first_win", Name: "On the Board", Description: "Win your first trade",
			XPReward: 50, Rarity: domain.RarityCommon,
		},
		unlocked: func(p *domain.UserProfile) bool { return p.WinningTrades >= 1 },
	},
	{
		AchievementInfo: domain.AchievementInfo{
			ID: "hot_streak", Name: "Hot Streak", Description: "Win 5 trades in a row",
			XPReward: 200, Rarity: domain.RarityRare,
		},
		unlocked: func(p *domain.UserProfile) bool { return p.CurrentStreak >= 5 },
	},
	{
		AchievementInfo: domain.AchievementInfo{
			ID: "unstoppable", Name: "Unstoppable", Description: "Reach a 10-trade win streak",
			XPReward: 500, Rarity: domain.RarityEpic,
		},
		unlocked: func(p *domain.UserProfile) bool { return p.LongestStreak >= 10 },
	},
	{
		AchievementInfo: domain.AchievementInfo{
			ID: "big_fish", Name: "Big Fish", Description: "Bank 1,000 profit on a single trade",
			XPReward: 250, Rarity: domain.RarityRare,
		},
		unlocked: func(p *domain.UserProfile) bool {
			return p.BestTrade.GreaterThanOrEqual(decimal.NewFromInt(1_000))
		},
	},
	{
		AchievementInfo: domain.AchievementInfo{
			ID: "profit_hunter", Name: "Profit Hunter", Description: "Accumulate 10,000 total profit",
			XPReward: 300, Rarity: domain.RarityRare,
		},
		unlocked: func(p *domain.UserProfile) bool {
			return p.TotalProfit.GreaterThanOrEqual(decimal.NewFromInt(10_000))
		},
	},
	{
		AchievementInfo: domain.AchievementInfo{
			ID: "comeback_kid", Name: "Comeback Kid", Description: "Go profitable after 10 losing trades",
			XPReward: 400, Rarity: domain.RarityEpic,
		},
		unlocked: func(p *domain.UserProfile) bool {
			return p.LosingTrades >= 10 && p.TotalProfit.IsPositive()
		},
	},
	{
		AchievementInfo: domain.AchievementInfo{
			ID: "millionaire", Name: "Millionaire", Description: "Accumulate 1,000,000 total profit",
			XPReward: 2_000, Rarity: domain.RarityLegendary,
		},
		unlocked: func(p *domain.UserProfile) bool {
			return p.TotalProfit.GreaterThanOrEqual(decimal.NewFromInt(1_000_000))
		},
	},
}

// Achievements returns the static catalog entries.
func Achievements() []domain.AchievementInfo {
	out := make([]domain.AchievementInfo, len(catalog))
	for i, a := range catalog {
		out[i] = a.AchievementInfo
	}
	return out
}

// AchievementByID looks up a catalog entry.
func AchievementByID(id string) (domain.AchievementInfo, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a.AchievementInfo, true
		}
	}
	return domain.AchievementInfo{}, false
}

// EvaluateAchievements appends every newly-true achievement id to the
// profile and credits its XP reward. The already-held check precedes the
// predicate, so re-running the pass is a no-op for unlocked ids.
func EvaluateAchievements(p *domain.UserProfile) []domain.AchievementInfo {
	var unlocked []domain.AchievementInfo
	for _, a := range catalog {
		if p.HasAchievement(a.ID) {
			continue
		}
		if !a.unlocked(p) {
			continue
		}
		p.Achievements = append(p.Achievements, a.ID)
		p.XP += a.XPReward
		unlocked = append(unlocked, a.AchievementInfo)
	}
	return unlocked
}
