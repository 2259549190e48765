package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradequest/tradequest/internal/domain"
)

func TestEvaluateAchievements_IdempotentXP(t *testing.T) {
	p := domain.UserProfile{
		TotalTrades:   1,
		WinningTrades: 1,
		CurrentStreak: 1,
	}

	unlocked := EvaluateAchievements(&p)
	require.Len(t, unlocked, 2)
	assert.Contains(t, p.Achievements, "first_trade")
	assert.Contains(t, p.Achievements, "first_win")
	assert.Equal(t, int64(100), p.XP)

	// Re-running against the same state awards nothing again.
	again := EvaluateAchievements(&p)
	assert.Empty(t, again)
	assert.Equal(t, int64(100), p.XP)
	assert.Len(t, p.Achievements, 2)
}

func TestEvaluateAchievements_HeldIDSkipsPredicate(t *testing.T) {
	p := domain.UserProfile{
		TotalTrades:  1,
		Achievements: []string{"first_trade"},
	}

	unlocked := EvaluateAchievements(&p)
	assert.Empty(t, unlocked)
	assert.Equal(t, int64(0), p.XP)
}

func TestEvaluateAchievements_Thresholds(t *testing.T) {
	p := domain.UserProfile{
		TotalTrades:   100,
		WinningTrades: 60,
		LosingTrades:  40,
		CurrentStreak: 5,
		LongestStreak: 12,
		BestTrade:     decimal.NewFromInt(2_500),
		TotalProfit:   decimal.NewFromInt(15_000),
	}

	unlocked := EvaluateAchievements(&p)

	ids := make([]string, 0, len(unlocked))
	for _, a := range unlocked {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []string{
		"first_trade", "ten_trades", "centurion", "first_win",
		"hot_streak", "unstoppable", "big_fish", "profit_hunter",
		"comeback_kid",
	}, ids)
	assert.NotContains(t, ids, "millionaire")
}

func TestAchievementByID(t *testing.T) {
	info, ok := AchievementByID("big_fish")
	require.True(t, ok)
	assert.Equal(t, "Big Fish", info.Name)
	assert.Equal(t, domain.RarityRare, info.Rarity)

	_, ok = AchievementByID("nope")
	assert.False(t, ok)
}

func TestCatalog_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, a := range Achievements() {
		assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
		assert.Positive(t, a.XPReward)
		seen[a.ID] = true
	}
	assert.Len(t, seen, 10)
}
