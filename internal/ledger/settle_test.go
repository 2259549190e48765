package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradequest/tradequest/internal/domain"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func freshProfile() domain.UserProfile {
	return domain.UserProfile{
		UserID:   "user-1",
		Username: "tester",
		Balance:  decimal.NewFromInt(10_000),
	}
}

func intent(pos domain.Position, bet, entry, exit string) domain.TradeIntent {
	return domain.TradeIntent{
		Position:   pos,
		BetAmount:  d(bet),
		EntryPrice: d(entry),
		ExitPrice:  d(exit),
	}
}

func TestPnL_BuySellHold(t *testing.T) {
	bet, entry, exit := d("1000"), d("100"), d("110")

	assert.True(t, PnL(domain.PositionBuy, bet, entry, exit, 5).Equal(d("500.00")))
	assert.True(t, PnL(domain.PositionSell, bet, entry, exit, 5).Equal(d("-500.00")))
	assert.True(t, PnL(domain.PositionHold, bet, entry, exit, 5).IsZero())
}

func TestPnL_RoundsHalfAwayFromZero(t *testing.T) {
	// 1 * ((100.005 - 100) / 100) * 5 = 0.00025 -> rounds via scale-2 output
	pnl := PnL(domain.PositionBuy, d("1000"), d("100"), d("100.005"), 5)
	assert.True(t, pnl.Equal(d("0.25")), "got %s", pnl)

	// Exactly half a cent rounds away from zero in both directions.
	pnl = PnL(domain.PositionBuy, d("10"), d("100"), d("100.01"), 5)
	assert.True(t, pnl.Equal(d("0.01")), "got %s", pnl)
	pnl = PnL(domain.PositionSell, d("10"), d("100"), d("100.01"), 5)
	assert.True(t, pnl.Equal(d("-0.01")), "got %s", pnl)
}

func TestSettle_WinMutations(t *testing.T) {
	res, err := Settle(freshProfile(), intent(domain.PositionBuy, "1000", "100", "110"), time.Now())
	require.NoError(t, err)

	p := res.Profile
	assert.True(t, p.Balance.Equal(d("10500")), "balance %s", p.Balance)
	assert.True(t, p.TotalProfit.Equal(d("500")), "total profit %s", p.TotalProfit)
	assert.Equal(t, 1, p.TotalTrades)
	assert.Equal(t, 1, p.WinningTrades)
	assert.Equal(t, 0, p.LosingTrades)
	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, 1, p.LongestStreak)
	assert.True(t, p.BestTrade.Equal(d("500")))
	assert.True(t, p.WorstTrade.Equal(d("500")))

	// 100 for the win plus first_trade (50) and first_win (50).
	assert.Equal(t, int64(200), p.XP)
	assert.Equal(t, 1, p.Level)

	assert.True(t, res.Record.PnL.Equal(d("500")))
	assert.Equal(t, domain.DefaultLeverage, res.Record.Leverage)
}

func TestSettle_LossResetsStreak(t *testing.T) {
	p := freshProfile()
	p.CurrentStreak = 3
	p.LongestStreak = 3
	p.TotalTrades = 3
	p.WinningTrades = 3

	res, err := Settle(p, intent(domain.PositionBuy, "1000", "100", "90"), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 0, res.Profile.CurrentStreak)
	assert.Equal(t, 3, res.Profile.LongestStreak)
	assert.Equal(t, 1, res.Profile.LosingTrades)
	assert.True(t, res.Profile.TotalProfit.Equal(d("-500")))
}

func TestSettle_HoldAwardsFlatXP(t *testing.T) {
	res, err := Settle(freshProfile(), intent(domain.PositionHold, "1000", "100", "90"), time.Now())
	require.NoError(t, err)

	assert.True(t, res.Record.PnL.IsZero())
	assert.Equal(t, 0, res.Profile.WinningTrades)
	assert.Equal(t, 0, res.Profile.LosingTrades)
	// 25 flat plus first_trade (50).
	assert.Equal(t, int64(75), res.Profile.XP)
}

func TestSettle_WorstTradeTracked(t *testing.T) {
	res, err := Settle(freshProfile(), intent(domain.PositionSell, "1000", "100", "110"), time.Now())
	require.NoError(t, err)
	assert.True(t, res.Profile.WorstTrade.Equal(d("-500")))
	assert.True(t, res.Profile.BestTrade.Equal(d("-500")), "first trade seeds both extremes")

	res2, err := Settle(res.Profile, intent(domain.PositionBuy, "100", "100", "110"), time.Now())
	require.NoError(t, err)
	assert.True(t, res2.Profile.BestTrade.Equal(d("50")))
	assert.True(t, res2.Profile.WorstTrade.Equal(d("-500")))
}

func TestSettle_ValidationBeforeMutation(t *testing.T) {
	cases := []struct {
		name   string
		intent domain.TradeIntent
	}{
		{"zero bet", intent(domain.PositionBuy, "0", "100", "110")},
		{"negative bet", intent(domain.PositionBuy, "-5", "100", "110")},
		{"zero entry", intent(domain.PositionBuy, "100", "0", "110")},
		{"negative exit", intent(domain.PositionBuy, "100", "100", "-1")},
		{"bad position", intent("LONG", "100", "100", "110")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Settle(freshProfile(), tc.intent, time.Now())
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettle_CustomLeverage(t *testing.T) {
	in := intent(domain.PositionBuy, "1000", "100", "110")
	in.Leverage = 2

	res, err := Settle(freshProfile(), in, time.Now())
	require.NoError(t, err)
	assert.True(t, res.Record.PnL.Equal(d("200")))
	assert.Equal(t, 2, res.Record.Leverage)
}

func TestSettle_DoesNotMutateInput(t *testing.T) {
	p := freshProfile()
	p.Achievements = []string{"first_trade"}

	_, err := Settle(p, intent(domain.PositionBuy, "1000", "100", "110"), time.Now())
	require.NoError(t, err)

	assert.Equal(t, []string{"first_trade"}, p.Achievements)
	assert.Equal(t, 0, p.TotalTrades)
	assert.True(t, p.Balance.Equal(d("10000")))
}

// TestSettle_TotalProfitOrderIndependent verifies that totalProfit after N
// trades equals the sum of their individual pnl values regardless of the
// order they settle in.
func TestSettle_TotalProfitOrderIndependent(t *testing.T) {
	trades := []domain.TradeIntent{
		intent(domain.PositionBuy, "1000", "100", "112"),
		intent(domain.PositionSell, "500", "80", "95"),
		intent(domain.PositionBuy, "250", "50", "49"),
		intent(domain.PositionHold, "100", "10", "20"),
		intent(domain.PositionSell, "750", "200", "180"),
	}

	expected := decimal.Zero
	for _, tr := range trades {
		lev := tr.Leverage
		if lev == 0 {
			lev = domain.DefaultLeverage
		}
		expected = expected.Add(PnL(tr.Position, tr.BetAmount, tr.EntryPrice, tr.ExitPrice, lev))
	}

	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 10; run++ {
		shuffled := append([]domain.TradeIntent(nil), trades...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		p := freshProfile()
		for _, tr := range shuffled {
			res, err := Settle(p, tr, time.Now())
			require.NoError(t, err)
			p = res.Profile
		}
		assert.True(t, p.TotalProfit.Equal(expected),
			"run %d: total %s, want %s", run, p.TotalProfit, expected)
	}
}
