package profile

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradequest/tradequest/internal/domain"
	"github.com/tradequest/tradequest/internal/event"
	"github.com/tradequest/tradequest/internal/store"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newTestService(t *testing.T) Service {
	t.Helper()
	return NewService(store.NewMemory(), event.NewMemoryBus())
}

func buyIntent(bet, entry, exit string) domain.TradeIntent {
	return domain.TradeIntent{
		Position:   domain.PositionBuy,
		BetAmount:  d(bet),
		EntryPrice: d(entry),
		ExitPrice:  d(exit),
	}
}

func TestGetOrCreate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.GetOrCreate(ctx, "user-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "user-1", p.UserID)
	assert.True(t, p.Balance.Equal(StartingBalance))
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 1, p.RankTier)
	assert.Equal(t, "Apprentice Trader", p.RankName)

	// Second call returns the same profile, not a reset one.
	_, err = svc.SettleTrade(ctx, "user-1", buyIntent("1000", "100", "110"))
	require.NoError(t, err)

	again, err := svc.GetOrCreate(ctx, "user-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, again.TotalTrades)
}

func TestGetOrCreate_ConcurrentFirstContact(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	const callers = 10
	var wg sync.WaitGroup
	profiles := make([]*domain.UserProfile, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			profiles[i], errs[i] = svc.GetOrCreate(ctx, "user-1", "alice")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "user-1", profiles[i].UserID)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestSettleTrade(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.GetOrCreate(ctx, "user-1", "alice")
	require.NoError(t, err)

	out, err := svc.SettleTrade(ctx, "user-1", buyIntent("1000", "100", "110"))
	require.NoError(t, err)

	assert.True(t, out.Record.PnL.Equal(d("500.00")), "pnl %s", out.Record.PnL)
	assert.True(t, out.Profile.Balance.Equal(d("10500")))
	assert.NotEmpty(t, out.Record.ID)

	ids := make([]string, 0, len(out.NewAchievements))
	for _, a := range out.NewAchievements {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []string{"first_trade", "first_win"}, ids)

	// The committed state matches what the outcome reported.
	persisted, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, persisted.Balance.Equal(out.Profile.Balance))
	assert.Equal(t, out.Profile.XP, persisted.XP)
}

func TestSettleTrade_SellAndHold(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.GetOrCreate(ctx, "user-1", "alice")
	require.NoError(t, err)

	out, err := svc.SettleTrade(ctx, "user-1", domain.TradeIntent{
		Position: domain.PositionSell, BetAmount: d("1000"),
		EntryPrice: d("100"), ExitPrice: d("110"),
	})
	require.NoError(t, err)
	assert.True(t, out.Record.PnL.Equal(d("-500.00")))

	out, err = svc.SettleTrade(ctx, "user-1", domain.TradeIntent{
		Position: domain.PositionHold, BetAmount: d("1000"),
		EntryPrice: d("100"), ExitPrice: d("110"),
	})
	require.NoError(t, err)
	assert.True(t, out.Record.PnL.IsZero())
}

func TestSettleTrade_UnknownProfile(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.SettleTrade(context.Background(), "ghost", buyIntent("100", "100", "110"))
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestSettleTrade_InvalidIntentLeavesStateUntouched(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	created, err := svc.GetOrCreate(ctx, "user-1", "alice")
	require.NoError(t, err)

	_, err = svc.SettleTrade(ctx, "user-1", buyIntent("-5", "100", "110"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	after, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, after.TotalTrades)
	assert.True(t, after.Balance.Equal(created.Balance))

	trades, err := svc.TradeHistory(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestSettleTrade_AchievementsNotReawarded(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.GetOrCreate(ctx, "user-1", "alice")
	require.NoError(t, err)

	first, err := svc.SettleTrade(ctx, "user-1", buyIntent("1000", "100", "110"))
	require.NoError(t, err)
	require.NotEmpty(t, first.NewAchievements)

	second, err := svc.SettleTrade(ctx, "user-1", buyIntent("1000", "100", "110"))
	require.NoError(t, err)
	for _, a := range second.NewAchievements {
		assert.NotEqual(t, "first_trade", a.ID)
		assert.NotEqual(t, "first_win", a.ID)
	}

	// 200 from the first settlement, 100 win XP from the second.
	assert.Equal(t, first.Profile.XP+100, second.Profile.XP)
}

func TestTradeHistory_OldestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.GetOrCreate(ctx, "user-1", "alice")
	require.NoError(t, err)

	intents := []domain.TradeIntent{
		buyIntent("100", "100", "110"),
		buyIntent("200", "100", "90"),
		buyIntent("300", "100", "105"),
	}
	for _, in := range intents {
		_, err := svc.SettleTrade(ctx, "user-1", in)
		require.NoError(t, err)
	}

	trades, err := svc.TradeHistory(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, trades, 3)

	assert.True(t, trades[0].BetAmount.Equal(d("100")))
	assert.True(t, trades[1].BetAmount.Equal(d("200")))
	assert.True(t, trades[2].BetAmount.Equal(d("300")))
	for i := 1; i < len(trades); i++ {
		assert.False(t, trades[i].Timestamp.Before(trades[i-1].Timestamp))
	}
}

func TestTradeHistory_UnknownProfile(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.TradeHistory(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestSettleTrade_ConcurrentSettlementsAllCommit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.GetOrCreate(ctx, "user-1", "alice")
	require.NoError(t, err)

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SettleTrade(ctx, "user-1", buyIntent("100", "100", "110"))
		}(i)
	}
	wg.Wait()

	var committed int
	for _, err := range errs {
		if err == nil {
			committed++
		} else {
			// A caller may exhaust its retries under heavy contention.
			assert.ErrorIs(t, err, domain.ErrConflict)
		}
	}
	require.Positive(t, committed)

	// Balance reflects exactly the committed settlements.
	p, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	expected := StartingBalance.Add(d("50").Mul(decimal.NewFromInt(int64(committed))))
	assert.True(t, p.Balance.Equal(expected), "balance %s after %d commits", p.Balance, committed)
	assert.Equal(t, committed, p.TotalTrades)
}

func TestPublishesEvents(t *testing.T) {
	st := store.NewMemory()
	bus := event.NewMemoryBus()
	svc := NewService(st, bus)
	ctx := context.Background()

	var mu sync.Mutex
	var types []event.Type
	handler := func(ctx context.Context, e event.Event) error {
		mu.Lock()
		types = append(types, e.Type)
		mu.Unlock()
		return nil
	}
	bus.Subscribe(event.TradeSettled, handler)
	bus.Subscribe(event.AchievementUnlocked, handler)

	_, err := svc.GetOrCreate(ctx, "user-1", "alice")
	require.NoError(t, err)
	_, err = svc.SettleTrade(ctx, "user-1", buyIntent("1000", "100", "110"))
	require.NoError(t, err)

	// Dispatch is synchronous, no waiting needed.
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, types, event.TradeSettled)
	assert.Contains(t, types, event.AchievementUnlocked)
}
