// Package ledger is the pure settlement core: trade P&L, the profile
// mutation rules, the rank table and the achievement catalog. It performs
// no I/O; persistence is the caller's responsibility.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradequest/tradequest/internal/domain"
)

// SettleResult is the outcome of settling one trade against a profile.
type SettleResult struct {
	Profile         domain.UserProfile
	Record          domain.TradeRecord
	NewAchievements []domain.AchievementInfo
}

// Settle scores a trade intent against a profile and returns the mutated
// copy, the immutable trade record, and any newly unlocked achievements.
// Validation happens before any mutation; on error the input profile is
// untouched.
func Settle(profile domain.UserProfile, intent domain.TradeIntent, now time.Time) (SettleResult, error) {
	if err := validateIntent(intent); err != nil {
		return SettleResult{}, err
	}

	leverage := intent.Leverage
	if leverage == 0 {
		leverage = domain.DefaultLeverage
	}

	pnl := PnL(intent.Position, intent.BetAmount, intent.EntryPrice, intent.ExitPrice, leverage)

	p := profile
	p.Achievements = append([]string(nil), profile.Achievements...)

	p.Balance = p.Balance.Add(pnl)
	p.TotalProfit = p.TotalProfit.Add(pnl)
	p.TotalTrades++

	switch {
	case pnl.IsPositive():
		p.WinningTrades++
		p.CurrentStreak++
		if p.CurrentStreak > p.LongestStreak {
			p.LongestStreak = p.CurrentStreak
		}
		p.XP += XPWin
	case pnl.IsNegative():
		p.LosingTrades++
		p.CurrentStreak = 0
		p.XP += XPLoss
	default:
		p.XP += XPHold
	}

	if p.TotalTrades == 1 {
		// First settlement seeds both extremes.
		p.BestTrade = pnl
		p.WorstTrade = pnl
	} else {
		if pnl.GreaterThan(p.BestTrade) {
			p.BestTrade = pnl
		}
		if pnl.LessThan(p.WorstTrade) {
			p.WorstTrade = pnl
		}
	}

	newAchievements := EvaluateAchievements(&p)

	rank := RankFor(p.TotalProfit)
	p.RankTier = rank.Tier
	p.RankName = rank.Name
	p.Level = LevelFor(p.XP)
	p.UpdatedAt = now

	record := domain.TradeRecord{
		ID:         uuid.NewString(),
		UserID:     profile.UserID,
		Position:   intent.Position,
		BetAmount:  intent.BetAmount,
		EntryPrice: intent.EntryPrice,
		ExitPrice:  intent.ExitPrice,
		PnL:        pnl,
		Leverage:   leverage,
		Timestamp:  now,
	}

	return SettleResult{Profile: p, Record: record, NewAchievements: newAchievements}, nil
}

// PnL computes the leveraged profit or loss of a closed position, rounded
// to two places half away from zero.
//
//	BUY:  bet * ((exit - entry) / entry) * leverage
//	SELL: bet * ((entry - exit) / entry) * leverage
//	HOLD: 0
func PnL(position domain.Position, bet, entry, exit decimal.Decimal, leverage int) decimal.Decimal {
	var move decimal.Decimal
	switch position {
	case domain.PositionBuy:
		move = exit.Sub(entry)
	case domain.PositionSell:
		move = entry.Sub(exit)
	default:
		return decimal.Zero
	}
	lev := decimal.NewFromInt(int64(leverage))
	return bet.Mul(move.Div(entry)).Mul(lev).Round(PnLScale)
}

// ContestPnL is the contest-round flavor: leverage is pinned to the
// default and no wallet bookkeeping happens here.
func ContestPnL(position domain.Position, bet, entry, exit decimal.Decimal) decimal.Decimal {
	return PnL(position, bet, entry, exit, domain.DefaultLeverage)
}

// validateIntent rejects non-positive bets and prices before any mutation.
func validateIntent(intent domain.TradeIntent) error {
	if !intent.Position.Valid() {
		return fmt.Errorf("%w: position %q", domain.ErrInvalidInput, intent.Position)
	}
	if !intent.BetAmount.IsPositive() {
		return fmt.Errorf("%w: bet amount must be positive", domain.ErrInvalidInput)
	}
	if !intent.EntryPrice.IsPositive() || !intent.ExitPrice.IsPositive() {
		return fmt.Errorf("%w: prices must be positive", domain.ErrInvalidInput)
	}
	if intent.Leverage < 0 {
		return fmt.Errorf("%w: leverage must not be negative", domain.ErrInvalidInput)
	}
	return nil
}
