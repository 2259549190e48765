// Package profile orchestrates single-player settlement: it owns the
// read-settle-commit loop around the pure ledger and the append-only
// trade log.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradequest/tradequest/internal/domain"
	"github.com/tradequest/tradequest/internal/event"
	"github.com/tradequest/tradequest/internal/ledger"
	"github.com/tradequest/tradequest/internal/logger"
	"github.com/tradequest/tradequest/internal/metrics"
	"github.com/tradequest/tradequest/internal/store"
)

const (
	bucketProfiles = "profiles"
	bucketTrades   = "trades"

	// maxCommitAttempts bounds the optimistic retry loop. A profile is
	// only ever contended by the same user double-submitting.
	maxCommitAttempts = 5
)

// StartingBalance is the paper balance a fresh profile begins with.
var StartingBalance = decimal.NewFromInt(10_000)

// Service defines the interface for profile operations
type Service interface {
	GetOrCreate(ctx context.Context, userID, username string) (*domain.UserProfile, error)
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
	SettleTrade(ctx context.Context, userID string, intent domain.TradeIntent) (*SettleOutcome, error)
	TradeHistory(ctx context.Context, userID string) ([]domain.TradeRecord, error)
}

// SettleOutcome is what a settlement returns to the caller.
type SettleOutcome struct {
	Profile         domain.UserProfile       `json:"profile"`
	Record          domain.TradeRecord       `json:"record"`
	NewAchievements []domain.AchievementInfo `json:"new_achievements,omitempty"`
}

type service struct {
	store store.Store
	bus   event.Bus
	now   func() time.Time
}

// NewService creates a new profile service
func NewService(st store.Store, bus event.Bus) Service {
	return &service{store: st, bus: bus, now: time.Now}
}

// GetOrCreate returns the profile for userID, creating a fresh one on
// first contact. Safe under concurrent first contacts: exactly one
// creator wins and everyone reads the winner's record.
func (s *service) GetOrCreate(ctx context.Context, userID, username string) (*domain.UserProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}

	profile, err := s.load(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}

	now := s.now()
	rank := ledger.RankFor(decimal.Zero)
	fresh := domain.UserProfile{
		UserID:    userID,
		Username:  username,
		Balance:   StartingBalance,
		Level:     1,
		RankTier:  rank.Tier,
		RankName:  rank.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	value, err := json.Marshal(fresh)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}

	err = s.store.Create(ctx, bucketProfiles, userID, value)
	if err == nil {
		logger.FromContext(ctx).Info("Profile created", "user_id", userID)
		return &fresh, nil
	}
	if errors.Is(err, store.ErrAlreadyExists) {
		// Lost the create race; the existing record wins.
		return s.load(ctx, userID)
	}
	return nil, fmt.Errorf("failed to create profile: %w", err)
}

// Get returns the profile or domain.ErrProfileNotFound.
func (s *service) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return s.load(ctx, userID)
}

// SettleTrade converts a trade intent into a committed profile mutation
// plus an immutable trade record. The read-settle-commit cycle retries on
// version conflicts; validation errors surface before anything persists.
func (s *service) SettleTrade(ctx context.Context, userID string, intent domain.TradeIntent) (*SettleOutcome, error) {
	log := logger.FromContext(ctx)

	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		rec, err := s.store.Get(ctx, bucketProfiles, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, userID)
			}
			return nil, fmt.Errorf("failed to read profile: %w", err)
		}

		var profile domain.UserProfile
		if err := json.Unmarshal(rec.Value, &profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}

		result, err := ledger.Settle(profile, intent, s.now())
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(result.Profile)
		if err != nil {
			return nil, fmt.Errorf("failed to encode profile: %w", err)
		}

		err = s.store.CompareAndSwap(ctx, bucketProfiles, userID, value, rec.Version)
		if errors.Is(err, store.ErrVersionConflict) {
			metrics.CASRetries.WithLabelValues("settle_trade").Inc()
			log.Debug("Settlement commit conflicted, retrying", "user_id", userID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to commit profile: %w", err)
		}

		s.appendTradeRecord(ctx, result.Record)
		s.publishSettlement(ctx, &result)
		s.recordMetrics(&result)

		return &SettleOutcome{
			Profile:         result.Profile,
			Record:          result.Record,
			NewAchievements: result.NewAchievements,
		}, nil
	}

	metrics.CASConflicts.WithLabelValues("settle_trade").Inc()
	return nil, fmt.Errorf("%w: settlement for %s", domain.ErrConflict, userID)
}

// TradeHistory returns the user's settled trades, oldest first.
func (s *service) TradeHistory(ctx context.Context, userID string) ([]domain.TradeRecord, error) {
	if _, err := s.load(ctx, userID); err != nil {
		return nil, err
	}

	recs, err := s.store.List(ctx, bucketTrades, userID+"/")
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}

	trades := make([]domain.TradeRecord, 0, len(recs))
	for _, rec := range recs {
		var trade domain.TradeRecord
		if err := json.Unmarshal(rec.Value, &trade); err != nil {
			return nil, fmt.Errorf("failed to decode trade %s: %w", rec.Key, err)
		}
		trades = append(trades, trade)
	}

	sortTrades(trades)
	return trades, nil
}

func (s *service) load(ctx context.Context, userID string) (*domain.UserProfile, error) {
	rec, err := s.store.Get(ctx, bucketProfiles, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, userID)
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(rec.Value, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}

// appendTradeRecord writes the immutable log entry. The profile commit is
// authoritative; a failed log write is logged and not rolled back.
func (s *service) appendTradeRecord(ctx context.Context, record domain.TradeRecord) {
	value, err := json.Marshal(record)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to encode trade record", "error", err)
		return
	}
	key := record.UserID + "/" + record.Timestamp.UTC().Format(time.RFC3339Nano) + "/" + record.ID
	if err := s.store.Create(ctx, bucketTrades, key, value); err != nil {
		logger.FromContext(ctx).Error("Failed to append trade record", "error", err, "trade_id", record.ID)
	}
}

func (s *service) publishSettlement(ctx context.Context, result *ledger.SettleResult) {
	if s.bus == nil {
		return
	}

	_ = s.bus.Publish(ctx, event.NewTradeSettledEvent(
		result.Record.UserID,
		string(result.Record.Position),
		result.Record.PnL,
		result.Profile.XP,
	))
	for _, a := range result.NewAchievements {
		_ = s.bus.Publish(ctx, event.NewAchievementUnlockedEvent(
			result.Record.UserID, a.ID, a.Name, string(a.Rarity), a.XPReward,
		))
	}
}

func (s *service) recordMetrics(result *ledger.SettleResult) {
	outcome := "flat"
	if result.Record.PnL.IsPositive() {
		outcome = "win"
	} else if result.Record.PnL.IsNegative() {
		outcome = "loss"
	}
	metrics.TradesSettled.WithLabelValues(string(result.Record.Position), outcome).Inc()
	for _, a := range result.NewAchievements {
		metrics.AchievementsUnlocked.WithLabelValues(a.ID).Inc()
	}
}

func sortTrades(trades []domain.TradeRecord) {
	// Keys embed an RFC3339Nano timestamp so List already returns them in
	// time order; the sort is a guard for equal timestamps.
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp.Before(trades[j].Timestamp)
	})
}
