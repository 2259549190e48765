package contest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tradequest/tradequest/internal/domain"
	"github.com/tradequest/tradequest/internal/event"
	"github.com/tradequest/tradequest/internal/ledger"
	"github.com/tradequest/tradequest/internal/logger"
	"github.com/tradequest/tradequest/internal/metrics"
	"github.com/tradequest/tradequest/internal/store"
)

// ResolveRound settles one bet for one participant. The whole
// read-validate-compute-commit cycle runs inside a bounded optimistic
// retry loop keyed to the participant record: validation always sees the
// freshly read state, and either the entire round commits or nothing is
// persisted. Conflicts only arise from the same user's duplicate
// submissions; other participants live on different keys.
func (s *service) ResolveRound(ctx context.Context, input ResolveInput) (*RoundResult, error) {
	log := logger.FromContext(ctx)

	if err := validateResolveInput(input); err != nil {
		return nil, err
	}

	contest, err := s.loadContest(ctx, input.ContestID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		rec, err := s.store.Get(ctx, bucketParticipants, participantKey(input.ContestID, input.UserID))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: participant %s", domain.ErrNotFound, input.UserID)
			}
			return nil, fmt.Errorf("failed to read participant: %w", err)
		}

		var p domain.ContestParticipant
		if err := json.Unmarshal(rec.Value, &p); err != nil {
			return nil, fmt.Errorf("failed to decode participant: %w", err)
		}

		if err := validateRound(contest, &p, input); err != nil {
			return nil, err
		}

		pnl := ledger.ContestPnL(input.Position, input.BetAmount, input.EntryPrice, input.ExitPrice)

		p.Profit = p.Profit.Add(pnl)
		p.RoundsPlayed++
		if input.Position == domain.PositionSell {
			p.SellsUsed++
		}

		finished := p.Finished(contest.MaxRounds)
		if finished {
			p.Phase = domain.PhaseTerminal
		} else {
			p.Phase = domain.PhaseResult
		}

		value, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to encode participant: %w", err)
		}

		err = s.store.CompareAndSwap(ctx, bucketParticipants, rec.Key, value, rec.Version)
		if errors.Is(err, store.ErrVersionConflict) {
			metrics.CASRetries.WithLabelValues("resolve_round").Inc()
			log.Debug("Round commit conflicted, retrying",
				"contest_id", input.ContestID, "user_id", input.UserID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to commit round: %w", err)
		}

		metrics.ContestRoundsResolved.Inc()
		log.Info("Round resolved",
			"contest_id", input.ContestID,
			"user_id", input.UserID,
			"round", p.RoundsPlayed,
			"pnl", pnl,
			"finished", finished)

		if finished && s.bus != nil {
			_ = s.bus.Publish(ctx, event.NewContestFinishedEvent(input.ContestID, input.UserID, p.Profit, p.RoundsPlayed))
		}

		return &RoundResult{Participant: p, PnL: pnl, IsFinished: finished}, nil
	}

	metrics.CASConflicts.WithLabelValues("resolve_round").Inc()
	return nil, fmt.Errorf("%w: round for %s in %s", domain.ErrConflict, input.UserID, input.ContestID)
}

// NextRound is the caller-initiated result -> betting transition.
func (s *service) NextRound(ctx context.Context, contestID, userID string) (*domain.ContestParticipant, error) {
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		rec, err := s.store.Get(ctx, bucketParticipants, participantKey(contestID, userID))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: participant %s", domain.ErrNotFound, userID)
			}
			return nil, fmt.Errorf("failed to read participant: %w", err)
		}

		var p domain.ContestParticipant
		if err := json.Unmarshal(rec.Value, &p); err != nil {
			return nil, fmt.Errorf("failed to decode participant: %w", err)
		}

		if p.Phase == domain.PhaseTerminal {
			return nil, fmt.Errorf("%w: participant finished", domain.ErrRoundsExhausted)
		}
		if p.Phase == domain.PhaseBetting {
			// Already open; nothing to advance.
			return &p, nil
		}

		p.Phase = domain.PhaseBetting

		value, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to encode participant: %w", err)
		}

		err = s.store.CompareAndSwap(ctx, bucketParticipants, rec.Key, value, rec.Version)
		if errors.Is(err, store.ErrVersionConflict) {
			metrics.CASRetries.WithLabelValues("next_round").Inc()
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to commit phase: %w", err)
		}
		return &p, nil
	}

	metrics.CASConflicts.WithLabelValues("next_round").Inc()
	return nil, fmt.Errorf("%w: next round for %s in %s", domain.ErrConflict, userID, contestID)
}

func validateResolveInput(input ResolveInput) error {
	if input.ContestID == "" || input.UserID == "" {
		return fmt.Errorf("%w: contest and user ids required", domain.ErrInvalidInput)
	}
	if !input.Position.Valid() {
		return fmt.Errorf("%w: position %q", domain.ErrInvalidInput, input.Position)
	}
	if !input.BetAmount.IsPositive() {
		return fmt.Errorf("%w: bet amount must be positive", domain.ErrInvalidInput)
	}
	if !input.EntryPrice.IsPositive() || !input.ExitPrice.IsPositive() {
		return fmt.Errorf("%w: prices must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// validateRound checks the game rules against freshly read state.
func validateRound(contest *domain.Contest, p *domain.ContestParticipant, input ResolveInput) error {
	// The sell cap is checked first: a participant whose sells are spent
	// is also terminal, and a rejected third SELL must name the cap, not
	// the round budget.
	if input.Position == domain.PositionSell && p.SellsUsed >= domain.MaxSellsPerContest {
		return fmt.Errorf("%w: %d of %d sells used", domain.ErrSellCapExceeded, p.SellsUsed, domain.MaxSellsPerContest)
	}
	if p.Phase == domain.PhaseTerminal || p.RoundsPlayed >= contest.MaxRounds {
		return fmt.Errorf("%w: %d of %d rounds played", domain.ErrRoundsExhausted, p.RoundsPlayed, contest.MaxRounds)
	}
	if p.Phase == domain.PhaseResult {
		return fmt.Errorf("%w: advance to the next round first", domain.ErrRoundNotOpen)
	}
	if input.BetAmount.GreaterThan(p.EffectiveBalance(contest.StartingBalance)) {
		return fmt.Errorf("%w: bet %s exceeds balance %s",
			domain.ErrInsufficientFunds, input.BetAmount, p.EffectiveBalance(contest.StartingBalance))
	}
	return nil
}
