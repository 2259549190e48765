// Package contest owns the multiplayer contest lifecycle: creation,
// idempotent joins, per-round bet resolution under optimistic concurrency,
// and the derived leaderboard.
//
// The shared aggregate is split across store keys so contention stays
// per-participant: contest meta lives at contests/<id>, each participant
// at participants/<id>/<userID>. Two different users resolving rounds
// simultaneously never touch the same key.
package contest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradequest/tradequest/internal/domain"
	"github.com/tradequest/tradequest/internal/event"
	"github.com/tradequest/tradequest/internal/store"
)

// Service defines the interface for contest operations
type Service interface {
	Create(ctx context.Context, hostID, username, title string, startingBalance decimal.Decimal, maxRounds int) (*domain.Contest, error)
	Join(ctx context.Context, contestID, userID, username string) (*domain.ContestParticipant, error)
	Get(ctx context.Context, contestID string) (*domain.Contest, error)
	ResolveRound(ctx context.Context, input ResolveInput) (*RoundResult, error)
	NextRound(ctx context.Context, contestID, userID string) (*domain.ContestParticipant, error)
	Leaderboard(ctx context.Context, contestID string) ([]domain.Standing, error)
}

// ResolveInput carries one round's bet for one participant.
type ResolveInput struct {
	ContestID  string
	UserID     string
	Position   domain.Position
	BetAmount  decimal.Decimal
	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal
}

// RoundResult is the committed outcome of one resolved round.
type RoundResult struct {
	Participant domain.ContestParticipant `json:"participant"`
	PnL         decimal.Decimal           `json:"pnl"`
	IsFinished  bool                      `json:"is_finished"`
}

type service struct {
	store store.Store
	bus   event.Bus
	now   func() time.Time
}

// NewService creates a new contest service
func NewService(st store.Store, bus event.Bus) Service {
	return &service{store: st, bus: bus, now: time.Now}
}

func participantKey(contestID, userID string) string {
	return contestID + "/" + userID
}

// loadContest fetches the contest meta record.
func (s *service) loadContest(ctx context.Context, contestID string) (*domain.Contest, error) {
	rec, err := s.store.Get(ctx, bucketContests, contestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrContestNotFound, contestID)
		}
		return nil, fmt.Errorf("failed to read contest: %w", err)
	}

	var contest domain.Contest
	if err := json.Unmarshal(rec.Value, &contest); err != nil {
		return nil, fmt.Errorf("failed to decode contest: %w", err)
	}
	return &contest, nil
}

// loadParticipants fetches every participant record for the contest.
func (s *service) loadParticipants(ctx context.Context, contestID string) ([]domain.ContestParticipant, error) {
	recs, err := s.store.List(ctx, bucketParticipants, contestID+"/")
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	participants := make([]domain.ContestParticipant, 0, len(recs))
	for _, rec := range recs {
		var p domain.ContestParticipant
		if err := json.Unmarshal(rec.Value, &p); err != nil {
			return nil, fmt.Errorf("failed to decode participant %s: %w", rec.Key, err)
		}
		participants = append(participants, p)
	}
	return participants, nil
}

// Get returns the contest meta with its participants attached.
func (s *service) Get(ctx context.Context, contestID string) (*domain.Contest, error) {
	contest, err := s.loadContest(ctx, contestID)
	if err != nil {
		return nil, err
	}

	participants, err := s.loadParticipants(ctx, contestID)
	if err != nil {
		return nil, err
	}
	contest.Participants = participants
	return contest, nil
}

func newParticipant(contestID, userID, username string, joinedAt time.Time) domain.ContestParticipant {
	return domain.ContestParticipant{
		ContestID: contestID,
		UserID:    userID,
		Username:  username,
		Profit:    decimal.Zero,
		Phase:     domain.PhaseBetting,
		JoinedAt:  joinedAt,
	}
}
