package contest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tradequest/tradequest/internal/domain"
	"github.com/tradequest/tradequest/internal/logger"
	"github.com/tradequest/tradequest/internal/store"
)

// Join adds a user to an existing contest. Re-joining is a no-op that
// returns the existing participant; concurrent duplicate joins are
// settled by the store's create-if-absent primitive, so exactly one
// participant record ever exists per (contest, user).
func (s *service) Join(ctx context.Context, contestID, userID, username string) (*domain.ContestParticipant, error) {
	log := logger.FromContext(ctx)

	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}

	contest, err := s.loadContest(ctx, contestID)
	if err != nil {
		return nil, err
	}

	if p, err := s.getParticipant(ctx, contestID, userID); err == nil {
		// Idempotent re-join.
		return p, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	participant := newParticipant(contest.ContestID, userID, username, s.now())
	err = s.createParticipant(ctx, &participant)
	if errors.Is(err, domain.ErrAlreadyJoined) {
		// Lost the create race to a concurrent duplicate join; the
		// winner's record is the participant.
		return s.mustGetParticipant(ctx, contestID, userID)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Participant joined contest", "contest_id", contestID, "user_id", userID)
	return &participant, nil
}

func (s *service) createParticipant(ctx context.Context, p *domain.ContestParticipant) error {
	value, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode participant: %w", err)
	}

	err = s.store.Create(ctx, bucketParticipants, participantKey(p.ContestID, p.UserID), value)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.ErrAlreadyJoined
	}
	if err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

// getParticipant fetches one participant record with its store version.
func (s *service) getParticipant(ctx context.Context, contestID, userID string) (*domain.ContestParticipant, error) {
	rec, err := s.store.Get(ctx, bucketParticipants, participantKey(contestID, userID))
	if err != nil {
		return nil, err
	}

	var p domain.ContestParticipant
	if err := json.Unmarshal(rec.Value, &p); err != nil {
		return nil, fmt.Errorf("failed to decode participant: %w", err)
	}
	return &p, nil
}

// mustGetParticipant is getParticipant with NotFound promoted to a
// domain error; used where the record is known to exist.
func (s *service) mustGetParticipant(ctx context.Context, contestID, userID string) (*domain.ContestParticipant, error) {
	p, err := s.getParticipant(ctx, contestID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: participant %s", domain.ErrNotFound, userID)
		}
		return nil, err
	}
	return p, nil
}
