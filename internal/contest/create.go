package contest

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tradequest/tradequest/internal/domain"
	"github.com/tradequest/tradequest/internal/event"
	"github.com/tradequest/tradequest/internal/logger"
	"github.com/tradequest/tradequest/internal/metrics"
	"github.com/tradequest/tradequest/internal/store"
)

// Create opens a new contest with the host as its first participant.
// The human-entry code is regenerated on store collision.
func (s *service) Create(ctx context.Context, hostID, username, title string, startingBalance decimal.Decimal, maxRounds int) (*domain.Contest, error) {
	log := logger.FromContext(ctx)

	if hostID == "" {
		return nil, fmt.Errorf("%w: host id required", domain.ErrInvalidInput)
	}
	title = strings.TrimSpace(title)
	if title == "" || len(title) > MaxTitleLength {
		return nil, fmt.Errorf("%w: title must be 1-%d characters", domain.ErrInvalidInput, MaxTitleLength)
	}
	if !startingBalance.IsPositive() {
		return nil, fmt.Errorf("%w: starting balance must be positive", domain.ErrInvalidInput)
	}
	if maxRounds < MinRounds || maxRounds > MaxRounds {
		return nil, fmt.Errorf("%w: rounds must be %d-%d", domain.ErrInvalidInput, MinRounds, MaxRounds)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate contest code: %w", err)
		}

		contest := domain.Contest{
			ContestID:       code,
			HostID:          hostID,
			Title:           title,
			StartingBalance: startingBalance,
			MaxRounds:       maxRounds,
			CreatedAt:       s.now(),
		}

		value, err := json.Marshal(contest)
		if err != nil {
			return nil, fmt.Errorf("failed to encode contest: %w", err)
		}

		err = s.store.Create(ctx, bucketContests, code, value)
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Debug("Contest code collision, regenerating", "code", code)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create contest: %w", err)
		}

		host := newParticipant(code, hostID, username, contest.CreatedAt)
		if err := s.createParticipant(ctx, &host); err != nil && !errors.Is(err, domain.ErrAlreadyJoined) {
			return nil, err
		}
		contest.Participants = []domain.ContestParticipant{host}

		metrics.ContestsCreated.Inc()
		log.Info("Contest created", "contest_id", code, "host_id", hostID, "max_rounds", maxRounds)
		if s.bus != nil {
			_ = s.bus.Publish(ctx, event.NewContestCreatedEvent(code, hostID, title, maxRounds))
		}

		return &contest, nil
	}

	return nil, fmt.Errorf("%w: could not allocate a contest code", domain.ErrConflict)
}

// generateCode draws a fixed-length code from the unambiguous alphabet.
func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
