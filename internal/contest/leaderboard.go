package contest

import (
	"context"
	"sort"

	"github.com/tradequest/tradequest/internal/domain"
)

// Leaderboard derives the current standings: profit descending, ties
// broken by earliest join. Recomputed on every call, never stored.
func (s *service) Leaderboard(ctx context.Context, contestID string) ([]domain.Standing, error) {
	contest, err := s.loadContest(ctx, contestID)
	if err != nil {
		return nil, err
	}

	participants, err := s.loadParticipants(ctx, contestID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(participants, func(i, j int) bool {
		if !participants[i].Profit.Equal(participants[j].Profit) {
			return participants[i].Profit.GreaterThan(participants[j].Profit)
		}
		return participants[i].JoinedAt.Before(participants[j].JoinedAt)
	})

	standings := make([]domain.Standing, len(participants))
	for i, p := range participants {
		standings[i] = domain.Standing{
			Rank:         i + 1,
			UserID:       p.UserID,
			Username:     p.Username,
			Profit:       p.Profit,
			RoundsPlayed: p.RoundsPlayed,
			Finished:     p.Finished(contest.MaxRounds),
		}
	}
	return standings, nil
}
