package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParticipantPhase is the per-participant round state machine.
// betting -> result, looping back to betting until the participant
// finishes, then terminal. Bet submission and settlement happen in one
// synchronous call, so there is no observable simulating phase.
type ParticipantPhase string

const (
	PhaseBetting  ParticipantPhase = "betting"
	PhaseResult   ParticipantPhase = "result"
	PhaseTerminal ParticipantPhase = "terminal"
)

// MaxSellsPerContest caps SELL positions per participant.
const MaxSellsPerContest = 2

// Contest is the shared aggregate a group of users races over.
// Participants are stored per-key alongside the meta record so two
// different users never contend on the same write.
type Contest struct {
	ContestID       string          `json:"contest_id"`
	HostID          string          `json:"host_id"`
	Title           string          `json:"title"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
	MaxRounds       int             `json:"max_rounds"`
	CreatedAt       time.Time       `json:"created_at"`
	// Populated on read paths only; never part of the meta record.
	Participants []ContestParticipant `json:"participants,omitempty"`
}

// ContestParticipant is a user's per-contest state, distinct from their
// global profile. Only profit, roundsPlayed, sellsUsed and phase mutate.
type ContestParticipant struct {
	ContestID    string           `json:"contest_id"`
	UserID       string           `json:"user_id"`
	Username     string           `json:"username"`
	Profit       decimal.Decimal  `json:"profit"`
	RoundsPlayed int              `json:"rounds_played"`
	SellsUsed    int              `json:"sells_used"`
	Phase        ParticipantPhase `json:"phase"`
	JoinedAt     time.Time        `json:"joined_at"`
}

// Finished reports whether the participant has no rounds left to play.
func (p *ContestParticipant) Finished(maxRounds int) bool {
	return p.RoundsPlayed >= maxRounds || p.SellsUsed >= MaxSellsPerContest
}

// EffectiveBalance is the stake the participant can still bet against.
func (p *ContestParticipant) EffectiveBalance(startingBalance decimal.Decimal) decimal.Decimal {
	return startingBalance.Add(p.Profit)
}

// Standing is one leaderboard row, derived on demand.
type Standing struct {
	Rank         int             `json:"rank"`
	UserID       string          `json:"user_id"`
	Username     string          `json:"username"`
	Profit       decimal.Decimal `json:"profit"`
	RoundsPlayed int             `json:"rounds_played"`
	Finished     bool            `json:"finished"`
}
