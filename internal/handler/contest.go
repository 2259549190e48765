package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tradequest/tradequest/internal/contest"
	"github.com/tradequest/tradequest/internal/domain"
	"github.com/tradequest/tradequest/internal/logger"
)

// ContestHandler serves the multiplayer contest lifecycle.
type ContestHandler struct {
	service contest.Service
}

func NewContestHandler(service contest.Service) *ContestHandler {
	return &ContestHandler{service: service}
}

// CreateContestRequest represents the body of the create request
type CreateContestRequest struct {
	HostID          string          `json:"host_id" validate:"required,max=64"`
	Username        string          `json:"username" validate:"required,max=32"`
	Title           string          `json:"title" validate:"required,max=64"`
	StartingBalance decimal.Decimal `json:"starting_balance" validate:"required"`
	MaxRounds       int             `json:"max_rounds" validate:"required,min=1,max=50"`
}

func (h *ContestHandler) HandleCreateContest(w http.ResponseWriter, r *http.Request) {
	var req CreateContestRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Create contest"); err != nil {
		return
	}

	c, err := h.service.Create(r.Context(), req.HostID, req.Username, req.Title, req.StartingBalance, req.MaxRounds)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to create contest", "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

// JoinContestRequest represents the body of the join request
type JoinContestRequest struct {
	ContestID string `json:"contest_id" validate:"required,max=16"`
	UserID    string `json:"user_id" validate:"required,max=64"`
	Username  string `json:"username" validate:"required,max=32"`
}

func (h *ContestHandler) HandleJoinContest(w http.ResponseWriter, r *http.Request) {
	var req JoinContestRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Join contest"); err != nil {
		return
	}

	p, err := h.service.Join(r.Context(), req.ContestID, req.UserID, req.Username)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to join contest", "error", err, "contest_id", req.ContestID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (h *ContestHandler) HandleGetContest(w http.ResponseWriter, r *http.Request) {
	contestID, ok := GetQueryParam(r, w, "contest_id")
	if !ok {
		return
	}

	c, err := h.service.Get(r.Context(), contestID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to get contest", "error", err, "contest_id", contestID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// ResolveRoundRequest represents the body of the resolve request
type ResolveRoundRequest struct {
	ContestID  string          `json:"contest_id" validate:"required,max=16"`
	UserID     string          `json:"user_id" validate:"required,max=64"`
	Position   string          `json:"position" validate:"required,position"`
	BetAmount  decimal.Decimal `json:"bet_amount" validate:"required"`
	EntryPrice decimal.Decimal `json:"entry_price" validate:"required"`
	ExitPrice  decimal.Decimal `json:"exit_price" validate:"required"`
}

func (h *ContestHandler) HandleResolveRound(w http.ResponseWriter, r *http.Request) {
	var req ResolveRoundRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Resolve round"); err != nil {
		return
	}

	result, err := h.service.ResolveRound(r.Context(), contest.ResolveInput{
		ContestID:  req.ContestID,
		UserID:     req.UserID,
		Position:   domain.Position(req.Position),
		BetAmount:  req.BetAmount,
		EntryPrice: req.EntryPrice,
		ExitPrice:  req.ExitPrice,
	})
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to resolve round",
			"error", err, "contest_id", req.ContestID, "user_id", req.UserID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// NextRoundRequest represents the body of the next-round request
type NextRoundRequest struct {
	ContestID string `json:"contest_id" validate:"required,max=16"`
	UserID    string `json:"user_id" validate:"required,max=64"`
}

func (h *ContestHandler) HandleNextRound(w http.ResponseWriter, r *http.Request) {
	var req NextRoundRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Next round"); err != nil {
		return
	}

	p, err := h.service.NextRound(r.Context(), req.ContestID, req.UserID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to advance round",
			"error", err, "contest_id", req.ContestID, "user_id", req.UserID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// LeaderboardResponse wraps the derived standings.
type LeaderboardResponse struct {
	ContestID string            `json:"contest_id"`
	Standings []domain.Standing `json:"standings"`
}

func (h *ContestHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	contestID, ok := GetQueryParam(r, w, "contest_id")
	if !ok {
		return
	}

	standings, err := h.service.Leaderboard(r.Context(), contestID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to get leaderboard", "error", err, "contest_id", contestID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, LeaderboardResponse{ContestID: contestID, Standings: standings})
}
