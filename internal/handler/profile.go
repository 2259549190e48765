package handler

import (
	"net/http"

	"github.com/tradequest/tradequest/internal/logger"
	"github.com/tradequest/tradequest/internal/profile"
)

// ProfileHandler serves profile registration and lookup.
type ProfileHandler struct {
	service profile.Service
}

func NewProfileHandler(service profile.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// RegisterRequest represents the body of the register request
type RegisterRequest struct {
	UserID   string `json:"user_id" validate:"required,max=64"`
	Username string `json:"username" validate:"required,max=32"`
}

// HandleRegister creates the profile on first contact and is otherwise a
// harmless no-op returning the existing profile.
func (h *ProfileHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Register profile"); err != nil {
		return
	}

	p, err := h.service.GetOrCreate(r.Context(), req.UserID, req.Username)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to register profile", "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// HandleGetProfile returns the profile for the user_id query parameter.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetQueryParam(r, w, "user_id")
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to get profile", "error", err, "user_id", userID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, p)
}
