package handler

// Generic HTTP error messages for client responses. These intentionally do
// not expose internal error details; handlers and tests reference the same
// constants to stay consistent.
const (
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	ErrMsgMissingQueryParam = "Missing %s query parameter"

	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgUnknownError       = "Unknown error"

	// Profile and trade messages
	ErrMsgProfileNotFound  = "Profile not found. Register first."
	ErrMsgInvalidTrade     = "Invalid trade. Please check your inputs."
	ErrMsgSettlementBusy   = "Settlement is busy. Please retry."
	ErrMsgInvalidLimit     = "Invalid limit parameter"
	ErrMsgUsernameRequired = "Username is required"

	// Contest messages
	ErrMsgContestNotFound    = "Contest not found. Check the code."
	ErrMsgParticipantMissing = "You have not joined this contest"
	ErrMsgNotEnoughBalance   = "Bet exceeds your remaining balance"
	ErrMsgSellCapReached     = "No sell positions left this contest"
	ErrMsgNoRoundsLeft       = "No rounds left to play"
	ErrMsgRoundNotOpen       = "Advance to the next round first"

	// Market messages
	ErrMsgMarketUnavailable = "Market data is temporarily unavailable"
)
