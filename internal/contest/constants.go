package contest

// Store buckets.
const (
	bucketContests     = "contests"
	bucketParticipants = "participants"
)

// Contest codes are short enough to read out loud; the alphabet drops
// 0/O/1/I to survive being typed from a phone screen.
const (
	codeLength   = 6
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// maxCodeAttempts bounds collision retries during creation.
	maxCodeAttempts = 5

	// maxCommitAttempts bounds the optimistic retry loop on a participant
	// key. Contention is scoped to one user's duplicate submissions.
	maxCommitAttempts = 5
)

// Contest size limits.
const (
	MinRounds = 1
	MaxRounds = 50

	MaxTitleLength = 64
)
