package services

import "errors"

// Expected, recoverable conditions surfaced to the client as user-facing
// messages. Anything else bubbling out of a service is an internal error.
var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyVoted        = errors.New("already voted on this poll")
	ErrPollClosed          = errors.New("poll is closed")
	ErrInvalidChoice       = errors.New("choice must be YES or NO")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrRecoveryUnavailable = errors.New("streak recovery unavailable")
)
