package domain

import "errors"

// Every disallowed transition is rejected with one of these sentinels;
// callers match with errors.Is. No operation leaves partial state
// behind after returning an error.
var (
	ErrInvalidDeadline       = errors.New("deadline must be after the current time")
	ErrInvalidTicketPrice    = errors.New("payment must be a positive multiple of the ticket price")
	ErrRoundNotOpen          = errors.New("round is not open")
	ErrDeadlinePassed        = errors.New("round deadline has passed")
	ErrRoundAlreadyCompleted = errors.New("round is already completed")
	ErrDeadlineNotReached    = errors.New("round deadline has not been reached")
	ErrNotEnoughParticipants = errors.New("not enough participants to draw")
	ErrRefundNotAvailable    = errors.New("refund is not available for this round")
	ErrNotAParticipant       = errors.New("claimant holds no tickets in this round")
	ErrRoundNotFound         = errors.New("round not found")
	ErrUnauthorized          = errors.New("admin capability required")
)
