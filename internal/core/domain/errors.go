package domain

import "errors"

var (
	ErrStoreUnavailable  = errors.New("content store unavailable")
	ErrMalformedRecord   = errors.New("malformed record")
	ErrNotFound          = errors.New("no active credential found")
	ErrAlreadyActive     = errors.New("credential is already active")
	ErrCredentialRevoked = errors.New("credential has been revoked")
	ErrInvalidCredential = errors.New("credential is missing or not active")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidVote       = errors.New("vote must be yes or no")
	ErrDuplicateVote     = errors.New("credential has already voted on this proposal")
	ErrAlreadyVoted      = errors.New("already voted")
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrProposalClosed    = errors.New("proposal deadline has passed")
)
