package domain

import "time"

type Proposal struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description"`
	Deadline    time.Time `json:"deadline" yaml:"deadline"`
}

// Open reports whether votes are still accepted at now. A zero deadline never closes.
func (p Proposal) Open(now time.Time) bool {
	return p.Deadline.IsZero() || !now.After(p.Deadline)
}

type ProposalSummary struct {
	Proposal
	VoteCount Tally `json:"voteCount"`
}

type IneligibilityReason string

const (
	ReasonNoCredential     IneligibilityReason = "no_credential"
	ReasonRevoked          IneligibilityReason = "revoked"
	ReasonAlreadyVoted     IneligibilityReason = "already_voted"
	ReasonProposalNotFound IneligibilityReason = "proposal_not_found"
	ReasonProposalClosed   IneligibilityReason = "proposal_closed"
)

type Eligibility struct {
	Eligible bool                `json:"eligible"`
	Reason   IneligibilityReason `json:"reason,omitempty"`
}
