package domain

import (
	"fmt"
	"strings"
	"time"
)

type VoteChoice string

const (
	VoteYes VoteChoice = "yes"
	VoteNo  VoteChoice = "no"
)

func (v VoteChoice) Valid() bool {
	return v == VoteYes || v == VoteNo
}

type VoteRecord struct {
	ProposalID     string     `json:"proposalId"`
	CredentialHash string     `json:"credentialHash"`
	Vote           VoteChoice `json:"vote"`
	Timestamp      time.Time  `json:"timestamp"`
	ContentID      string     `json:"contentId,omitempty"`
}

func (v *VoteRecord) Validate() error {
	if strings.TrimSpace(v.ProposalID) == "" {
		return fmt.Errorf("%w: vote proposalId is empty", ErrMalformedRecord)
	}
	if strings.TrimSpace(v.CredentialHash) == "" {
		return fmt.Errorf("%w: vote credentialHash is empty", ErrMalformedRecord)
	}
	if !v.Vote.Valid() {
		return fmt.Errorf("%w: unknown vote %q", ErrMalformedRecord, v.Vote)
	}
	if v.Timestamp.IsZero() {
		return fmt.Errorf("%w: vote timestamp is missing", ErrMalformedRecord)
	}
	return nil
}

// Tally is the yes/no projection of a proposal's effective votes.
type Tally struct {
	ProposalID string `json:"proposalId"`
	Yes        int64  `json:"yes"`
	No         int64  `json:"no"`
}

func (t Tally) Total() int64 {
	return t.Yes + t.No
}

func (t Tally) YesPercentage() float64 {
	if t.Total() == 0 {
		return 0
	}
	return float64(t.Yes) / float64(t.Total()) * 100
}

func (t Tally) NoPercentage() float64 {
	if t.Total() == 0 {
		return 0
	}
	return float64(t.No) / float64(t.Total()) * 100
}
