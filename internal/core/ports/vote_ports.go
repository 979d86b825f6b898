package ports

import (
	"context"

	"github.com/vncsmyrnk/personhood/internal/core/domain"
)

type VoteLedger interface {
	Submit(ctx context.Context, proposalID string, vote domain.VoteChoice, credential *domain.Credential) (string, error)
	Tally(ctx context.Context, proposalID string) (domain.Tally, error)
	EffectiveVote(ctx context.Context, proposalID, credentialHash string) (*domain.VoteRecord, error)
}

type VoteInput struct {
	Address    string
	ProposalID string
	Vote       domain.VoteChoice
}

type EligibilityGuard interface {
	CanVote(ctx context.Context, address, proposalID string) (domain.Eligibility, error)
	CastVote(ctx context.Context, input VoteInput) (string, error)
	MyVote(ctx context.Context, address, proposalID string) (*domain.VoteRecord, error)
}
