package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/personhood/internal/core/domain"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

// EligibilityService answers whether an address may vote and casts votes on
// its behalf. Its answers are advisory: eligibility can change between
// CanVote and CastVote, so the ledger validates again.
type EligibilityService struct {
	credentials ports.CredentialRegistry
	votes       ports.VoteLedger
	catalog     ports.ProposalCatalog
	opts        options
}

func NewEligibilityService(credentials ports.CredentialRegistry, votes ports.VoteLedger, catalog ports.ProposalCatalog, opts ...Option) *EligibilityService {
	return &EligibilityService{
		credentials: credentials,
		votes:       votes,
		catalog:     catalog,
		opts:        newOptions(opts),
	}
}

func ineligible(reason domain.IneligibilityReason) domain.Eligibility {
	return domain.Eligibility{Eligible: false, Reason: reason}
}

func (s *EligibilityService) CanVote(ctx context.Context, address, proposalID string) (domain.Eligibility, error) {
	credential, err := s.credentials.Resolve(ctx, address)
	if err != nil {
		return domain.Eligibility{}, err
	}
	if credential == nil {
		return ineligible(domain.ReasonNoCredential), nil
	}
	if !credential.IsActive() {
		return ineligible(domain.ReasonRevoked), nil
	}

	if s.catalog != nil {
		proposal, err := s.catalog.Get(ctx, proposalID)
		if errors.Is(err, domain.ErrProposalNotFound) {
			return ineligible(domain.ReasonProposalNotFound), nil
		}
		if err != nil {
			return domain.Eligibility{}, err
		}
		if !proposal.Open(s.opts.clock.Now()) {
			return ineligible(domain.ReasonProposalClosed), nil
		}
	}

	prior, err := s.votes.EffectiveVote(ctx, proposalID, credential.ContentID)
	if err != nil {
		return domain.Eligibility{}, err
	}
	if prior != nil {
		return ineligible(domain.ReasonAlreadyVoted), nil
	}

	return domain.Eligibility{Eligible: true}, nil
}

// CastVote resolves the address's current credential and submits the vote
// with it.
func (s *EligibilityService) CastVote(ctx context.Context, input ports.VoteInput) (string, error) {
	credential, err := s.credentials.Resolve(ctx, input.Address)
	if err != nil {
		return "", err
	}
	if credential == nil {
		return "", fmt.Errorf("%w: no credential for %s", domain.ErrInvalidCredential, input.Address)
	}
	if !credential.IsActive() {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidCredential, domain.ErrCredentialRevoked)
	}

	return s.votes.Submit(ctx, input.ProposalID, input.Vote, credential)
}

// MyVote returns the effective vote an address cast on proposalID with any of
// its credentials, including ones since revoked.
func (s *EligibilityService) MyVote(ctx context.Context, address, proposalID string) (*domain.VoteRecord, error) {
	history, err := s.credentials.History(ctx, address)
	if err != nil {
		return nil, err
	}

	var mine *domain.VoteRecord
	for _, c := range history {
		if c.Status != domain.CredentialStatusActive {
			continue
		}
		v, err := s.votes.EffectiveVote(ctx, proposalID, c.ContentID)
		if err != nil {
			return nil, err
		}
		if v != nil && (mine == nil || earlierVote(*v, *mine)) {
			mine = v
		}
	}
	return mine, nil
}
