package services

import (
	"context"
	"strings"

	"github.com/vncsmyrnk/personhood/internal/core/domain"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

type proposalService struct {
	catalog ports.ProposalCatalog
	votes   ports.VoteLedger
	summary ports.SummaryService
}

func NewProposalService(catalog ports.ProposalCatalog, votes ports.VoteLedger) ports.ProposalService {
	return &proposalService{
		catalog: catalog,
		votes:   votes,
		summary: NewSummaryService(catalog, votes),
	}
}

func (s *proposalService) ListProposals(ctx context.Context) ([]domain.ProposalSummary, error) {
	return s.summary.SummarizeAllVotes(ctx)
}

func (s *proposalService) GetProposal(ctx context.Context, id string) (*domain.ProposalSummary, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrProposalNotFound
	}

	proposal, err := s.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	tally, err := s.votes.Tally(ctx, proposal.ID)
	if err != nil {
		return nil, err
	}

	return &domain.ProposalSummary{Proposal: *proposal, VoteCount: tally}, nil
}
