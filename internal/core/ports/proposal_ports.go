package ports

import (
	"context"

	"github.com/vncsmyrnk/personhood/internal/core/domain"
)

// ProposalCatalog is the read-only source of proposals, in display order.
type ProposalCatalog interface {
	List(ctx context.Context) ([]domain.Proposal, error)
	Get(ctx context.Context, id string) (*domain.Proposal, error)
}

type ProposalService interface {
	ListProposals(ctx context.Context) ([]domain.ProposalSummary, error)
	GetProposal(ctx context.Context, id string) (*domain.ProposalSummary, error)
}

type SummaryService interface {
	SummarizeAllVotes(ctx context.Context) ([]domain.ProposalSummary, error)
}
