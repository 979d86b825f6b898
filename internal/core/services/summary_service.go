package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/vncsmyrnk/personhood/internal/core/domain"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

type summaryService struct {
	catalog ports.ProposalCatalog
	votes   ports.VoteLedger
}

func NewSummaryService(catalog ports.ProposalCatalog, votes ports.VoteLedger) ports.SummaryService {
	return &summaryService{
		catalog: catalog,
		votes:   votes,
	}
}

// SummarizeAllVotes tallies every catalog proposal concurrently and returns
// the summaries in catalog order.
func (s *summaryService) SummarizeAllVotes(ctx context.Context) ([]domain.ProposalSummary, error) {
	proposals, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch all proposals: %w", err)
	}

	summaries := make([]domain.ProposalSummary, len(proposals))
	var wg sync.WaitGroup
	errChan := make(chan error, len(proposals))

	for i, proposal := range proposals {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tally, err := s.votes.Tally(ctx, proposal.ID)
			if err != nil {
				errChan <- fmt.Errorf("failed to summarize proposal %s: %w", proposal.ID, err)
				return
			}
			summaries[i] = domain.ProposalSummary{Proposal: proposal, VoteCount: tally}
		}()
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	return summaries, nil
}
