package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vncsmyrnk/personhood/internal/core/domain"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

// VoteService publishes one vote record per (proposal, credential) and counts
// them. Uniqueness is enforced when reading: Tally keeps only the earliest
// record of each credential.
type VoteService struct {
	store   ports.ContentStore
	catalog ports.ProposalCatalog
	opts    options
}

// NewVoteService builds a ledger over store. A nil catalog disables the
// proposal existence and deadline checks in Submit.
func NewVoteService(store ports.ContentStore, catalog ports.ProposalCatalog, opts ...Option) *VoteService {
	return &VoteService{
		store:   store,
		catalog: catalog,
		opts:    newOptions(opts),
	}
}

func voteTags(proposalID string) ports.Tags {
	return ports.Tags{
		ports.TagType:       ports.TypeVote,
		ports.TagProposalID: proposalID,
	}
}

// earlierVote reports whether a takes precedence over b for the same credential.
func earlierVote(a, b domain.VoteRecord) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.ContentID < b.ContentID
}

func (s *VoteService) Submit(ctx context.Context, proposalID string, vote domain.VoteChoice, credential *domain.Credential) (string, error) {
	proposalID = strings.TrimSpace(proposalID)
	if proposalID == "" {
		return "", domain.ErrProposalNotFound
	}
	if !credential.IsActive() || credential.ContentID == "" {
		return "", domain.ErrInvalidCredential
	}
	if !vote.Valid() {
		return "", domain.ErrInvalidVote
	}

	logger := s.opts.logger.With("module", "votes", "proposal_id", proposalID, "credential_hash", credential.ContentID)
	now := s.opts.clock.Now()

	if s.catalog != nil {
		proposal, err := s.catalog.Get(ctx, proposalID)
		if err != nil {
			return "", err
		}
		if !proposal.Open(now) {
			return "", domain.ErrProposalClosed
		}
	}

	tags := voteTags(proposalID)
	tags[ports.TagCredentialHash] = credential.ContentID

	// Check-then-publish is not atomic. Two concurrent submissions for the same
	// credential can both pass this query and both publish; Tally counts only
	// the earliest of them.
	prior, err := s.store.Query(ctx, tags)
	if err != nil {
		logger.Error("duplicate vote check failed", "event", "vote_duplicate_check_failed", "error", err.Error())
		return "", storeFailure("query prior votes", err)
	}
	if len(prior) > 0 {
		logger.Warn("duplicate vote rejected", "event", "vote_duplicate_rejected", "prior_content_id", prior[0].ContentID)
		return "", domain.ErrDuplicateVote
	}

	record := &domain.VoteRecord{
		ProposalID:     proposalID,
		CredentialHash: credential.ContentID,
		Vote:           vote,
		Timestamp:      now,
	}
	name := fmt.Sprintf("vote-%s-%s-%d", proposalID, credential.ContentID, now.UnixMilli())
	id, err := s.store.Publish(ctx, name, record, tags)
	if err != nil {
		logger.Error("vote publish failed", "event", "vote_publish_failed", "error", err.Error())
		return "", storeFailure("publish vote", err)
	}

	logger.Info("vote submitted", "event", "vote_submitted", "content_id", id, "vote", string(vote))
	return id, nil
}

// Tally counts the effective votes on proposalID. The result does not depend
// on the order in which the store returns records.
func (s *VoteService) Tally(ctx context.Context, proposalID string) (domain.Tally, error) {
	proposalID = strings.TrimSpace(proposalID)
	tally := domain.Tally{ProposalID: proposalID}

	effective, err := s.effectiveVotes(ctx, proposalID, voteTags(proposalID))
	if err != nil {
		return domain.Tally{}, err
	}
	for _, v := range effective {
		switch v.Vote {
		case domain.VoteYes:
			tally.Yes++
		case domain.VoteNo:
			tally.No++
		}
	}
	return tally, nil
}

// EffectiveVote returns the vote Tally counts for credentialHash on
// proposalID, or nil if the credential has not voted.
func (s *VoteService) EffectiveVote(ctx context.Context, proposalID, credentialHash string) (*domain.VoteRecord, error) {
	proposalID = strings.TrimSpace(proposalID)
	tags := voteTags(proposalID)
	tags[ports.TagCredentialHash] = credentialHash

	effective, err := s.effectiveVotes(ctx, proposalID, tags)
	if err != nil {
		return nil, err
	}
	v, ok := effective[credentialHash]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// effectiveVotes keeps the earliest record per credential among the votes
// matching tags.
func (s *VoteService) effectiveVotes(ctx context.Context, proposalID string, tags ports.Tags) (map[string]domain.VoteRecord, error) {
	refs, err := s.store.Query(ctx, tags)
	if err != nil {
		return nil, storeFailure("query votes", err)
	}

	records, err := fetchRecords(ctx, s.store, refs, s.opts.fetchConcurrency, decodeVote)
	if err != nil {
		return nil, err
	}

	effective := make(map[string]domain.VoteRecord, len(records))
	for _, v := range records {
		if v.ProposalID != proposalID {
			return nil, malformed(v.ContentID, fmt.Errorf("tagged for proposal %s but cast on %s", proposalID, v.ProposalID))
		}
		if hash, ok := tags[ports.TagCredentialHash]; ok && v.CredentialHash != hash {
			return nil, malformed(v.ContentID, fmt.Errorf("tagged for credential %s but cast by %s", hash, v.CredentialHash))
		}
		if current, ok := effective[v.CredentialHash]; !ok || earlierVote(v, current) {
			effective[v.CredentialHash] = v
		}
	}
	return effective, nil
}
