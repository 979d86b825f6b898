package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/vncsmyrnk/personhood/internal/core/domain"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

// CredentialService keeps proof-of-personhood credentials in an append-only
// content store. The current state of an address is reconstructed on every
// read: the record with the latest CreatedAt wins.
type CredentialService struct {
	store ports.ContentStore
	opts  options
}

func NewCredentialService(store ports.ContentStore, opts ...Option) *CredentialService {
	return &CredentialService{
		store: store,
		opts:  newOptions(opts),
	}
}

// compareCredentials orders records newest first, ties broken by the smaller
// content id.
func compareCredentials(a, b domain.Credential) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ContentID, b.ContentID)
}

func credentialTags(address string) ports.Tags {
	return ports.Tags{
		ports.TagType:    ports.TypeCredential,
		ports.TagAddress: address,
	}
}

// Resolve returns the authoritative credential for address, or nil when the
// address has never been issued one.
func (s *CredentialService) Resolve(ctx context.Context, address string) (*domain.Credential, error) {
	history, err := s.History(ctx, address)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	current := history[0]
	return &current, nil
}

// History returns every credential record published for address in
// resolution order, the authoritative one first.
func (s *CredentialService) History(ctx context.Context, address string) ([]domain.Credential, error) {
	address, err := normalizeAddress(address)
	if err != nil {
		return nil, err
	}

	refs, err := s.store.Query(ctx, credentialTags(address))
	if err != nil {
		return nil, storeFailure("query credentials", err)
	}

	records, err := fetchRecords(ctx, s.store, refs, s.opts.fetchConcurrency, decodeCredential)
	if err != nil {
		return nil, err
	}
	for _, c := range records {
		if c.Address != address {
			return nil, malformed(c.ContentID, fmt.Errorf("tagged for %s but issued to %s", address, c.Address))
		}
	}

	slices.SortFunc(records, compareCredentials)
	return records, nil
}

// List returns the authoritative credential of every known address, sorted by
// address.
func (s *CredentialService) List(ctx context.Context) ([]domain.Credential, error) {
	refs, err := s.store.Query(ctx, ports.Tags{ports.TagType: ports.TypeCredential})
	if err != nil {
		return nil, storeFailure("query credentials", err)
	}

	records, err := fetchRecords(ctx, s.store, refs, s.opts.fetchConcurrency, decodeCredential)
	if err != nil {
		return nil, err
	}

	current := make(map[string]domain.Credential)
	for _, c := range records {
		if best, ok := current[c.Address]; !ok || compareCredentials(c, best) < 0 {
			current[c.Address] = c
		}
	}

	out := make([]domain.Credential, 0, len(current))
	for _, c := range current {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Credential) int {
		return strings.Compare(a.Address, b.Address)
	})
	return out, nil
}

func (s *CredentialService) Issue(ctx context.Context, address string) (*domain.Credential, error) {
	address, err := normalizeAddress(address)
	if err != nil {
		return nil, err
	}
	logger := s.opts.logger.With("module", "credentials", "address", address)

	current, err := s.Resolve(ctx, address)
	if err != nil {
		logger.Error("credential lookup failed", "event", "credential_issue_lookup_failed", "error", err.Error())
		return nil, err
	}

	now := s.opts.clock.Now()
	if current != nil {
		switch {
		case current.IsActive():
			logger.Warn("credential already active", "event", "credential_issue_conflict", "content_id", current.ContentID)
			return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyActive, current.ContentID)
		case !s.opts.allowReissue:
			return nil, fmt.Errorf("%w: %s", domain.ErrCredentialRevoked, current.ContentID)
		}
		now = after(now, current.CreatedAt)
	}

	credential := &domain.Credential{
		Type:      domain.CredentialTypeProofOfPersonhood,
		Address:   address,
		CreatedAt: now,
		IssuedAt:  now,
		Status:    domain.CredentialStatusActive,
	}
	id, err := s.store.Publish(ctx, "credential-"+address, credential, credentialTags(address))
	if err != nil {
		logger.Error("credential publish failed", "event", "credential_issue_publish_failed", "error", err.Error())
		return nil, storeFailure("publish credential", err)
	}
	credential.ContentID = id

	logger.Info("credential issued", "event", "credential_issued", "content_id", id)
	return credential, nil
}

// Revoke publishes a revoked copy of the active credential. The old record is
// left untouched; the copy wins resolution because its CreatedAt is later.
// Until the store makes the copy queryable, concurrent readers may still
// resolve the active record.
func (s *CredentialService) Revoke(ctx context.Context, address string) (*domain.Credential, error) {
	address, err := normalizeAddress(address)
	if err != nil {
		return nil, err
	}
	logger := s.opts.logger.With("module", "credentials", "address", address)

	current, err := s.Resolve(ctx, address)
	if err != nil {
		return nil, err
	}
	if !current.IsActive() {
		return nil, domain.ErrNotFound
	}

	revoked := *current
	revoked.Status = domain.CredentialStatusRevoked
	revoked.Supersedes = current.ContentID
	revoked.ContentID = ""
	revoked.CreatedAt = after(s.opts.clock.Now(), current.CreatedAt)

	id, err := s.store.Publish(ctx, "credential-"+address, &revoked, credentialTags(address))
	if err != nil {
		logger.Error("revocation publish failed", "event", "credential_revoke_publish_failed", "error", err.Error())
		return nil, storeFailure("publish revocation", err)
	}
	revoked.ContentID = id

	logger.Info("credential revoked", "event", "credential_revoked", "content_id", id, "supersedes", current.ContentID)
	return &revoked, nil
}

func (s *CredentialService) Verify(ctx context.Context, address string) (bool, error) {
	current, err := s.Resolve(ctx, address)
	if err != nil {
		return false, err
	}
	return current.IsActive(), nil
}

// after returns now, or the instant just past prev when the clock has not
// moved beyond it.
func after(now, prev time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Nanosecond)
}
