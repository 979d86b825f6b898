package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/personhood/internal/adapters/store/memory"
	"github.com/vncsmyrnk/personhood/internal/core/domain"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
	"github.com/vncsmyrnk/personhood/internal/core/services"
)

func TestIssueThenResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.credentials.Issue(ctx, "addr1")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ContentID)
	assert.Equal(t, domain.CredentialStatusActive, issued.Status)
	assert.Equal(t, domain.CredentialTypeProofOfPersonhood, issued.Type)
	assert.Equal(t, f.clock.Now(), issued.CreatedAt)

	resolved, err := f.credentials.Resolve(ctx, "addr1")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, issued.ContentID, resolved.ContentID)
	assert.Equal(t, domain.CredentialStatusActive, resolved.Status)

	ok, err := f.credentials.Verify(ctx, "addr1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResolveUnknownAddress(t *testing.T) {
	f := newFixture(t)

	resolved, err := f.credentials.Resolve(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, resolved)

	ok, err := f.credentials.Verify(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveRejectsEmptyAddress(t *testing.T) {
	f := newFixture(t)

	_, err := f.credentials.Resolve(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
}

func TestIssueWhileActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.credentials.Issue(ctx, "addr1")
	require.NoError(t, err)

	_, err = f.credentials.Issue(ctx, "addr1")
	assert.ErrorIs(t, err, domain.ErrAlreadyActive)
	assert.Equal(t, 1, f.store.Len(), "no second record published")
}

func TestRevoke(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.credentials.Issue(ctx, "addr1")
	require.NoError(t, err)

	revoked, err := f.credentials.Revoke(ctx, "addr1")
	require.NoError(t, err)
	assert.Equal(t, domain.CredentialStatusRevoked, revoked.Status)
	assert.Equal(t, issued.ContentID, revoked.Supersedes)
	assert.Equal(t, issued.IssuedAt, revoked.IssuedAt)
	assert.True(t, revoked.CreatedAt.After(issued.CreatedAt), "revocation must win resolution even on a frozen clock")
	assert.NotEqual(t, issued.ContentID, revoked.ContentID)

	resolved, err := f.credentials.Resolve(ctx, "addr1")
	require.NoError(t, err)
	assert.Equal(t, domain.CredentialStatusRevoked, resolved.Status)
	assert.Equal(t, revoked.ContentID, resolved.ContentID)

	ok, err := f.credentials.Verify(ctx, "addr1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.credentials.Revoke(ctx, "addr1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRevokeWithoutCredential(t *testing.T) {
	f := newFixture(t)

	_, err := f.credentials.Revoke(context.Background(), "addr1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRevokeLeavesOriginalRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.credentials.Issue(ctx, "addr1")
	require.NoError(t, err)
	_, err = f.credentials.Revoke(ctx, "addr1")
	require.NoError(t, err)

	raw, err := f.store.Fetch(ctx, issued.ContentID)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"status":"active"`)
}

func TestRevocationIsTerminalByDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.credentials.Issue(ctx, "addr1")
	require.NoError(t, err)
	_, err = f.credentials.Revoke(ctx, "addr1")
	require.NoError(t, err)

	_, err = f.credentials.Issue(ctx, "addr1")
	assert.ErrorIs(t, err, domain.ErrCredentialRevoked)
}

func TestReissueWhenAllowed(t *testing.T) {
	f := newFixture(t, services.WithReissue(true))
	ctx := context.Background()

	first, err := f.credentials.Issue(ctx, "addr1")
	require.NoError(t, err)
	_, err = f.credentials.Revoke(ctx, "addr1")
	require.NoError(t, err)

	second, err := f.credentials.Issue(ctx, "addr1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ContentID, second.ContentID)

	ok, err := f.credentials.Verify(ctx, "addr1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResolvePicksLatestRegardlessOfQueryOrder(t *testing.T) {
	clock := newFakeClock()
	mem := memory.NewWithClock(clock)
	base := clock.Now()

	older := publishCredential(t, mem, "addr1", domain.CredentialStatusActive, base)
	newer := publishCredential(t, mem, "addr1", domain.CredentialStatusRevoked, base.Add(time.Minute))

	for name, store := range map[string]ports.ContentStore{
		"store order": mem,
		"reversed":    reversed(mem),
		"shuffled":    shuffled(mem, 7),
	} {
		t.Run(name, func(t *testing.T) {
			registry := services.NewCredentialService(store, services.WithLogger(quietLogger()))
			resolved, err := registry.Resolve(context.Background(), "addr1")
			require.NoError(t, err)
			assert.Equal(t, newer, resolved.ContentID)
			assert.NotEqual(t, older, resolved.ContentID)
		})
	}
}

func TestResolveTieBreaksOnContentID(t *testing.T) {
	clock := newFakeClock()
	mem := memory.NewWithClock(clock)
	at := clock.Now()

	// same instant, different payloads
	a := publishCredential(t, mem, "addr1", domain.CredentialStatusActive, at)
	b := publishCredential(t, mem, "addr1", domain.CredentialStatusRevoked, at)
	want := min(a, b)

	for _, store := range []ports.ContentStore{mem, reversed(mem)} {
		registry := services.NewCredentialService(store, services.WithLogger(quietLogger()))
		resolved, err := registry.Resolve(context.Background(), "addr1")
		require.NoError(t, err)
		assert.Equal(t, want, resolved.ContentID)
	}
}

func TestConcurrentIssueResolvesToOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*domain.Credential, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := f.credentials.Issue(ctx, "addr1")
			if err == nil {
				results[i] = c
			}
		}()
	}
	wg.Wait()

	first, err := f.credentials.Resolve(ctx, "addr1")
	require.NoError(t, err)
	require.NotNil(t, first)
	for i := 0; i < 5; i++ {
		again, err := f.credentials.Resolve(ctx, "addr1")
		require.NoError(t, err)
		assert.Equal(t, first.ContentID, again.ContentID)
	}

	var succeeded int
	for _, c := range results {
		if c != nil {
			succeeded++
		}
	}
	assert.GreaterOrEqual(t, succeeded, 1)
}

func TestHistoryAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.credentials.Issue(ctx, "bob")
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	issued, err := f.credentials.Issue(ctx, "alice")
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	revoked, err := f.credentials.Revoke(ctx, "alice")
	require.NoError(t, err)

	history, err := f.credentials.History(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, revoked.ContentID, history[0].ContentID)
	assert.Equal(t, issued.ContentID, history[1].ContentID)

	list, err := f.credentials.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alice", list[0].Address)
	assert.Equal(t, domain.CredentialStatusRevoked, list[0].Status)
	assert.Equal(t, "bob", list[1].Address)
	assert.Equal(t, domain.CredentialStatusActive, list[1].Status)
}

func TestCredentialStoreFailures(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	mem := memory.NewWithClock(clock)
	publishCredential(t, mem, "addr1", domain.CredentialStatusActive, clock.Now())

	tests := []struct {
		name  string
		store failingStore
		call  func(*services.CredentialService) error
	}{
		{"resolve query", failingStore{ContentStore: mem, failQuery: true}, func(s *services.CredentialService) error {
			_, err := s.Resolve(ctx, "addr1")
			return err
		}},
		{"resolve fetch", failingStore{ContentStore: mem, failFetch: true}, func(s *services.CredentialService) error {
			_, err := s.Resolve(ctx, "addr1")
			return err
		}},
		{"issue publish", failingStore{ContentStore: mem, failPublish: true}, func(s *services.CredentialService) error {
			_, err := s.Issue(ctx, "addr2")
			return err
		}},
		{"revoke publish", failingStore{ContentStore: mem, failPublish: true}, func(s *services.CredentialService) error {
			_, err := s.Revoke(ctx, "addr1")
			return err
		}},
		{"verify", failingStore{ContentStore: mem, failQuery: true}, func(s *services.CredentialService) error {
			_, err := s.Verify(ctx, "addr1")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := services.NewCredentialService(tt.store, services.WithClock(clock), services.WithLogger(quietLogger()))
			err := tt.call(registry)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
			assert.ErrorIs(t, err, errRemote)
		})
	}
}

func TestMalformedCredentialRecord(t *testing.T) {
	mem := memory.New()
	_, err := mem.Put("credential-addr1", []byte(`{"type":"Something","address":"addr1"}`), credentialTags("addr1"))
	require.NoError(t, err)

	registry := services.NewCredentialService(mem, services.WithLogger(quietLogger()))
	_, err = registry.Resolve(context.Background(), "addr1")
	assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestCredentialWithUnknownFieldsIsMalformed(t *testing.T) {
	mem := memory.New()
	_, err := mem.Put("credential-addr1", []byte(`{"type":"ProofOfPersonhood","address":"addr1","createdAt":"2024-03-01T00:00:00Z","status":"active","admin":true}`), credentialTags("addr1"))
	require.NoError(t, err)

	registry := services.NewCredentialService(mem, services.WithLogger(quietLogger()))
	_, err = registry.Resolve(context.Background(), "addr1")
	assert.ErrorIs(t, err, domain.ErrMalformedRecord)
}

func TestCredentialTaggedForAnotherAddressIsMalformed(t *testing.T) {
	clock := newFakeClock()
	mem := memory.NewWithClock(clock)
	_, err := mem.Publish(context.Background(), "credential", domain.Credential{
		Type:      domain.CredentialTypeProofOfPersonhood,
		Address:   "mallory",
		CreatedAt: clock.Now(),
		Status:    domain.CredentialStatusActive,
	}, credentialTags("addr1"))
	require.NoError(t, err)

	registry := services.NewCredentialService(mem, services.WithLogger(quietLogger()))
	_, err = registry.Resolve(context.Background(), "addr1")
	assert.ErrorIs(t, err, domain.ErrMalformedRecord)
}
