package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/personhood/internal/adapters/catalog"
	"github.com/vncsmyrnk/personhood/internal/adapters/store/memory"
	"github.com/vncsmyrnk/personhood/internal/core/domain"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
	"github.com/vncsmyrnk/personhood/internal/core/services"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// orderedStore rearranges query results to show that callers do not depend on
// the order the store returns pins in.
type orderedStore struct {
	ports.ContentStore
	order func([]ports.PinRef)
}

func (s orderedStore) Query(ctx context.Context, tags ports.Tags) ([]ports.PinRef, error) {
	refs, err := s.ContentStore.Query(ctx, tags)
	if err == nil {
		s.order(refs)
	}
	return refs, err
}

func reversed(store ports.ContentStore) ports.ContentStore {
	return orderedStore{ContentStore: store, order: slices.Reverse[[]ports.PinRef]}
}

func shuffled(store ports.ContentStore, seed uint64) ports.ContentStore {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return orderedStore{ContentStore: store, order: func(refs []ports.PinRef) {
		rng.Shuffle(len(refs), func(i, j int) { refs[i], refs[j] = refs[j], refs[i] })
	}}
}

var errRemote = errors.New("connection reset by peer")

type failingStore struct {
	ports.ContentStore
	failPublish bool
	failQuery   bool
	failFetch   bool
}

func (s failingStore) Publish(ctx context.Context, name string, content any, tags ports.Tags) (string, error) {
	if s.failPublish {
		return "", errRemote
	}
	return s.ContentStore.Publish(ctx, name, content, tags)
}

func (s failingStore) Query(ctx context.Context, tags ports.Tags) ([]ports.PinRef, error) {
	if s.failQuery {
		return nil, errRemote
	}
	return s.ContentStore.Query(ctx, tags)
}

func (s failingStore) Fetch(ctx context.Context, contentID string) (json.RawMessage, error) {
	if s.failFetch {
		return nil, errRemote
	}
	return s.ContentStore.Fetch(ctx, contentID)
}

type fixture struct {
	store       *memory.Store
	clock       *fakeClock
	catalog     *catalog.Catalog
	credentials *services.CredentialService
	votes       *services.VoteService
	guard       *services.EligibilityService
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCatalog(t *testing.T, clock *fakeClock) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]domain.Proposal{
		{ID: "1", Title: "Community Treasury Allocation", Deadline: clock.Now().Add(30 * 24 * time.Hour)},
		{ID: "2", Title: "Protocol Upgrade Proposal", Deadline: clock.Now().Add(30 * 24 * time.Hour)},
		{ID: "3", Title: "Closed Proposal", Deadline: clock.Now().Add(-time.Hour)},
	})
	require.NoError(t, err)
	return c
}

func newFixture(t *testing.T, opts ...services.Option) *fixture {
	t.Helper()
	clock := newFakeClock()
	store := memory.NewWithClock(clock)
	return newFixtureWithStore(t, store, store, clock, opts...)
}

func newFixtureWithStore(t *testing.T, mem *memory.Store, store ports.ContentStore, clock *fakeClock, opts ...services.Option) *fixture {
	t.Helper()
	c := testCatalog(t, clock)
	opts = append([]services.Option{services.WithClock(clock), services.WithLogger(quietLogger())}, opts...)

	credentials := services.NewCredentialService(store, opts...)
	votes := services.NewVoteService(store, c, opts...)
	return &fixture{
		store:       mem,
		clock:       clock,
		catalog:     c,
		credentials: credentials,
		votes:       votes,
		guard:       services.NewEligibilityService(credentials, votes, c, opts...),
	}
}

func credentialTags(address string) ports.Tags {
	return ports.Tags{ports.TagType: ports.TypeCredential, ports.TagAddress: address}
}

func voteTags(proposalID, credentialHash string) ports.Tags {
	return ports.Tags{ports.TagType: ports.TypeVote, ports.TagProposalID: proposalID, ports.TagCredentialHash: credentialHash}
}

// publishCredential writes a credential record straight to the store, as a
// racing writer would.
func publishCredential(t *testing.T, store ports.ContentStore, address string, status domain.CredentialStatus, createdAt time.Time) string {
	t.Helper()
	id, err := store.Publish(context.Background(), "credential-"+address, domain.Credential{
		Type:      domain.CredentialTypeProofOfPersonhood,
		Address:   address,
		CreatedAt: createdAt,
		IssuedAt:  createdAt,
		Status:    status,
	}, credentialTags(address))
	require.NoError(t, err)
	return id
}

func publishVote(t *testing.T, store ports.ContentStore, proposalID, credentialHash string, vote domain.VoteChoice, at time.Time) string {
	t.Helper()
	id, err := store.Publish(context.Background(), "vote", domain.VoteRecord{
		ProposalID:     proposalID,
		CredentialHash: credentialHash,
		Vote:           vote,
		Timestamp:      at,
	}, voteTags(proposalID, credentialHash))
	require.NoError(t, err)
	return id
}
