package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vncsmyrnk/personhood/internal/core/domain"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func setupStore(t *testing.T) *ContentStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	container, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, ApplyMigrations(ctx, db))
	// second run must be a no-op
	require.NoError(t, ApplyMigrations(ctx, db))

	return NewContentStore(db)
}

func TestContentStoreRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	first, err := store.Publish(ctx, "vote-1", map[string]string{"vote": "yes"},
		ports.Tags{ports.TagType: ports.TypeVote, ports.TagProposalID: "1", ports.TagCredentialHash: "c1"})
	require.NoError(t, err)
	second, err := store.Publish(ctx, "vote-2", map[string]string{"vote": "no"},
		ports.Tags{ports.TagType: ports.TypeVote, ports.TagProposalID: "1", ports.TagCredentialHash: "c2"})
	require.NoError(t, err)
	_, err = store.Publish(ctx, "vote-3", map[string]string{"vote": "no", "p": "2"},
		ports.Tags{ports.TagType: ports.TypeVote, ports.TagProposalID: "2", ports.TagCredentialHash: "c1"})
	require.NoError(t, err)

	refs, err := store.Query(ctx, ports.Tags{ports.TagType: ports.TypeVote, ports.TagProposalID: "1"})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.ElementsMatch(t, []string{first, second}, []string{refs[0].ContentID, refs[1].ContentID})

	refs, err = store.Query(ctx, ports.Tags{ports.TagProposalID: "1", ports.TagCredentialHash: "c2"})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, second, refs[0].ContentID)

	raw, err := store.Fetch(ctx, first)
	require.NoError(t, err)
	assert.JSONEq(t, `{"vote":"yes"}`, string(raw))
}

func TestContentStoreDuplicatePublish(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	tags := ports.Tags{ports.TagType: ports.TypeCredential, ports.TagAddress: "0xabc"}

	a, err := store.Publish(ctx, "credential-0xabc", map[string]string{"status": "active"}, tags)
	require.NoError(t, err)
	b, err := store.Publish(ctx, "credential-0xabc", map[string]string{"status": "active"}, tags)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	refs, err := store.Query(ctx, tags)
	require.NoError(t, err)
	assert.Len(t, refs, 2, "each publish is its own pin")
}

func TestContentStoreFetchMissing(t *testing.T) {
	store := setupStore(t)

	_, err := store.Fetch(context.Background(), "bafkreimissing")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
