package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/personhood/internal/adapters/store/contentid"
	"github.com/vncsmyrnk/personhood/internal/core/domain"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

// ContentStore is a self-hosted pinning store: objects are immutable rows
// keyed by their CID, pins carry the queryable tags.
type ContentStore struct {
	db *sql.DB
}

func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{
		db: db,
	}
}

func (r *ContentStore) Publish(ctx context.Context, name string, content any, tags ports.Tags) (string, error) {
	data, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("failed to encode content: %w", err)
	}
	id, err := contentid.Compute(data)
	if err != nil {
		return "", err
	}
	if tags == nil {
		tags = ports.Tags{}
	}
	tagJSON, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to begin transaction: %w", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	queryObject := `
		INSERT INTO content_objects (cid, content)
		VALUES ($1, $2)
		ON CONFLICT (cid) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, queryObject, id, data); err != nil {
		return "", fmt.Errorf("%w: failed to insert object: %w", domain.ErrStoreUnavailable, err)
	}

	queryPin := `
		INSERT INTO pins (id, cid, name, tags)
		VALUES ($1, $2, $3, $4::jsonb)
	`
	if _, err := tx.ExecContext(ctx, queryPin, uuid.New(), id, name, string(tagJSON)); err != nil {
		return "", fmt.Errorf("%w: failed to insert pin: %w", domain.ErrStoreUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: failed to commit transaction: %w", domain.ErrStoreUnavailable, err)
	}

	return id, nil
}

func (r *ContentStore) Query(ctx context.Context, tags ports.Tags) ([]ports.PinRef, error) {
	if tags == nil {
		tags = ports.Tags{}
	}
	tagJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		SELECT cid, pinned_at
		FROM pins
		WHERE tags @> $1::jsonb
		ORDER BY pinned_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, string(tagJSON))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query pins: %w", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var refs []ports.PinRef
	for rows.Next() {
		var ref ports.PinRef
		if err := rows.Scan(&ref.ContentID, &ref.PinnedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan pin: %w", domain.ErrStoreUnavailable, err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating pins: %w", domain.ErrStoreUnavailable, err)
	}
	return refs, nil
}

func (r *ContentStore) Fetch(ctx context.Context, contentID string) (json.RawMessage, error) {
	query := `SELECT content FROM content_objects WHERE cid = $1`
	var content []byte
	err := r.db.QueryRowContext(ctx, query, contentID).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: object %s not found", domain.ErrStoreUnavailable, contentID)
		}
		return nil, fmt.Errorf("%w: failed to fetch object: %w", domain.ErrStoreUnavailable, err)
	}
	return json.RawMessage(content), nil
}
