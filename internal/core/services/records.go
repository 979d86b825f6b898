package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vncsmyrnk/personhood/internal/core/domain"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

// storeFailure makes sure err matches domain.ErrStoreUnavailable whatever the
// adapter returned.
func storeFailure(op string, err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

func malformed(contentID string, err error) error {
	if !errors.Is(err, domain.ErrMalformedRecord) {
		err = fmt.Errorf("%w: %w", domain.ErrMalformedRecord, err)
	}
	return fmt.Errorf("object %s: %w: %w", contentID, domain.ErrStoreUnavailable, err)
}

func normalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", domain.ErrInvalidAddress
	}
	return address, nil
}

// uniqueRefs drops repeated pins of the same object; the store may pin
// identical content more than once.
func uniqueRefs(refs []ports.PinRef) []ports.PinRef {
	seen := make(map[string]struct{}, len(refs))
	out := make([]ports.PinRef, 0, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref.ContentID]; ok {
			continue
		}
		seen[ref.ContentID] = struct{}{}
		out = append(out, ref)
	}
	return out
}

func decodeStrict(raw json.RawMessage, out any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMalformedRecord, err)
	}
	return nil
}

func decodeCredential(contentID string, raw json.RawMessage) (domain.Credential, error) {
	var c domain.Credential
	if err := decodeStrict(raw, &c); err != nil {
		return domain.Credential{}, malformed(contentID, err)
	}
	if err := c.Validate(); err != nil {
		return domain.Credential{}, malformed(contentID, err)
	}
	c.ContentID = contentID
	return c, nil
}

func decodeVote(contentID string, raw json.RawMessage) (domain.VoteRecord, error) {
	var v domain.VoteRecord
	if err := decodeStrict(raw, &v); err != nil {
		return domain.VoteRecord{}, malformed(contentID, err)
	}
	if err := v.Validate(); err != nil {
		return domain.VoteRecord{}, malformed(contentID, err)
	}
	v.ContentID = contentID
	return v, nil
}

// fetchRecords fetches and decodes every referenced object, at most limit at a
// time. The first failure cancels the remaining fetches.
func fetchRecords[T any](
	ctx context.Context,
	store ports.ContentStore,
	refs []ports.PinRef,
	limit int,
	decode func(contentID string, raw json.RawMessage) (T, error),
) ([]T, error) {
	refs = uniqueRefs(refs)
	out := make([]T, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, ref := range refs {
		g.Go(func() error {
			raw, err := store.Fetch(gctx, ref.ContentID)
			if err != nil {
				return storeFailure(fmt.Sprintf("fetch %s", ref.ContentID), err)
			}
			record, err := decode(ref.ContentID, raw)
			if err != nil {
				return err
			}
			out[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
