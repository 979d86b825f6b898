package ports

import (
	"context"
	"encoding/json"
	"time"
)

// Tag keys and values attached to every published object.
const (
	TagType           = "type"
	TagAddress        = "address"
	TagProposalID     = "proposalId"
	TagCredentialHash = "credentialHash"

	TypeCredential = "credential"
	TypeVote       = "vote"
)

// Tags is an exact-match key/value predicate over publish-time metadata.
type Tags map[string]string

// Matches reports whether every key/value in predicate is present in t.
func (t Tags) Matches(predicate Tags) bool {
	for k, v := range predicate {
		if got, ok := t[k]; !ok || got != v {
			return false
		}
	}
	return true
}

type PinRef struct {
	ContentID string
	PinnedAt  time.Time
}

// ContentStore is an append-only, content-addressed object store with
// tag-based queries. Implementations return errors matching
// domain.ErrStoreUnavailable on any remote failure.
type ContentStore interface {
	Publish(ctx context.Context, name string, content any, tags Tags) (string, error)
	Query(ctx context.Context, tags Tags) ([]PinRef, error)
	Fetch(ctx context.Context, contentID string) (json.RawMessage, error)
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
