// Package memory is an in-process content store with the same semantics as
// the remote pinning service: immutable objects, content ids, tag queries
// returning the newest pin first.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/personhood/internal/adapters/store/contentid"
	"github.com/vncsmyrnk/personhood/internal/core/domain"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

type pin struct {
	ID        uuid.UUID
	Name      string
	ContentID string
	Tags      ports.Tags
	PinnedAt  time.Time
}

type Store struct {
	mu      sync.RWMutex
	pins    []pin
	objects map[string][]byte
	clock   ports.Clock
}

func New() *Store {
	return NewWithClock(ports.SystemClock{})
}

func NewWithClock(clock ports.Clock) *Store {
	return &Store{
		objects: make(map[string][]byte),
		clock:   clock,
	}
}

func (s *Store) Publish(ctx context.Context, name string, content any, tags ports.Tags) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	data, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("encode content: %w", err)
	}
	id, err := contentid.Compute(data)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[id]; !ok {
		s.objects[id] = data
	}
	s.pins = append(s.pins, pin{
		ID:        uuid.New(),
		Name:      name,
		ContentID: id,
		Tags:      maps.Clone(tags),
		PinnedAt:  s.clock.Now(),
	})
	return id, nil
}

// Query returns matching pins, most recently pinned first.
func (s *Store) Query(ctx context.Context, tags ports.Tags) ([]ports.PinRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var refs []ports.PinRef
	for i := len(s.pins) - 1; i >= 0; i-- {
		p := s.pins[i]
		if p.Tags.Matches(tags) {
			refs = append(refs, ports.PinRef{ContentID: p.ContentID, PinnedAt: p.PinnedAt})
		}
	}
	return refs, nil
}

func (s *Store) Fetch(ctx context.Context, contentID string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[contentID]
	if !ok {
		return nil, fmt.Errorf("%w: object %s not found", domain.ErrStoreUnavailable, contentID)
	}
	return json.RawMessage(append([]byte(nil), data...)), nil
}

// Put stores raw bytes under tags without going through JSON encoding. It is
// meant for seeding fixtures, including deliberately malformed ones.
func (s *Store) Put(name string, raw []byte, tags ports.Tags) (string, error) {
	id, err := contentid.Compute(raw)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[id] = append([]byte(nil), raw...)
	s.pins = append(s.pins, pin{
		ID:        uuid.New(),
		Name:      name,
		ContentID: id,
		Tags:      maps.Clone(tags),
		PinnedAt:  s.clock.Now(),
	})
	return id, nil
}

// Len returns the number of pins, duplicates included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pins)
}
