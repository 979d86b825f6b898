// Package catalog provides the read-only proposal catalog, either built in or
// loaded from a YAML file.
package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vncsmyrnk/personhood/internal/core/domain"
)

type Catalog struct {
	proposals []domain.Proposal
	byID      map[string]int
}

type file struct {
	Proposals []domain.Proposal `yaml:"proposals"`
}

func New(proposals []domain.Proposal) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int, len(proposals))}
	for _, p := range proposals {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("proposal %q has no id", p.Title)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate proposal id %q", p.ID)
		}
		c.byID[p.ID] = len(c.proposals)
		c.proposals = append(c.proposals, p)
	}
	return c, nil
}

// Default returns the built-in catalog. Its proposals have no deadline.
func Default() *Catalog {
	c, _ := New([]domain.Proposal{
		{
			ID:          "1",
			Title:       "Community Treasury Allocation",
			Description: "Allocate 1000 tokens to community development initiatives",
		},
		{
			ID:          "2",
			Title:       "Protocol Upgrade Proposal",
			Description: "Implement new security features in the next protocol version",
		},
	})
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse proposal catalog: %w", err)
	}
	return New(f.Proposals)
}

func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read proposal catalog: %w", err)
	}
	return Parse(data)
}

func (c *Catalog) List(ctx context.Context) ([]domain.Proposal, error) {
	out := make([]domain.Proposal, len(c.proposals))
	copy(out, c.proposals)
	return out, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (*domain.Proposal, error) {
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProposalNotFound, id)
	}
	p := c.proposals[i]
	return &p, nil
}
