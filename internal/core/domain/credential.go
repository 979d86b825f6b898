package domain

import (
	"fmt"
	"strings"
	"time"
)

const CredentialTypeProofOfPersonhood = "ProofOfPersonhood"

type CredentialStatus string

const (
	CredentialStatusActive  CredentialStatus = "active"
	CredentialStatusRevoked CredentialStatus = "revoked"
)

func (s CredentialStatus) Valid() bool {
	return s == CredentialStatusActive || s == CredentialStatusRevoked
}

// Credential is one immutable credential record. A revocation is a new record,
// so several may exist per address; see services.CredentialService.Resolve.
type Credential struct {
	Type       string           `json:"type"`
	Address    string           `json:"address"`
	CreatedAt  time.Time        `json:"createdAt"`
	IssuedAt   time.Time        `json:"issuedAt"`
	Status     CredentialStatus `json:"status"`
	Supersedes string           `json:"supersedes,omitempty"`
	ContentID  string           `json:"contentId,omitempty"`
}

func (c *Credential) IsActive() bool {
	return c != nil && c.Status == CredentialStatusActive
}

// Validate checks the closed shape of a credential payload read back from the store.
func (c *Credential) Validate() error {
	if c.Type != CredentialTypeProofOfPersonhood {
		return fmt.Errorf("%w: unexpected credential type %q", ErrMalformedRecord, c.Type)
	}
	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("%w: credential address is empty", ErrMalformedRecord)
	}
	if c.CreatedAt.IsZero() {
		return fmt.Errorf("%w: credential createdAt is missing", ErrMalformedRecord)
	}
	if !c.Status.Valid() {
		return fmt.Errorf("%w: unknown credential status %q", ErrMalformedRecord, c.Status)
	}
	return nil
}
