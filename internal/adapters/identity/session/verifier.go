// Package session authenticates wallet sessions carried as HS256 tokens whose
// subject is the wallet address.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrMissingKey   = errors.New("session signing key is not configured")
)

type Verifier struct {
	secret []byte
	now    func() time.Time
}

var _ ports.IdentityVerifier = (*Verifier)(nil)

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Sign mints a session token for address valid for ttl.
func (v *Verifier) Sign(address string, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrMissingKey
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	now := v.now()
	claims := jwt.RegisteredClaims{
		Subject:   address,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// Verify checks the signature and expiry of token and returns its subject.
func (v *Verifier) Verify(_ context.Context, token string) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrMissingKey
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return subject, nil
}
