package ports

import "context"

// IdentityVerifier turns a session token minted by the wallet layer into the
// address it was issued for.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}
