package ports

import (
	"context"

	"github.com/vncsmyrnk/personhood/internal/core/domain"
)

type CredentialRegistry interface {
	Resolve(ctx context.Context, address string) (*domain.Credential, error)
	Issue(ctx context.Context, address string) (*domain.Credential, error)
	Revoke(ctx context.Context, address string) (*domain.Credential, error)
	Verify(ctx context.Context, address string) (bool, error)
	List(ctx context.Context) ([]domain.Credential, error)
	History(ctx context.Context, address string) ([]domain.Credential, error)
}
