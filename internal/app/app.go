// Package app wires the configured store, catalog and services together for
// the binaries under cmd/.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vncsmyrnk/personhood/internal/adapters/catalog"
	"github.com/vncsmyrnk/personhood/internal/adapters/identity/session"
	"github.com/vncsmyrnk/personhood/internal/adapters/store"
	"github.com/vncsmyrnk/personhood/internal/config"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
	"github.com/vncsmyrnk/personhood/internal/core/services"
)

type App struct {
	Config      config.Config
	Logger      *slog.Logger
	Store       ports.ContentStore
	Catalog     *catalog.Catalog
	Credentials *services.CredentialService
	Votes       *services.VoteService
	Guard       *services.EligibilityService
	Proposals   ports.ProposalService
	Sessions    *session.Verifier

	closeStore func() error
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	proposals, err := loadCatalog(cfg.ProposalsFile)
	if err != nil {
		return nil, fmt.Errorf("load proposals: %w", err)
	}

	contentStore, closeStore, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := []services.Option{
		services.WithLogger(logger),
		services.WithFetchConcurrency(cfg.FetchConcurrency),
		services.WithReissue(cfg.AllowReissue),
	}
	credentials := services.NewCredentialService(contentStore, opts...)
	votes := services.NewVoteService(contentStore, proposals, opts...)

	return &App{
		Config:      cfg,
		Logger:      logger,
		Store:       contentStore,
		Catalog:     proposals,
		Credentials: credentials,
		Votes:       votes,
		Guard:       services.NewEligibilityService(credentials, votes, proposals, opts...),
		Proposals:   services.NewProposalService(proposals, votes),
		Sessions:    session.NewVerifier(cfg.JWTSecret),
		closeStore:  closeStore,
	}, nil
}

func (a *App) Close() error {
	return a.closeStore()
}
