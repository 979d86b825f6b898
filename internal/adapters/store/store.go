// Package store selects the content store backend named by the configuration.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/personhood/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/personhood/internal/adapters/store/memory"
	"github.com/vncsmyrnk/personhood/internal/adapters/store/pinata"
	"github.com/vncsmyrnk/personhood/internal/config"
	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

// Open returns the configured store and a function releasing its resources.
// The postgres backend is migrated before it is returned.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.ContentStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory content store, records are lost on exit", "event", "store_opened", "driver", cfg.StoreDriver)
		return memory.New(), noop, nil

	case config.StoreDriverPinata:
		client := pinata.New(pinata.Config{
			APIURL:       cfg.PinataAPIURL,
			GatewayURL:   cfg.PinataGatewayURL,
			JWT:          cfg.PinataJWT,
			GatewayToken: cfg.PinataGatewayAuth,
			Timeout:      cfg.StoreTimeout,
			FetchRetries: cfg.FetchRetries,
		}, logger)
		logger.Info("content store opened", "event", "store_opened", "driver", cfg.StoreDriver, "api", cfg.PinataAPIURL)
		return client, noop, nil

	case config.StoreDriverPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := postgres.ApplyMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("content store opened", "event", "store_opened", "driver", cfg.StoreDriver)
		return postgres.NewContentStore(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
