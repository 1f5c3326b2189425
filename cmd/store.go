package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/kesiliance/screening-cli/internal/config"
	"github.com/kesiliance/screening-cli/internal/store"
)

// openStore opens the configured backend. Callers own Close.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: int32(cfg.Store.MaxConns),
		})
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
