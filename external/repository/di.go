package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/foxseedlab/townsquare/internal/config"
	"github.com/foxseedlab/townsquare/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
)

const databaseInitTimeout = 15 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (repository.GuildStore, error) {
		cfg := do.MustInvoke[*config.Config](i)
		ctx, cancel := context.WithTimeout(context.Background(), databaseInitTimeout)
		defer cancel()

		switch cfg.StorageBackend {
		case config.StorageBackendPostgres:
			return openPostgres(ctx, cfg.DatabaseURL)
		case config.StorageBackendSQLite:
			store, err := OpenSQLiteStore(ctx, cfg.SQLitePath)
			if err != nil {
				return nil, err
			}
			return store, nil
		default:
			return NewFileStore(cfg.DataDir)
		}
	})
}

func openPostgres(ctx context.Context, databaseURL string) (repository.GuildStore, error) {
	p, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := RunMigration(ctx, p); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}
	return NewPostgresStore(p), nil
}
