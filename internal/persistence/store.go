package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

// TicketStore bundles the ticket repository with the connection that
// backs it.
type TicketStore struct {
	Driver     string
	Repository repository.TicketRepository

	ping  func(context.Context) error
	close func()
}

// OpenTicketStore connects the configured backend and returns its
// repository.
func OpenTicketStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...repository.Option) (*TicketStore, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return &TicketStore{
			Driver:     cfg.Store.Driver,
			Repository: repository.NewTicketRepository(pg.PoolHandle(), opts...),
			ping:       pg.Ping,
			close:      pg.Close,
		}, nil
	case config.DriverMongo:
		mg, err := NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := mg.EnsureIndexes(ctx); err != nil {
			mg.Close()
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return &TicketStore{
			Driver:     cfg.Store.Driver,
			Repository: repository.NewMongoTicketRepository(mg.Tickets(), opts...),
			ping:       mg.Ping,
			close:      mg.Close,
		}, nil
	case config.DriverSQLite:
		lite, err := NewSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("opened sqlite", zap.String("path", cfg.SQLite.Path))
		return &TicketStore{
			Driver:     cfg.Store.Driver,
			Repository: repository.NewSQLiteTicketRepository(lite.DB, opts...),
			ping:       lite.Ping,
			close:      lite.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Ping verifies the backing store is reachable.
func (s *TicketStore) Ping(ctx context.Context) error {
	if s == nil || s.ping == nil {
		return fmt.Errorf("ticket store not configured")
	}
	return s.ping(ctx)
}

// Close releases the backing connection.
func (s *TicketStore) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}
