// Package storage wires the configured persistence adapter.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/taskmaster/tracker/internal/adapters/repository"
	"github.com/taskmaster/tracker/internal/infrastructure/config"
	"github.com/taskmaster/tracker/internal/infrastructure/database"
	"github.com/taskmaster/tracker/internal/infrastructure/logger"
	"github.com/taskmaster/tracker/internal/ports"
)

// Backend is an opened pair of repositories sharing one connection
type Backend struct {
	Driver string
	Events ports.EventRepository
	Tasks  ports.TaskRepository

	db      *database.DB
	closers []func() error
}

type options struct {
	fs afero.Fs
}

// Option customises Open
type Option func(*options)

// WithFilesystem replaces the OS filesystem used by the file driver
func WithFilesystem(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// Open connects the adapter selected by cfg.Storage.Driver
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger, opts ...Option) (*Backend, error) {
	o := options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}

	log = log.WithComponent("storage")
	b := &Backend{Driver: cfg.Storage.Driver}

	switch cfg.Storage.Driver {
	case config.DriverFile:
		if err := o.fs.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		b.Events = repository.NewEventFileStore(o.fs, cfg.Storage.DataDir, log)
		b.Tasks = repository.NewTaskFileStore(o.fs, cfg.Storage.DataDir, log)

	case config.DriverPostgres:
		if cfg.Database.AutoMigrate {
			changed, err := database.MigrateUp(cfg.Database)
			if err != nil {
				return nil, err
			}
			log.Infow("Database schema checked", "migrated", changed)
		}
		db, err := database.New(cfg.Database)
		if err != nil {
			return nil, err
		}
		b.Events = repository.NewEventSQLRepository(db)
		b.Tasks = repository.NewTaskSQLRepository(db)
		b.db = db
		b.closers = append(b.closers, db.Close)

	case config.DriverSQLite:
		db, err := repository.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
		}
		b.Events = repository.NewEventGormStore(db)
		b.Tasks = repository.NewTaskGormStore(db)
		b.closers = append(b.closers, sqlDB.Close)

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, cfg.Storage.Timeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		b.Events = repository.NewEventRedisStore(client, cfg.Redis.KeyPrefix)
		b.Tasks = repository.NewTaskRedisStore(client, cfg.Redis.KeyPrefix)
		b.closers = append(b.closers, client.Close)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	log.Infow("Storage opened", "driver", b.Driver)
	return b, nil
}

// Ping checks that both repositories are reachable
func (b *Backend) Ping(ctx context.Context) error {
	if err := b.Events.Ping(ctx); err != nil {
		return fmt.Errorf("events storage: %w", err)
	}
	if err := b.Tasks.Ping(ctx); err != nil {
		return fmt.Errorf("tasks storage: %w", err)
	}
	return nil
}

// Stats reports connection pool statistics for the postgres driver, nil otherwise
func (b *Backend) Stats() map[string]interface{} {
	if b.db == nil {
		return nil
	}
	return b.db.GetConnectionInfo()
}

// Close releases the underlying connection
func (b *Backend) Close() error {
	var errs []error
	for _, c := range b.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
