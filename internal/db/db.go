package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"emailscheduler/internal/clock"
	"emailscheduler/internal/config"
	"emailscheduler/internal/repository"
	"emailscheduler/internal/repository/memory"
	"emailscheduler/internal/repository/postgres"
	"emailscheduler/internal/repository/sqlite"
	"emailscheduler/migrations"
)

// Connect initializes a sql.DB connection using pgx.
func Connect(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Stores bundles the event and recipient repositories of one backend.
type Stores struct {
	Events     repository.EventRepository
	Recipients repository.RecipientRepository

	closer func() error
}

// Close releases the backing connection, if any.
func (s *Stores) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// Open connects the backend selected by cfg.Store.Driver and makes sure its
// tables exist.
func Open(ctx context.Context, cfg *config.Config, zone clock.Zone) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		database, err := Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := RunMigrations(ctx, database, migrations.FS); err != nil {
			database.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return &Stores{
			Events:     postgres.NewEventRepository(database, zone),
			Recipients: postgres.NewRecipientRepository(database),
			closer:     database.Close,
		}, nil

	case config.StoreSQLite:
		database, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return &Stores{
			Events:     sqlite.NewEventRepository(database, zone),
			Recipients: sqlite.NewRecipientRepository(database),
			closer:     database.Close,
		}, nil

	case config.StoreMemory:
		return &Stores{
			Events:     memory.NewEventRepository(zone),
			Recipients: memory.NewRecipientRepository(),
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
