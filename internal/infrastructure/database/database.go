package database

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"oficri/mesapartes/internal/infrastructure/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewPool creates a new PostgreSQL connection pool from the database settings.
func NewPool(ctx context.Context, cfg config.DatabaseSettings) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s pool_max_conns=%d pool_min_conns=%d pool_max_conn_lifetime=%s",
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.User,
		cfg.Password,
		cfg.SSLMode,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations executes all SQL migration files in order. Statements are
// idempotent (CREATE TABLE IF NOT EXISTS) so re-running on startup is safe.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	migrations := []string{
		"migrations/001_create_usuarios.sql",
		"migrations/002_create_referencias.sql",
		"migrations/003_create_oficios.sql",
		"migrations/004_create_seguimientos.sql",
		"migrations/005_create_muestras.sql",
	}

	for _, migration := range migrations {
		log.Info("Running migration", "file", migration)

		sqlBytes, err := migrationsFS.ReadFile(migration)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", migration, err)
		}

		if _, err := pool.Exec(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("execute migration %s: %w", migration, err)
		}
	}

	return nil
}
