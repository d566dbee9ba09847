package database

import (
	"context"
	"embed"

	"blackboxscan/pkg/migration"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationConfig points the migrator at the embedded schema.
func MigrationConfig() migration.Config {
	return migration.Config{
		MigrationsFS:   migrationsFS,
		MigrationsPath: "migrations",
	}
}

// Migrate applies the embedded migrations to pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	return migration.NewMigrator(MigrationConfig(), pool, log).Up(ctx)
}
