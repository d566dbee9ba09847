package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"blackboxscan/internal/database"
	"blackboxscan/pkg/migration"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// migrateConfig is the small subset of settings the migrate command needs.
type migrateConfig struct {
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"blackboxscan"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`

	MigrationsTable string        `envconfig:"MIGRATIONS_TABLE" default:"schema_migrations"`
	LockTimeout     time.Duration `envconfig:"MIGRATIONS_LOCK_TIMEOUT" default:"30s"`
}

func (c migrateConfig) dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	up := flag.Bool("up", false, "apply all pending migrations")
	down := flag.Bool("down", false, "roll back all migrations")
	steps := flag.Int("steps", 0, "apply n migrations, negative rolls back")
	force := flag.Int("force", -1, "force the schema version without running migrations")
	version := flag.Bool("version", false, "print the current schema version")
	flag.Parse()

	_ = godotenv.Load()
	var cfg migrateConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to read configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.dsn())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create connection pool")
	}
	defer pool.Close()

	migCfg := database.MigrationConfig()
	migCfg.MigrationsTable = cfg.MigrationsTable
	migCfg.LockTimeout = cfg.LockTimeout
	m := migration.NewMigrator(migCfg, pool, log)

	switch {
	case *force >= 0:
		err = m.ForceVersion(ctx, uint(*force))
	case *down:
		err = m.Down(ctx)
	case *steps != 0:
		err = m.Steps(ctx, *steps)
	case *version:
		v, dirty, verr := m.Version(ctx)
		if verr == nil {
			log.Info().Uint("version", v).Bool("dirty", dirty).Msg("Current schema version")
		}
		err = verr
	case *up:
		err = m.Up(ctx)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Migration command failed")
	}
	log.Info().Msg("Done")
}
