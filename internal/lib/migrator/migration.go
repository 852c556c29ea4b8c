package migrator

import (
	"embed"
	"errors"
	"fmt"
	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"log/slog"
	"pollbot/internal/config"
)

//go:embed migrations/*.sql
var fs embed.FS

// RunMigrations up migrations files from embed.FS - fs
func RunMigrations(cfg config.PostgresConfig, log *slog.Logger) error {
	const op = "migrator.RunMigrations"

	return withMigrate(cfg.DSN(), op, func(m *migrate.Migrate) error {
		log.Info("applying database migrations")
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("%s: migration failed: %w", op, err)
		}
		return nil
	})
}

// RollbackMigrations reverts the last steps migrations.
func RollbackMigrations(cfg config.PostgresConfig, log *slog.Logger, steps int) error {
	const op = "migrator.RollbackMigrations"

	if steps <= 0 {
		return fmt.Errorf("%s: steps must be positive, got %d", op, steps)
	}

	return withMigrate(cfg.DSN(), op, func(m *migrate.Migrate) error {
		log.Info("rolling back database migrations", slog.Int("steps", steps))
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("%s: rollback failed: %w", op, err)
		}
		return nil
	})
}

// Version reports the current schema version and whether the last migration left it dirty.
func Version(cfg config.PostgresConfig) (uint, bool, error) {
	const op = "migrator.Version"

	var (
		version uint
		dirty   bool
	)

	err := withMigrate(cfg.DSN(), op, func(m *migrate.Migrate) error {
		var err error
		version, dirty, err = m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		return err
	})
	if err != nil {
		return 0, false, err
	}

	return version, dirty, nil
}

// Reset migrates the database at dsn all the way down and back up again.
func Reset(dsn string) error {
	const op = "migrator.Reset"

	return withMigrate(dsn, op, func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("%s: down failed: %w", op, err)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("%s: up failed: %w", op, err)
		}
		return nil
	})
}

func withMigrate(dsn string, op string, fn func(m *migrate.Migrate) error) error {
	migrationDB, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return fmt.Errorf("%s: failed to connect: %w", op, err)
	}
	defer migrationDB.Close()

	driver, err := migratepgx.WithInstance(migrationDB.DB, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("%s: failed to create driver: %w", op, err)
	}

	source, err := iofs.New(fs, "migrations")
	if err != nil {
		return fmt.Errorf("%s: failed to create source: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("%s: failed to create migrate instance: %w", op, err)
	}
	defer m.Close()

	return fn(m)
}
