package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrator applies the embedded schema migrations through goose.
type Migrator struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewMigrator creates a migrator bound to the given pool.
func NewMigrator(pool *pgxpool.Pool, logger zerolog.Logger) *Migrator {
	return &Migrator{
		pool:   pool,
		logger: logger.With().Str("component", "migrator").Logger(),
	}
}

// withProvider opens a database/sql handle over the pool for the duration of fn.
func (m *Migrator) withProvider(fn func(p *goose.Provider) error) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	return fn(provider)
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	return m.withProvider(func(p *goose.Provider) error {
		results, err := p.Up(ctx)
		if err != nil {
			m.logger.Error().Err(err).Msg("failed to apply migrations")
			return fmt.Errorf("failed to apply migrations: %w", err)
		}

		for _, r := range results {
			m.logger.Info().
				Int64("version", r.Source.Version).
				Dur("duration", r.Duration).
				Msg("migration applied")
		}
		m.logger.Info().Int("applied", len(results)).Msg("database schema up to date")
		return nil
	})
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	return m.withProvider(func(p *goose.Provider) error {
		result, err := p.Down(ctx)
		if err != nil {
			m.logger.Error().Err(err).Msg("failed to roll back migration")
			return fmt.Errorf("failed to roll back migration: %w", err)
		}

		m.logger.Info().Int64("version", result.Source.Version).Msg("migration rolled back")
		return nil
	})
}

// MigrationState describes one migration and whether it has been applied.
type MigrationState struct {
	Version int64
	Path    string
	Applied bool
}

// Status reports the state of every known migration.
func (m *Migrator) Status(ctx context.Context) ([]MigrationState, error) {
	var states []MigrationState
	err := m.withProvider(func(p *goose.Provider) error {
		statuses, err := p.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to read migration status: %w", err)
		}

		states = make([]MigrationState, 0, len(statuses))
		for _, s := range statuses {
			states = append(states, MigrationState{
				Version: s.Source.Version,
				Path:    s.Source.Path,
				Applied: s.State == goose.StateApplied,
			})
		}
		return nil
	})
	return states, err
}

// Version returns the current schema version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	var version int64
	err := m.withProvider(func(p *goose.Provider) error {
		v, err := p.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}
