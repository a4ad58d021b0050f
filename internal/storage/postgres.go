package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Postgres implements Storage on a single key/value table.
type Postgres struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgres creates a PostgreSQL-backed store.
func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) *Postgres {
	return &Postgres{
		pool:   pool,
		logger: logger.With().Str("storage", "postgres").Logger(),
	}
}

// EnsureSchema creates the item table if it does not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS storefront_items (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

	if _, err := p.pool.Exec(ctx, query); err != nil {
		p.logger.Error().Err(err).Msg("failed to create storefront_items table")
		return fmt.Errorf("failed to create schema: %w", err)
	}

	p.logger.Debug().Msg("storage schema ready")
	return nil
}

// GetItem retrieves the value stored under key.
func (p *Postgres) GetItem(ctx context.Context, key string) (string, error) {
	query := `
		SELECT value
		FROM storefront_items
		WHERE key = $1
	`

	var value string
	err := p.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		p.logger.Error().Err(err).Str("key", key).Msg("failed to query item")
		return "", fmt.Errorf("failed to query item: %w", err)
	}

	return value, nil
}

// SetItem upserts value under key.
func (p *Postgres) SetItem(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO storefront_items (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := p.pool.Exec(ctx, query, key, value); err != nil {
		p.logger.Error().Err(err).Str("key", key).Msg("failed to write item")
		return fmt.Errorf("failed to write item: %w", err)
	}

	return nil
}
