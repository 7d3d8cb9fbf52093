package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"menuforge/internal/config"
)

// Connect opens a pool against the catalog database and makes sure the
// catalog tables exist.
func Connect(ctx context.Context, cfg config.Postgres) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	slog.Info("connected to postgres")
	return pool, nil
}

// initSchema creates the catalog tables. The import pipeline only ever
// inserts; superseding old documents is the surrounding system's job.
func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS catalog_documents (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS catalog_sections (
			id UUID PRIMARY KEY,
			document_id UUID NOT NULL REFERENCES catalog_documents(id),
			name VARCHAR(255) NOT NULL,
			position INT NOT NULL,
			UNIQUE (document_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS catalog_entries (
			id UUID PRIMARY KEY,
			section_id UUID NOT NULL REFERENCES catalog_sections(id),
			name VARCHAR(255) NOT NULL,
			description TEXT,
			price NUMERIC(10, 2) NOT NULL,
			tags TEXT[]
		)`,
		`CREATE TABLE IF NOT EXISTS catalog_asset_refs (
			id UUID PRIMARY KEY,
			entry_id UUID NOT NULL REFERENCES catalog_entries(id),
			asset_id VARCHAR(255) NOT NULL,
			filename VARCHAR(255),
			url VARCHAR(500)
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
