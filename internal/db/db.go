// Package db manages the PostgreSQL connection pool and schema used for
// search history.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/news-scan-ai/visual-search-gateway/internal/config"
)

// Schema creates the search history table and its indexes. It is idempotent.
const Schema = `
CREATE SCHEMA IF NOT EXISTS visual_search;

CREATE TABLE IF NOT EXISTS visual_search.search_history (
	id UUID PRIMARY KEY,
	filename TEXT NOT NULL,
	content_type VARCHAR(255) NOT NULL DEFAULT '',
	image_size BIGINT NOT NULL DEFAULT 0,
	image_sha256 CHAR(64),
	mode VARCHAR(10) NOT NULL,
	status VARCHAR(32) NOT NULL,
	http_status INTEGER NOT NULL,
	result_count INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_search_history_created_at
	ON visual_search.search_history (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_search_history_status
	ON visual_search.search_history (status);
CREATE INDEX IF NOT EXISTS idx_search_history_image_sha256
	ON visual_search.search_history (image_sha256);
`

// NewPool creates a PostgreSQL connection pool from the history configuration
// and verifies it with a ping.
func NewPool(ctx context.Context, cfg config.HistoryConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		poolConfig.MinConns = int32(cfg.MinConnections)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	}
	if cfg.MaxIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxIdleTime
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

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection pool gracefully.
func Close(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}
