// Package repository provides database operations for search history.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/news-scan-ai/visual-search-gateway/internal/db"
	"github.com/news-scan-ai/visual-search-gateway/internal/models"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Repository handles all database operations for search history.
type Repository struct {
	db *pgxpool.Pool
}

// New creates a new Repository instance with the provided database connection pool.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Ping verifies database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// SaveSearch inserts one finished search.
func (r *Repository) SaveSearch(ctx context.Context, record *models.SearchRecord) error {
	query := `
		INSERT INTO visual_search.search_history
		(id, filename, content_type, image_size, image_sha256, mode, status, http_status, result_count, error_message, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		record.ID, record.Filename, record.ContentType, record.ImageSize, record.ImageSHA256,
		string(record.Mode), string(record.Status), record.HTTPStatus, record.ResultCount,
		record.Error, record.DurationMs, record.CreatedAt,
	)
	return db.WrapError(err, "save search")
}

// GetSearchByID retrieves a search by its ID.
func (r *Repository) GetSearchByID(ctx context.Context, id uuid.UUID) (*models.SearchRecord, error) {
	query := `
		SELECT id, filename, content_type, image_size, COALESCE(image_sha256, ''), mode, status, http_status,
		       result_count, error_message, duration_ms, created_at
		FROM visual_search.search_history
		WHERE id = $1
	`
	var rec models.SearchRecord
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.Filename, &rec.ContentType, &rec.ImageSize, &rec.ImageSHA256, &rec.Mode, &rec.Status,
		&rec.HTTPStatus, &rec.ResultCount, &rec.Error, &rec.DurationMs, &rec.CreatedAt,
	)
	if err != nil {
		return nil, db.WrapError(err, "get search")
	}
	return &rec, nil
}

// ListRecentSearches returns the most recent searches, newest first.
func (r *Repository) ListRecentSearches(ctx context.Context, limit int) ([]models.SearchRecord, error) {
	query := `
		SELECT id, filename, content_type, image_size, COALESCE(image_sha256, ''), mode, status, http_status,
		       result_count, error_message, duration_ms, created_at
		FROM visual_search.search_history
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, ClampLimit(limit))
	if err != nil {
		return nil, db.WrapError(err, "list searches")
	}
	defer rows.Close()

	records := []models.SearchRecord{}
	for rows.Next() {
		var rec models.SearchRecord
		if err := rows.Scan(
			&rec.ID, &rec.Filename, &rec.ContentType, &rec.ImageSize, &rec.ImageSHA256, &rec.Mode, &rec.Status,
			&rec.HTTPStatus, &rec.ResultCount, &rec.Error, &rec.DurationMs, &rec.CreatedAt,
		); err != nil {
			return nil, db.WrapError(err, "scan search")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "list searches")
	}
	return records, nil
}

// ClampLimit bounds a caller supplied page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
