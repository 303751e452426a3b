//go:build integration
// +build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/news-scan-ai/visual-search-gateway/internal/db"
	"github.com/news-scan-ai/visual-search-gateway/internal/db/testutil"
	"github.com/news-scan-ai/visual-search-gateway/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(status models.SearchStatus, createdAt time.Time) *models.SearchRecord {
	return &models.SearchRecord{
		ID:          uuid.New(),
		Filename:    "frame.png",
		ContentType: "image/png",
		ImageSize:   2048,
		ImageSHA256: db.ContentHash([]byte("frame")),
		Mode:        models.SearchModeLive,
		Status:      status,
		HTTPStatus:  200,
		ResultCount: 3,
		DurationMs:  87,
		CreatedAt:   createdAt.UTC().Truncate(time.Microsecond),
	}
}

func TestRepository_SaveAndGetSearch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	tdb := testutil.SetupTestDatabase(t)
	repo := New(tdb.Pool)
	ctx := context.Background()

	require.NoError(t, repo.Ping(ctx))

	record := newRecord(models.SearchStatusResponded, time.Now())
	require.NoError(t, repo.SaveSearch(ctx, record))

	got, err := repo.GetSearchByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Filename, got.Filename)
	assert.Equal(t, record.Mode, got.Mode)
	assert.Equal(t, record.Status, got.Status)
	assert.Equal(t, record.ResultCount, got.ResultCount)
	assert.Nil(t, got.Error)
	assert.Equal(t, record.ImageSHA256, got.ImageSHA256)
	assert.True(t, record.CreatedAt.Equal(got.CreatedAt))

	err = repo.SaveSearch(ctx, record)
	assert.True(t, db.IsDuplicateKey(err), "second insert with same ID should be a duplicate, got %v", err)

	_, err = repo.GetSearchByID(ctx, uuid.New())
	assert.True(t, db.IsNotFound(err), "unknown ID should be not found, got %v", err)
}

func TestRepository_SaveSearchWithError(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	tdb := testutil.SetupTestDatabase(t)
	repo := New(tdb.Pool)
	ctx := context.Background()

	msg := "upstream returned status 503"
	record := newRecord(models.SearchStatusUpstreamFailure, time.Now())
	record.HTTPStatus = 502
	record.ResultCount = 0
	record.Error = &msg

	require.NoError(t, repo.SaveSearch(ctx, record))

	got, err := repo.GetSearchByID(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Error)
	assert.Equal(t, msg, *got.Error)
	assert.Equal(t, 502, got.HTTPStatus)
}

func TestRepository_ListRecentSearches(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	tdb := testutil.SetupTestDatabase(t)
	repo := New(tdb.Pool)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		rec := newRecord(models.SearchStatusResponded, base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, rec.ID)
		require.NoError(t, repo.SaveSearch(ctx, rec))
	}

	got, err := repo.ListRecentSearches(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ids[4], got[0].ID)
	assert.Equal(t, ids[3], got[1].ID)
	assert.Equal(t, ids[2], got[2].ID)

	tdb.Truncate(t)
	got, err = repo.ListRecentSearches(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
