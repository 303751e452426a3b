package service

import (
	"context"
	"sync"
	"time"

	"github.com/news-scan-ai/visual-search-gateway/internal/db"
	"github.com/news-scan-ai/visual-search-gateway/internal/metrics"
	"github.com/news-scan-ai/visual-search-gateway/internal/models"
	"github.com/news-scan-ai/visual-search-gateway/pkg/logger"
	"go.uber.org/zap"
)

const auditTimeout = 5 * time.Second

// HistoryStore persists finished searches.
type HistoryStore interface {
	SaveSearch(ctx context.Context, record *models.SearchRecord) error
}

// EventPublisher announces finished searches.
type EventPublisher interface {
	PublishSearchCompleted(ctx context.Context, event *models.SearchCompletedEvent) error
}

// AuditService records finished searches in the optional history store and
// event stream. Sinks run in the background so they never delay a response;
// failures are logged and never surface to the caller.
type AuditService struct {
	history   HistoryStore
	publisher EventPublisher
	metrics   *metrics.Metrics
	pending   sync.WaitGroup
}

// NewAuditService creates an AuditService. Either sink may be nil.
func NewAuditService(history HistoryStore, publisher EventPublisher, m *metrics.Metrics) *AuditService {
	return &AuditService{
		history:   history,
		publisher: publisher,
		metrics:   m,
	}
}

// Record counts one finished search and hands it to the sinks. results is
// nil unless the search responded successfully. record must not be modified
// after the call.
func (a *AuditService) Record(ctx context.Context, record *models.SearchRecord, results []models.CanonicalResult) {
	resultCount := -1
	if record.Status == models.SearchStatusResponded {
		resultCount = record.ResultCount
	}
	a.metrics.ObserveSearch(string(record.Mode), string(record.Status), resultCount)

	if a.history == nil && a.publisher == nil {
		return
	}

	// The request context is cancelled once the response is written.
	ctx = context.WithoutCancel(ctx)

	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		a.persist(ctx, record, results)
	}()
}

// Wait blocks until all in-flight sink writes have finished.
func (a *AuditService) Wait() {
	a.pending.Wait()
}

func (a *AuditService) persist(ctx context.Context, record *models.SearchRecord, results []models.CanonicalResult) {
	ctx, cancel := context.WithTimeout(ctx, auditTimeout)
	defer cancel()

	if a.history != nil {
		err := a.history.SaveSearch(ctx, record)
		switch {
		case db.IsDuplicateKey(err):
			// Already recorded and announced.
			logger.Log.Warn("Search already in history, skipping event",
				zap.String("searchId", record.ID.String()),
			)
			return
		case err != nil:
			logger.Log.Error("Failed to save search history",
				zap.Error(err),
				zap.String("searchId", record.ID.String()),
			)
		}
	}

	if a.publisher != nil {
		event := &models.SearchCompletedEvent{
			SearchID:    record.ID,
			Mode:        record.Mode,
			Status:      record.Status,
			HTTPStatus:  record.HTTPStatus,
			ResultCount: record.ResultCount,
			VideoIDs:    videoIDs(results),
			CompletedAt: record.CreatedAt.Add(time.Duration(record.DurationMs) * time.Millisecond),
		}
		if err := a.publisher.PublishSearchCompleted(ctx, event); err != nil {
			logger.Log.Error("Failed to publish search event",
				zap.Error(err),
				zap.String("searchId", record.ID.String()),
			)
		}
	}
}

func videoIDs(results []models.CanonicalResult) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		if r.VideoID != nil {
			ids = append(ids, *r.VideoID)
		}
	}
	return ids
}
