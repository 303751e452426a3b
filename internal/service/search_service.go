// Package service provides the search dispatching and auditing logic.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/news-scan-ai/visual-search-gateway/internal/config"
	"github.com/news-scan-ai/visual-search-gateway/internal/metrics"
	"github.com/news-scan-ai/visual-search-gateway/internal/models"
	"github.com/news-scan-ai/visual-search-gateway/internal/normalizer"
	"github.com/news-scan-ai/visual-search-gateway/internal/upstream"
	"github.com/news-scan-ai/visual-search-gateway/pkg/logger"
	"go.uber.org/zap"
)

// Upstream is the live search backend.
type Upstream interface {
	Invoke(ctx context.Context, image *models.ImageUpload) ([]map[string]any, error)
}

// SearchService decides per request between mock and live search and
// normalizes whatever raw results come back.
type SearchService struct {
	cfg      config.SearchConfig
	upstream Upstream
	metrics  *metrics.Metrics
}

// NewSearchService creates a SearchService. When up is nil and cfg selects
// live mode with a complete configuration, an upstream.Client is built from cfg.
func NewSearchService(cfg config.SearchConfig, up Upstream, m *metrics.Metrics) *SearchService {
	if up == nil && !cfg.UseMock() && len(cfg.MissingLiveSettings()) == 0 {
		up = upstream.NewClient(cfg.Endpoint, cfg.APIKey, cfg.Timeout)
	}
	return &SearchService{
		cfg:      cfg,
		upstream: up,
		metrics:  m,
	}
}

// Mode reports which mode requests are served in.
func (s *SearchService) Mode() models.SearchMode {
	if s.cfg.UseMock() {
		return models.SearchModeMock
	}
	return models.SearchModeLive
}

// Search runs one search. Errors are *ConfigError, *upstream.StatusError or
// *upstream.TransportError.
func (s *SearchService) Search(ctx context.Context, image *models.ImageUpload) (*models.SearchOutcome, error) {
	mode := s.Mode()

	var raws []map[string]any
	if mode == models.SearchModeMock {
		raws = MockResults()
		logger.Log.Debug("Serving mock search results",
			zap.String("filename", image.Filename),
			zap.Int("count", len(raws)),
		)
	} else {
		// Checked before any network activity so the caller gets an actionable message.
		if missing := s.cfg.MissingLiveSettings(); len(missing) > 0 {
			return nil, &ConfigError{Missing: missing}
		}
		if s.upstream == nil {
			return nil, &ConfigError{Missing: []string{"upstream client"}}
		}

		start := time.Now()
		var err error
		raws, err = s.upstream.Invoke(ctx, image)
		s.metrics.ObserveUpstream(upstreamOutcome(err), time.Since(start))
		if err != nil {
			return nil, err
		}

		logger.Log.Info("Upstream search completed",
			zap.String("filename", image.Filename),
			zap.Int("rawResults", len(raws)),
			zap.Duration("duration", time.Since(start)),
		)
	}

	return &models.SearchOutcome{
		Mode:    mode,
		Results: normalizer.NormalizeAll(raws),
	}, nil
}

func upstreamOutcome(err error) string {
	var statusErr *upstream.StatusError
	var transportErr *upstream.TransportError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &statusErr):
		return "upstream_failure"
	case errors.As(err, &transportErr):
		return "transport_failure"
	default:
		return "error"
	}
}
