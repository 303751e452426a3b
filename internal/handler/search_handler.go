package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/news-scan-ai/visual-search-gateway/internal/db"
	"github.com/news-scan-ai/visual-search-gateway/internal/models"
	"github.com/news-scan-ai/visual-search-gateway/internal/service"
	"github.com/news-scan-ai/visual-search-gateway/internal/upstream"
	"github.com/news-scan-ai/visual-search-gateway/pkg/logger"
	"go.uber.org/zap"
)

const (
	imageField = "image"

	// HeaderSearchID carries the ID under which a search is logged, stored and published.
	HeaderSearchID = "X-Search-ID"
)

var (
	errNoImage       = errors.New("no image file provided")
	errEmptyImage    = errors.New("no image file selected")
	errUnreadable    = errors.New("uploaded image could not be read")
	errImageTooLarge = errors.New("uploaded image is too large")
)

// Searcher runs a search for one uploaded image.
type Searcher interface {
	Mode() models.SearchMode
	Search(ctx context.Context, image *models.ImageUpload) (*models.SearchOutcome, error)
}

// Auditor records finished searches.
type Auditor interface {
	Record(ctx context.Context, record *models.SearchRecord, results []models.CanonicalResult)
}

// SearchHandler serves the image search endpoint.
type SearchHandler struct {
	searcher       Searcher
	auditor        Auditor
	maxUploadBytes int64
}

// NewSearchHandler creates a new SearchHandler instance. auditor may be nil.
// A maxUploadBytes of zero or less disables the upload size limit.
func NewSearchHandler(searcher Searcher, auditor Auditor, maxUploadBytes int64) *SearchHandler {
	return &SearchHandler{
		searcher:       searcher,
		auditor:        auditor,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleSearch accepts a multipart upload with an "image" part and answers
// with the normalized search results.
func (h *SearchHandler) HandleSearch(c *gin.Context) {
	start := time.Now()
	record := &models.SearchRecord{
		ID:        uuid.New(),
		Mode:      h.searcher.Mode(),
		CreatedAt: start.UTC(),
	}
	c.Header(HeaderSearchID, record.ID.String())

	var results []models.CanonicalResult
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("Panic while handling search",
				zap.Any("panic", r),
				zap.String("searchId", record.ID.String()),
				zap.Stack("stack"),
			)
			results = nil
			h.fail(c, record, http.StatusInternalServerError, models.SearchStatusInternalError,
				"Internal server error", nil, fmt.Errorf("panic: %v", r))
		}
		record.DurationMs = time.Since(start).Milliseconds()
		if h.auditor != nil {
			h.auditor.Record(c.Request.Context(), record, results)
		}
	}()

	image, err := h.readImage(c)
	if err != nil {
		logger.Log.Warn("Rejected search request",
			zap.Error(err),
			zap.String("searchId", record.ID.String()),
			zap.String("path", c.Request.URL.Path),
		)
		h.fail(c, record, http.StatusBadRequest, models.SearchStatusNoImage, err.Error(), nil, err)
		return
	}
	record.Filename = image.Filename
	record.ContentType = image.ContentType
	record.ImageSize = image.Size()
	record.ImageSHA256 = db.ContentHash(image.Data)

	// A client disconnect does not abort the upstream call; the transport
	// timeout still bounds it.
	outcome, err := h.searcher.Search(context.WithoutCancel(c.Request.Context()), image)
	if err != nil {
		h.handleError(c, record, err)
		return
	}

	results = outcome.Results
	record.Mode = outcome.Mode
	record.Status = models.SearchStatusResponded
	record.HTTPStatus = http.StatusOK
	record.ResultCount = len(outcome.Results)

	logger.Log.Info("Search completed",
		zap.String("searchId", record.ID.String()),
		zap.String("mode", string(outcome.Mode)),
		zap.String("filename", image.Filename),
		zap.Int("results", len(outcome.Results)),
	)

	c.JSON(http.StatusOK, models.SearchResponseDTO{Results: outcome.Results})
}

func (h *SearchHandler) readImage(c *gin.Context) (*models.ImageUpload, error) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fileHeader, err := c.FormFile(imageField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: limit is %d bytes", errImageTooLarge, maxErr.Limit)
		}
		return nil, errNoImage
	}
	if fileHeader.Filename == "" {
		return nil, errEmptyImage
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, errUnreadable
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errUnreadable
	}

	return &models.ImageUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *SearchHandler) handleError(c *gin.Context, record *models.SearchRecord, err error) {
	var configErr *service.ConfigError
	var statusErr *upstream.StatusError
	var transportErr *upstream.TransportError

	switch {
	case errors.As(err, &configErr):
		logger.Log.Error("Live search is not configured",
			zap.Strings("missing", configErr.Missing),
			zap.String("searchId", record.ID.String()),
		)
		h.fail(c, record, http.StatusInternalServerError, models.SearchStatusConfigError,
			configErr.Error(), configErr.Missing, err)
	case errors.As(err, &statusErr):
		logger.Log.Warn("Upstream search failed",
			zap.Int("upstreamStatus", statusErr.StatusCode),
			zap.String("searchId", record.ID.String()),
		)
		h.fail(c, record, http.StatusBadGateway, models.SearchStatusUpstreamFailure,
			fmt.Sprintf("Upstream search service returned status %d", statusErr.StatusCode), statusErr.Body, err)
	case errors.As(err, &transportErr):
		logger.Log.Error("Upstream search unreachable",
			zap.Error(err),
			zap.String("searchId", record.ID.String()),
		)
		h.fail(c, record, http.StatusInternalServerError, models.SearchStatusTransportFailure,
			"Upstream search service request failed", transportErr.Message, err)
	default:
		logger.Log.Error("Unexpected search error",
			zap.Error(err),
			zap.String("searchId", record.ID.String()),
		)
		h.fail(c, record, http.StatusInternalServerError, models.SearchStatusInternalError,
			"Internal server error", nil, err)
	}
}

func (h *SearchHandler) fail(c *gin.Context, record *models.SearchRecord, code int,
	status models.SearchStatus, message string, details any, cause error) {
	record.Status = status
	record.HTTPStatus = code
	record.ResultCount = 0
	if cause != nil {
		msg := cause.Error()
		record.Error = &msg
	}

	if c.Writer.Written() {
		return
	}
	c.JSON(code, models.ErrorResponse{
		Error:   message,
		Details: details,
	})
}
