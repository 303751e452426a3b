package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/news-scan-ai/visual-search-gateway/internal/db"
	"github.com/news-scan-ai/visual-search-gateway/internal/models"
	"github.com/news-scan-ai/visual-search-gateway/pkg/logger"
	"go.uber.org/zap"
)

// HistoryReader reads stored searches.
type HistoryReader interface {
	GetSearchByID(ctx context.Context, id uuid.UUID) (*models.SearchRecord, error)
	ListRecentSearches(ctx context.Context, limit int) ([]models.SearchRecord, error)
}

// HistoryHandler exposes the search history.
type HistoryHandler struct {
	history HistoryReader
}

// NewHistoryHandler creates a new HistoryHandler instance.
func NewHistoryHandler(history HistoryReader) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// ListSearches returns the most recent searches, newest first.
func (h *HistoryHandler) ListSearches(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "limit must be an integer"})
			return
		}
		limit = n
	}

	records, err := h.history.ListRecentSearches(c.Request.Context(), limit)
	if err != nil {
		logger.Log.Error("Failed to list searches", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list searches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"searches": records,
		"count":    len(records),
	})
}

// GetSearch returns one stored search.
func (h *HistoryHandler) GetSearch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid search id"})
		return
	}

	record, err := h.history.GetSearchByID(c.Request.Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "search not found"})
			return
		}
		logger.Log.Error("Failed to get search",
			zap.Error(err),
			zap.String("searchId", id.String()),
		)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get search"})
		return
	}

	c.JSON(http.StatusOK, record)
}
