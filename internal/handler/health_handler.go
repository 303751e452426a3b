// Package handler provides HTTP request handlers for the application.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/news-scan-ai/visual-search-gateway/internal/models"
)

// Pinger is implemented by the history repository.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReporter is implemented by the event publisher.
type HealthReporter interface {
	IsHealthy() bool
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	history   Pinger
	publisher HealthReporter
	mode      models.SearchMode
}

// NewHealthHandler creates a new HealthHandler instance. history and
// publisher are nil when the corresponding feature is disabled.
func NewHealthHandler(history Pinger, publisher HealthReporter, mode models.SearchMode) *HealthHandler {
	return &HealthHandler{
		history:   history,
		publisher: publisher,
		mode:      mode,
	}
}

// LivenessProbe checks if the application is running.
func (h *HealthHandler) LivenessProbe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "UP",
		"time":   time.Now(),
	})
}

// ReadinessProbe checks if the application is ready to serve traffic.
func (h *HealthHandler) ReadinessProbe(c *gin.Context) {
	ctx := c.Request.Context()

	body := gin.H{
		"status":   "UP",
		"mode":     h.mode,
		"database": "disabled",
		"rabbitmq": "disabled",
		"time":     time.Now(),
	}

	if h.history != nil {
		if err := h.history.Ping(ctx); err != nil {
			body["status"] = "DOWN"
			body["database"] = "unhealthy"
			body["error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["database"] = "healthy"
	}

	if h.publisher != nil {
		if !h.publisher.IsHealthy() {
			body["status"] = "DOWN"
			body["rabbitmq"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["rabbitmq"] = "healthy"
	}

	c.JSON(http.StatusOK, body)
}
