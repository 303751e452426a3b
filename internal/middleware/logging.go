package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/news-scan-ai/visual-search-gateway/internal/metrics"
	"github.com/news-scan-ai/visual-search-gateway/internal/models"
	"github.com/news-scan-ai/visual-search-gateway/pkg/logger"
	"go.uber.org/zap"
)

const unmatchedRoute = "unmatched"

// RequestLogger writes one access log line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("clientIp", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Log.Error("Request failed", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Log.Warn("Request rejected", fields...)
		default:
			logger.Log.Info("Request handled", fields...)
		}
	}
}

// Metrics records request counts and latencies by route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// Recovery turns a panic into a generic JSON 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Log.Error("Recovered from panic",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	})
}
