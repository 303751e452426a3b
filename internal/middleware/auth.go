// Package middleware provides gin middleware for the HTTP server.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/news-scan-ai/visual-search-gateway/internal/models"
	"github.com/news-scan-ai/visual-search-gateway/pkg/logger"
	"go.uber.org/zap"
)

const (
	headerAPIKey      = "X-API-Key"
	headerAuth        = "Authorization"
	bearerPrefix      = "Bearer "
	unauthorizedError = "Unauthorized"
)

// APIKeyAuth guards the API routes with static API keys.
type APIKeyAuth struct {
	apiKeys [][]byte
}

// NewAPIKeyAuth creates API key authentication. Empty keys are ignored.
func NewAPIKeyAuth(apiKeys []string) *APIKeyAuth {
	keys := make([][]byte, 0, len(apiKeys))
	for _, key := range apiKeys {
		key = strings.TrimSpace(key)
		if key != "" {
			keys = append(keys, []byte(key))
		}
	}
	return &APIKeyAuth{apiKeys: keys}
}

// Enabled reports whether any key is configured.
func (a *APIKeyAuth) Enabled() bool {
	return len(a.apiKeys) > 0
}

// Middleware rejects requests without a valid key in X-API-Key or an
// Authorization bearer header. With no keys configured every request passes.
func (a *APIKeyAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Enabled() {
			c.Next()
			return
		}

		if !a.isValidAPIKey(extractAPIKey(c)) {
			logger.Log.Warn("Unauthorized request",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.String("clientIp", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: unauthorizedError})
			return
		}

		c.Next()
	}
}

func extractAPIKey(c *gin.Context) string {
	if apiKey := c.GetHeader(headerAPIKey); apiKey != "" {
		return apiKey
	}

	authHeader := c.GetHeader(headerAuth)
	if strings.HasPrefix(authHeader, bearerPrefix) {
		return strings.TrimPrefix(authHeader, bearerPrefix)
	}

	return ""
}

// isValidAPIKey compares in constant time against every configured key.
func (a *APIKeyAuth) isValidAPIKey(providedKey string) bool {
	if providedKey == "" {
		return false
	}

	provided := []byte(providedKey)
	valid := false
	for _, key := range a.apiKeys {
		if subtle.ConstantTimeCompare(provided, key) == 1 {
			valid = true
		}
	}
	return valid
}
