package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/news-scan-ai/visual-search-gateway/internal/models"
)

type stubPinger struct{ err error }

func (s *stubPinger) Ping(context.Context) error { return s.err }

type stubReporter struct{ healthy bool }

func (s *stubReporter) IsHealthy() bool { return s.healthy }

func TestNewHealthHandler(t *testing.T) {
	handler := NewHealthHandler(nil, nil, models.SearchModeMock)

	if handler == nil {
		t.Fatal("NewHealthHandler() returned nil")
	}
}

func TestHealthHandler_LivenessProbe(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewHealthHandler(nil, nil, models.SearchModeMock)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/health/live", nil)

	handler.LivenessProbe(c)

	if w.Code != http.StatusOK {
		t.Errorf("LivenessProbe() status = %d, want %d", w.Code, http.StatusOK)
	}

	// Check response contains status
	body := w.Body.String()
	if body == "" {
		t.Error("LivenessProbe() returned empty body")
	}
}

func TestHealthHandler_ReadinessProbe(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name         string
		history      Pinger
		publisher    HealthReporter
		wantCode     int
		wantDatabase string
		wantRabbitMQ string
	}{
		{
			name:         "no optional dependencies",
			wantCode:     http.StatusOK,
			wantDatabase: "disabled",
			wantRabbitMQ: "disabled",
		},
		{
			name:         "all healthy",
			history:      &stubPinger{},
			publisher:    &stubReporter{healthy: true},
			wantCode:     http.StatusOK,
			wantDatabase: "healthy",
			wantRabbitMQ: "healthy",
		},
		{
			name:         "database down",
			history:      &stubPinger{err: errors.New("connection refused")},
			publisher:    &stubReporter{healthy: true},
			wantCode:     http.StatusServiceUnavailable,
			wantDatabase: "unhealthy",
			wantRabbitMQ: "disabled",
		},
		{
			name:         "rabbitmq down",
			history:      &stubPinger{},
			publisher:    &stubReporter{healthy: false},
			wantCode:     http.StatusServiceUnavailable,
			wantDatabase: "healthy",
			wantRabbitMQ: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.history, tt.publisher, models.SearchModeLive)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/health/ready", nil)

			handler.ReadinessProbe(c)

			if w.Code != tt.wantCode {
				t.Errorf("ReadinessProbe() status = %d, want %d", w.Code, tt.wantCode)
			}

			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body["database"] != tt.wantDatabase {
				t.Errorf("database = %v, want %s", body["database"], tt.wantDatabase)
			}
			if body["rabbitmq"] != tt.wantRabbitMQ {
				t.Errorf("rabbitmq = %v, want %s", body["rabbitmq"], tt.wantRabbitMQ)
			}
			if body["mode"] != "live" {
				t.Errorf("mode = %v, want live", body["mode"])
			}
		})
	}
}
