package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gw-fund-subscriptions/internal/metrics"
	"gw-fund-subscriptions/internal/service"
	"gw-fund-subscriptions/internal/storages"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(ctx context.Context) error {
	return p.err
}

type stubService struct{}

func (stubService) ListFunds(ctx context.Context) ([]storages.Fund, error) {
	return []storages.Fund{}, nil
}

func (stubService) Subscribe(ctx context.Context, req *service.SubscribeRequest) (*service.SubscriptionResult, error) {
	return &service.SubscriptionResult{}, nil
}

func (stubService) RecordTransaction(ctx context.Context, req *service.TransactionRequest) (*storages.Transaction, error) {
	return &storages.Transaction{}, nil
}

func (stubService) ListTransactions(ctx context.Context, user string) ([]storages.Transaction, error) {
	return nil, nil
}

func newTestRouter(pinger Pinger) *gin.Engine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return SetupRouter(stubService{}, pinger, metrics.New(prometheus.NewRegistry()), logger, gin.TestMode)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"store available", nil, http.StatusOK},
		{"store down", errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubPinger{err: tt.err})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.status {
				t.Errorf("Expected %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(&stubPinger{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fondos", nil))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_request_duration_seconds") {
		t.Error("Expected request duration histogram in metrics output")
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := WithCORS(newTestRouter(&stubPinger{}), []string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodOptions, "/subscribe", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Expected allowed origin header, got %q", got)
	}
}
