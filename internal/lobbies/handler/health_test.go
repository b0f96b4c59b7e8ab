package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/julienschmidt/httprouter"

	kafka_middleware "huddle/pkg/kafka/middleware"
	"huddle/pkg/logger"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name        string
		ping        error
		metrics     *kafka_middleware.Metrics
		wantStatus  int
		wantState   string
		wantJournal bool
	}{
		{
			name:       "store reachable",
			wantStatus: http.StatusOK,
			wantState:  "ready",
		},
		{
			name:        "journal metrics included",
			metrics:     kafka_middleware.NewMetrics(),
			wantStatus:  http.StatusOK,
			wantState:   "ready",
			wantJournal: true,
		},
		{
			name:       "store down",
			ping:       errors.New("connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := pingerFunc(func(context.Context) error { return tt.ping })
			router := httprouter.New()
			NewHealthHandler(store, tt.metrics, logger.Discard()).RegisterRoutes(router)

			rec := serve(router, http.MethodGet, "/ready", "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Status != tt.wantState {
				t.Errorf("status = %s, want %s", body.Status, tt.wantState)
			}
			if (body.Journal != nil) != tt.wantJournal {
				t.Errorf("journal = %+v, want present = %v", body.Journal, tt.wantJournal)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	router := httprouter.New()
	NewHealthHandler(pingerFunc(func(context.Context) error { return nil }), nil, logger.Discard()).RegisterRoutes(router)

	rec := serve(router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
