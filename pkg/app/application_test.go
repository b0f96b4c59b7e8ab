package app

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"huddle/pkg/client"
	"huddle/pkg/config"
	"huddle/pkg/contracts"
	"huddle/pkg/logger"
)

func reply(body string) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		_, _ = w.Write([]byte(body))
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func testConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1024,
		ReadTimeout:       time.Second,
		WriteTimeout:      time.Second,
		IdleTimeout:       time.Second,
		ShutdownTimeout:   time.Second,
		Log:               logger.Discard(),
		Client:            client.NewClient(),
	}
}

func newTestApplication(t *testing.T, closers ...io.Closer) *Application {
	t.Helper()

	health := contracts.RoutesFunc(func(r *httprouter.Router) {
		r.GET("/health", reply("health"))
		r.GET("/ready", reply("ready"))
	})
	lobbies := contracts.RoutesFunc(func(r *httprouter.Router) {
		r.GET("/api/v1/lobbies/:code", reply("snapshot"))
		r.POST("/api/v1/lobbies", reply("created"))
	})
	events := contracts.RoutesFunc(func(r *httprouter.Router) {
		r.GET("/api/v1/lobbies/:code/events", reply("stream"))
	})

	a := NewApplication(testConfig())
	a.SetApp(health, lobbies, events, closers...)
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	return a
}

func TestApplication_Routing(t *testing.T) {
	a := newTestApplication(t)

	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
		wantStatus  int
		wantBody    string
	}{
		{name: "health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK, wantBody: "health"},
		{name: "ready", method: http.MethodGet, path: "/ready", wantStatus: http.StatusOK, wantBody: "ready"},
		{name: "event stream", method: http.MethodGet, path: "/api/v1/lobbies/ABC234/events", wantStatus: http.StatusOK, wantBody: "stream"},
		{name: "snapshot", method: http.MethodGet, path: "/api/v1/lobbies/ABC234", wantStatus: http.StatusOK, wantBody: "snapshot"},
		{
			name:        "json write",
			method:      http.MethodPost,
			path:        "/api/v1/lobbies",
			contentType: "application/json",
			body:        `{"name":"x"}`,
			wantStatus:  http.StatusOK,
			wantBody:    "created",
		},
		{
			name:        "write without json goes through content type check",
			method:      http.MethodPost,
			path:        "/api/v1/lobbies",
			contentType: "text/plain",
			body:        "x",
			wantStatus:  http.StatusUnsupportedMediaType,
		},
		{
			name:       "oversized body rejected",
			method:     http.MethodPost,
			path:       "/api/v1/lobbies",
			body:       `{"name":"` + strings.Repeat("x", 2048) + `"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			} else if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			a.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestApplication_GracefulShutdownRunsClosers(t *testing.T) {
	var closed []string
	a := newTestApplication(t,
		closerFunc(func() error { closed = append(closed, "broker"); return nil }),
		closerFunc(func() error { closed = append(closed, "journal"); return errors.New("flush failed") }),
	)

	a.gracefulShutdown()

	if len(closed) != 2 || closed[0] != "broker" || closed[1] != "journal" {
		t.Errorf("closers ran as %v, want [broker journal]", closed)
	}
}
