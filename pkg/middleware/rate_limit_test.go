package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"huddle/pkg/logger"
)

func TestClientRateLimiter_Allow(t *testing.T) {
	limiter := NewClientRateLimiter(2, time.Minute)
	defer limiter.Stop()

	clock := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	ctx := context.Background()
	if !limiter.Allow(ctx, "a") || !limiter.Allow(ctx, "a") {
		t.Fatal("first two requests should be allowed")
	}
	if limiter.Allow(ctx, "a") {
		t.Error("third request inside the window should be rejected")
	}
	if !limiter.Allow(ctx, "b") {
		t.Error("a different client has its own budget")
	}

	clock = clock.Add(time.Minute)
	if !limiter.Allow(ctx, "a") {
		t.Error("request after the window should be allowed")
	}
}

func TestClientRateLimiter_EmptyKeyAlwaysAllowed(t *testing.T) {
	limiter := NewClientRateLimiter(1, time.Minute)
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		if !limiter.Allow(context.Background(), "") {
			t.Fatalf("request %d with empty key was rejected", i)
		}
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewClientRateLimiter(1, time.Minute)
	defer limiter.Stop()

	handler := RateLimit(limiter, nil, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(participant string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/lobbies/ABC234", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		if participant != "" {
			req.Header.Set(ParticipantIDHeader, participant)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	tests := []struct {
		name        string
		participant string
		want        int
	}{
		{name: "first request from participant", participant: "p1", want: http.StatusNoContent},
		{name: "second request from participant", participant: "p1", want: http.StatusTooManyRequests},
		{name: "other participant on the same address", participant: "p2", want: http.StatusNoContent},
		{name: "anonymous request", want: http.StatusNoContent},
		{name: "second anonymous request", want: http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := send(tt.participant); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDefaultClientExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:40000"

	if got := DefaultClientExtractor(req); got != "ip:192.0.2.7" {
		t.Errorf("DefaultClientExtractor() = %q, want ip:192.0.2.7", got)
	}

	req.Header.Set(ParticipantIDHeader, "abc")
	if got := DefaultClientExtractor(req); got != "participant:abc" {
		t.Errorf("DefaultClientExtractor() = %q, want participant:abc", got)
	}
}
