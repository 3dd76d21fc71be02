package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestSessionAuth_RoundTrip(t *testing.T) {
	auth := NewSessionAuth("test-secret", time.Hour)
	id := uuid.New()

	token, expiresAt, err := auth.GenerateSessionToken(id)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected expiry in the future")
	}

	got, err := auth.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != id {
		t.Fatalf("expected %s, got %s", id, got)
	}

	other := NewSessionAuth("other-secret", time.Hour)
	if _, err := other.ParseToken(token); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
}

func TestSessionAuth_Middleware(t *testing.T) {
	auth := NewSessionAuth("test-secret", time.Hour)
	id := uuid.New()
	token, _, _ := auth.GenerateSessionToken(id)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": id.String(),
		"exp":        time.Now().Add(-time.Minute).Unix(),
	})
	expiredStr, _ := expired.SignedString(auth.Secret)

	var seen uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSessionID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := auth.Middleware(next)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + token, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"expired", "Bearer " + expiredStr, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = uuid.Nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/quiz", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d (%s)", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status == http.StatusNoContent && seen != id {
				t.Fatalf("expected session id in context")
			}
		})
	}
}

func TestRateLimiter_FixedWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if do("10.0.0.1:1111") != http.StatusOK || do("10.0.0.1:2222") != http.StatusOK {
		t.Fatalf("expected first two requests to pass")
	}
	if code := do("10.0.0.1:3333"); code != http.StatusTooManyRequests {
		t.Fatalf("expected third request from same host to be limited, got %d", code)
	}
	if code := do("10.0.0.2:1111"); code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", code)
	}

	now = now.Add(time.Minute)
	if code := do("10.0.0.1:4444"); code != http.StatusOK {
		t.Fatalf("expected new window to pass, got %d", code)
	}
}

func TestRequestID(t *testing.T) {
	var got string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(RequestIDHeader)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if got == "" || rec.Header().Get(RequestIDHeader) != got {
		t.Fatalf("expected generated request id to be echoed")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got != "abc" || rec.Header().Get(RequestIDHeader) != "abc" {
		t.Fatalf("expected incoming request id to be kept")
	}
}
