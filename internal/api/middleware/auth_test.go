package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voice-memo/backend/internal/auth"
)

func requestWithRole(role string) *http.Request {
	r := httptest.NewRequest(http.MethodDelete, "/api/recordings/r1", nil)
	if role == "" {
		return r
	}
	claims := &auth.Claims{UserID: 1, Username: "someone", Role: role}
	return r.WithContext(context.WithValue(r.Context(), UserClaimsKey, claims))
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		wantStatus int
		wantNext   bool
	}{
		{"matching role passes through", "admin", http.StatusOK, true},
		{"other role is forbidden", "user", http.StatusForbidden, false},
		{"missing claims is unauthorized", "", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			handler := RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				nextCalled = true
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, requestWithRole(tt.role))

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if nextCalled != tt.wantNext {
				t.Errorf("next called = %v, want %v", nextCalled, tt.wantNext)
			}
		})
	}
}

func TestAuthMiddlewarePopulatesClaims(t *testing.T) {
	svc := auth.NewJWTService("test-secret")
	token, err := svc.GenerateToken(7, "admin", "admin")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	var got *auth.Claims
	handler := AuthMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetClaims(r)
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/recordings", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, r)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got == nil || got.Username != "admin" || got.Role != "admin" {
		t.Fatalf("claims = %+v", got)
	}
}

func TestAuthMiddlewareRejectsBadHeader(t *testing.T) {
	svc := auth.NewJWTService("test-secret")
	handler := AuthMiddleware(svc)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next handler must not run")
	}))

	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		r := httptest.NewRequest(http.MethodGet, "/api/recordings", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, r)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rr.Code)
		}
	}
}
