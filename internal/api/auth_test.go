package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareDisabled(t *testing.T) {
	h := authMiddleware("", okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("no token configured: status = %d, want 200", rec.Code)
	}
}

func TestAuthMiddlewareToken(t *testing.T) {
	h := authMiddleware("secret-token", okHandler())

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"valid token", "/ws", "Bearer secret-token", http.StatusOK},
		{"wrong token", "/ws", "Bearer wrong", http.StatusUnauthorized},
		{"missing header", "/ws", "", http.StatusUnauthorized},
		{"not bearer", "/ws", "Basic secret-token", http.StatusUnauthorized},
		{"health open", "/health", "", http.StatusOK},
		{"ready open", "/ready", "", http.StatusOK},
		{"metrics open", "/metrics", "", http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
