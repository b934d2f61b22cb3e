package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func authRouter(keys []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(keys))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		header     string
		value      string
		wantStatus int
	}{
		{"no keys configured is open", nil, "", "", http.StatusOK},
		{"missing key", []string{"k1"}, "", "", http.StatusUnauthorized},
		{"valid x-api-key", []string{"k1"}, "X-API-Key", "k1", http.StatusOK},
		{"valid bearer", []string{"k1"}, "Authorization", "Bearer k1", http.StatusOK},
		{"wrong key", []string{"k1"}, "X-API-Key", "nope", http.StatusUnauthorized},
		{"bearer without prefix", []string{"k1"}, "Authorization", "k1", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := authRouter(tt.keys)
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
