package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newEngine(cfg AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	g.Use(BearerAuth(cfg))
	g.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	g.GET("/api/v1/agents", func(c *gin.Context) { c.String(http.StatusOK, "agents") })
	return g
}

func do(g *gin.Engine, path, remote, auth string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remote
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w.Code
}

func TestBearerAuth(t *testing.T) {
	const remote = "203.0.113.7:5555"
	const local = "127.0.0.1:5555"

	tests := []struct {
		name   string
		cfg    AuthConfig
		path   string
		remote string
		auth   string
		want   int
	}{
		{name: "disabled", cfg: AuthConfig{}, path: "/api/v1/agents", remote: remote, want: http.StatusOK},
		{name: "valid token", cfg: AuthConfig{Token: "s3cret"}, path: "/api/v1/agents", remote: remote, auth: "Bearer s3cret", want: http.StatusOK},
		{name: "wrong token", cfg: AuthConfig{Token: "s3cret"}, path: "/api/v1/agents", remote: remote, auth: "Bearer nope", want: http.StatusUnauthorized},
		{name: "wrong scheme", cfg: AuthConfig{Token: "s3cret"}, path: "/api/v1/agents", remote: remote, auth: "Basic s3cret", want: http.StatusUnauthorized},
		{name: "missing header", cfg: AuthConfig{Token: "s3cret"}, path: "/api/v1/agents", remote: remote, want: http.StatusUnauthorized},
		{name: "healthz is public", cfg: AuthConfig{Token: "s3cret"}, path: "/healthz", remote: remote, want: http.StatusOK},
		{name: "loopback allowed", cfg: AuthConfig{Token: "s3cret", AllowLocal: true}, path: "/api/v1/agents", remote: local, want: http.StatusOK},
		{name: "ipv6 loopback allowed", cfg: AuthConfig{Token: "s3cret", AllowLocal: true}, path: "/api/v1/agents", remote: "[::1]:5555", want: http.StatusOK},
		{name: "loopback not allowed", cfg: AuthConfig{Token: "s3cret"}, path: "/api/v1/agents", remote: local, want: http.StatusUnauthorized},
		{name: "remote with allow local", cfg: AuthConfig{Token: "s3cret", AllowLocal: true}, path: "/api/v1/agents", remote: remote, want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, do(newEngine(tt.cfg), tt.path, tt.remote, tt.auth))
		})
	}
}
