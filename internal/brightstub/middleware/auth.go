// Package middleware holds the gin middleware of brightstub.
package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/brightchat/internal/pkg/core"
	"github.com/kiosk404/brightchat/pkg/errorx"
)

// ErrUnauthorized is returned for a missing or wrong bearer token.
const ErrUnauthorized = 300003

func init() {
	errorx.MustRegister(errorx.NewCoder(ErrUnauthorized, http.StatusUnauthorized, "Missing or invalid bearer token"))
}

// AuthConfig configures bearer token checks.
type AuthConfig struct {
	// Token is the expected bearer token. Empty disables authentication.
	Token string

	// AllowLocal lets loopback clients through without a token.
	AllowLocal bool
}

// BearerAuth rejects requests that do not carry the configured bearer token.
// /healthz is always public.
func BearerAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Token == "" || c.Request.URL.Path == "/healthz" {
			c.Next()
			return
		}
		if cfg.AllowLocal && isLocalRequest(c.Request) {
			c.Next()
			return
		}

		provided, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok {
			abort(c, errorx.WithCode(ErrUnauthorized, "expected 'Authorization: Bearer <token>'"))
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.Token)) != 1 {
			abort(c, errorx.WithCode(ErrUnauthorized, "invalid bearer token"))
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	core.WriteResponse(c, err, nil)
	c.Abort()
}

func isLocalRequest(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return false
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
