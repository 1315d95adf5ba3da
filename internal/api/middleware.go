package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/balkashynov/doit/internal/identity"
)

const identityKey = "identity"

// resolve attaches the request's identity or aborts
func (s *Server) resolve(c *gin.Context) {
	id, err := s.Resolver.Resolve(c.Request)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Set(identityKey, id)
	c.Next()
}

func ident(c *gin.Context) *identity.Identity {
	if v, ok := c.Get(identityKey); ok {
		return v.(*identity.Identity)
	}
	return &identity.Identity{Kind: identity.KindAnonymous}
}

// persistGuest writes the guest cookie the first time a new guest stores
// something
func (s *Server) persistGuest(c *gin.Context, id *identity.Identity) {
	if id.Kind != identity.KindGuest || !id.NewGuest {
		return
	}
	http.SetCookie(c.Writer, s.Cookies.Guest(id.Scope, s.GuestTTL))
	id.NewGuest = false
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if v, ok := c.Get(identityKey); ok {
			fields = append(fields, zap.String("kind", string(v.(*identity.Identity).Kind)))
		}

		if status >= http.StatusInternalServerError {
			s.Log.Error("request", fields...)
			return
		}
		s.Log.Info("request", fields...)
	}
}

// cors allows the configured origins with credentials. With credentials a
// literal "*" is not honoured by browsers, so the request origin is echoed.
func (s *Server) cors() gin.HandlerFunc {
	wildcard := false
	allowed := make(map[string]bool, len(s.Origins))
	for _, o := range s.Origins {
		if o == "*" {
			wildcard = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (wildcard || allowed[origin]) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
