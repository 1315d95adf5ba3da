package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/balkashynov/doit/internal/auth"
	"github.com/balkashynov/doit/internal/happy"
	"github.com/balkashynov/doit/internal/identity"
	"github.com/balkashynov/doit/internal/service"
)

// statusFor maps an error onto a status and the detail shown to the client
func statusFor(err error) (int, string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Status, verr.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, service.ErrNotFound.Error()
	case errors.Is(err, auth.ErrInvalidSession):
		return http.StatusUnauthorized, auth.ErrInvalidSession.Error()
	case errors.Is(err, identity.ErrUnauthenticated), errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, service.ErrUnauthenticated.Error()
	case errors.Is(err, happy.ErrNotTriggerable):
		return http.StatusUnprocessableEntity, happy.ErrNotTriggerable.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// fail aborts with {"detail": ...}
func (s *Server) fail(c *gin.Context, err error) {
	status, detail := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// bind decodes the JSON body or aborts with 422
func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": "Invalid request body: " + err.Error()})
		return false
	}
	return true
}
