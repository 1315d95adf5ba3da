package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/doit/internal/models"
	"github.com/balkashynov/doit/internal/service"
)

type happyBody struct {
	Enabled  *bool   `json:"enabled"`
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Timezone *string `json:"timezone"`
}

type triggerBody struct {
	JobType string `json:"job_type"`
}

// happyUser returns the logged-in user; guests cannot opt in to emails
func (s *Server) happyUser(c *gin.Context) (*models.User, bool) {
	user, err := s.Auth.Me(c.Request.Context(), ident(c))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return user, true
}

func (s *Server) handleGetHappy(c *gin.Context) {
	user, ok := s.happyUser(c)
	if !ok {
		return
	}
	hs, err := s.Happy.Get(c.Request.Context(), user.ID, user.Email)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, hs)
}

func (s *Server) handleUpdateHappy(c *gin.Context) {
	user, ok := s.happyUser(c)
	if !ok {
		return
	}
	var body happyBody
	if !bind(c, &body) {
		return
	}

	hs, err := s.Happy.Update(c.Request.Context(), user.ID, user.Email, service.UpdateHappyRequest{
		Enabled:  body.Enabled,
		Name:     body.Name,
		Email:    body.Email,
		Timezone: body.Timezone,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, hs)
}

func (s *Server) handleTrigger(c *gin.Context) {
	user, ok := s.happyUser(c)
	if !ok {
		return
	}
	var body triggerBody
	if !bind(c, &body) {
		return
	}

	report, err := s.Runner.Trigger(c.Request.Context(), user.ID, body.JobType)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"message": fmt.Sprintf("%s processed", body.JobType),
		"sent":    report.Sent,
	})
}
