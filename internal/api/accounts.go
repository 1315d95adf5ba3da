package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/balkashynov/doit/internal/identity"
	"github.com/balkashynov/doit/internal/service"
)

type settingsBody struct {
	Theme    *string `json:"theme"`
	DarkMode *string `json:"dark_mode"`
}

type winBody struct {
	Task        string     `json:"task"`
	CompletedAt *time.Time `json:"completed_at"`
}

type loginBody struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleGetSettings(c *gin.Context) {
	id := ident(c)
	settings, err := s.Settings.Get(c.Request.Context(), id.Scope)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.persistGuest(c, id)
	c.JSON(http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(c *gin.Context) {
	var body settingsBody
	if !bind(c, &body) {
		return
	}

	id := ident(c)
	settings, err := s.Settings.Update(c.Request.Context(), id.Scope, service.UpdateSettingsRequest{
		Theme:    body.Theme,
		DarkMode: body.DarkMode,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.persistGuest(c, id)
	c.JSON(http.StatusOK, settings)
}

func (s *Server) handleListWins(c *gin.Context) {
	wins, err := s.Wins.List(c.Request.Context(), ident(c).Scope)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, wins)
}

func (s *Server) handleCreateWin(c *gin.Context) {
	var body winBody
	if !bind(c, &body) {
		return
	}

	id := ident(c)
	win, err := s.Wins.Create(c.Request.Context(), id.Scope, service.CreateWinRequest{
		Task:        body.Task,
		CompletedAt: body.CompletedAt,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.persistGuest(c, id)
	c.JSON(http.StatusOK, win)
}

func (s *Server) handleLogin(c *gin.Context) {
	var body loginBody
	if !bind(c, &body) {
		return
	}

	user, session, err := s.Auth.Login(c.Request.Context(), body.SessionID)
	if err != nil {
		s.fail(c, err)
		return
	}

	http.SetCookie(c.Writer, s.Cookies.Session(session.Token, s.Auth.TTL()))
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleMe(c *gin.Context) {
	user, err := s.Auth.Me(c.Request.Context(), ident(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// handleLogout always succeeds; a failed delete leaves a row the sweeper
// will collect once it expires
func (s *Server) handleLogout(c *gin.Context) {
	if err := s.Auth.Logout(c.Request.Context(), identity.SessionToken(c.Request)); err != nil {
		s.Log.Warn("logout: session not deleted", zap.Error(err))
	}
	http.SetCookie(c.Writer, s.Cookies.ClearSession())
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
