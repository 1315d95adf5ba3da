// Package api is the HTTP/JSON surface of doit, mounted under /api.
//
// Which routes exist depends on the auth mode: tasks are always served;
// settings, wins, auth/me and happy need a per-user scope (bearer or
// session); login and logout only make sense with server-side sessions.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/balkashynov/doit/internal/auth"
	"github.com/balkashynov/doit/internal/config"
	"github.com/balkashynov/doit/internal/happy"
	"github.com/balkashynov/doit/internal/identity"
	"github.com/balkashynov/doit/internal/service"
)

// Deps is everything the server needs. Auth, Settings, Wins and Happy may be
// nil in none mode; Runner may be nil when Happy emails are disabled.
type Deps struct {
	Mode     string
	Resolver identity.Resolver

	Tasks    *service.TaskService
	Settings *service.SettingsService
	Wins     *service.WinsService
	Happy    *service.HappySettingsService
	Runner   *happy.Runner
	Auth     *auth.Manager

	Cookies  identity.CookiePolicy
	GuestTTL time.Duration
	Origins  []string
	Log      *zap.Logger
}

// Server is the doit API server
type Server struct {
	Deps
	router *gin.Engine
}

// New builds the router for d.Mode
func New(d Deps) *Server {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.GuestTTL <= 0 {
		d.GuestTTL = 365 * 24 * time.Hour
	}

	router := gin.New()
	s := &Server{Deps: d, router: router}

	router.Use(s.accessLog(), gin.Recovery(), s.cors())

	api := router.Group("/api")
	api.GET("/", s.handleRoot)

	scoped := api.Group("", s.resolve)
	scoped.GET("/tasks/:profile", s.handleListTasks)
	scoped.POST("/tasks", s.handleCreateTask)
	scoped.PATCH("/tasks/:id", s.handleUpdateTask)
	scoped.DELETE("/tasks/:id", s.handleDeleteTask)
	// gin wants one wildcard name per path position, so the profile
	// arrives as :id here
	scoped.DELETE("/tasks/:id/completed", s.handleClearCompleted)

	if d.Mode == config.AuthBearer || d.Mode == config.AuthSession {
		scoped.GET("/settings", s.handleGetSettings)
		scoped.PATCH("/settings", s.handleUpdateSettings)
		scoped.GET("/wins", s.handleListWins)
		scoped.POST("/wins", s.handleCreateWin)
		scoped.GET("/auth/me", s.handleMe)

		scoped.GET("/happy/settings", s.handleGetHappy)
		scoped.PATCH("/happy/settings", s.handleUpdateHappy)
		if d.Runner != nil {
			scoped.POST("/happy/trigger", s.handleTrigger)
		}
	}

	if d.Mode == config.AuthSession {
		api.POST("/auth/session", s.handleLogin)
		api.POST("/auth/logout", s.handleLogout)
	}

	return s
}

// Handler returns the router as an http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Stylish Tasks API"})
}
