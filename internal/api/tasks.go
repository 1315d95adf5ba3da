package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/doit/internal/service"
)

type createTaskBody struct {
	Title   string `json:"title"`
	Profile string `json:"profile"`
	Section string `json:"section"`
}

type updateTaskBody struct {
	Title     *string `json:"title"`
	Section   *string `json:"section"`
	Completed *bool   `json:"completed"`
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.Tasks.List(c.Request.Context(), ident(c).Scope, c.Param("profile"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var body createTaskBody
	if !bind(c, &body) {
		return
	}

	id := ident(c)
	task, err := s.Tasks.Create(c.Request.Context(), id.Scope, service.CreateTaskRequest{
		Title:   body.Title,
		Profile: body.Profile,
		Section: body.Section,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	s.persistGuest(c, id)
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var body updateTaskBody
	if !bind(c, &body) {
		return
	}

	task, err := s.Tasks.Update(c.Request.Context(), ident(c).Scope, c.Param("id"), service.UpdateTaskRequest{
		Title:     body.Title,
		Section:   body.Section,
		Completed: body.Completed,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.Tasks.Delete(c.Request.Context(), ident(c).Scope, c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (s *Server) handleClearCompleted(c *gin.Context) {
	n, err := s.Tasks.ClearCompleted(c.Request.Context(), ident(c).Scope, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Deleted %d completed tasks", n),
		"deleted": n,
	})
}
