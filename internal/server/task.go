package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	projectdomain "github.com/lancekit/lancekit/internal/project/domain"
)

type CreateTaskRequest struct {
	Name string `json:"name"`
}

type UpdateTaskRequest struct {
	Name *string `json:"name"`
	Done *bool   `json:"done"`
}

func (s *Server) ListTasks(c *gin.Context) {
	projectID := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(projectID); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	resp, err := s.projectSvc.ListTasks(c.Request.Context(), projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Tasks})
}

func (s *Server) CreateTask(c *gin.Context) {
	projectID := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(projectID); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.projectSvc.CreateTask(c.Request.Context(), projectdomain.CreateTaskRequest{
		ProjectID: projectID,
		Name:      req.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) UpdateTask(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.projectSvc.UpdateTask(c.Request.Context(), projectdomain.UpdateTaskRequest{
		ID:   id,
		Name: req.Name,
		Done: req.Done,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteTask(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	if err := s.projectSvc.DeleteTask(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
