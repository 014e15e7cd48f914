package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	projectdomain "github.com/lancekit/lancekit/internal/project/domain"
)

type CreateProjectRequest struct {
	ClientID    string     `json:"client_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	HourlyRate  float64    `json:"hourly_rate"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateProjectRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	HourlyRate  *float64   `json:"hourly_rate"`
	DueDate     *time.Time `json:"due_date"`
}

func (s *Server) ListProjects(c *gin.Context) {
	clientID := strings.TrimSpace(c.Query("client_id"))
	if clientID != "" {
		if _, err := snowflake.ParseString(clientID); err != nil {
			AbortWithError(c, newValidationError("client_id", "invalid_id", "invalid client id"))
			return
		}
	}

	resp, err := s.projectSvc.ListByClient(c.Request.Context(), projectdomain.ListProjectRequest{
		ClientID: clientID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Projects})
}

func (s *Server) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.projectSvc.Create(c.Request.Context(), projectdomain.CreateProjectRequest{
		ClientID:    req.ClientID,
		Name:        req.Name,
		Description: req.Description,
		HourlyRate:  req.HourlyRate,
		DueDate:     req.DueDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) GetProjectByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	item, err := s.projectSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) UpdateProject(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := projectdomain.UpdateProjectRequest{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		HourlyRate:  req.HourlyRate,
		DueDate:     req.DueDate,
	}
	if req.Status != nil {
		status := projectdomain.ProjectStatus(*req.Status)
		update.Status = &status
	}

	item, err := s.projectSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}
