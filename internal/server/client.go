package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	clientdomain "github.com/lancekit/lancekit/internal/client/domain"
)

type ClientAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

type CreateClientRequest struct {
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Contact string        `json:"contact"`
	Address ClientAddress `json:"address"`
}

type UpdateClientRequest struct {
	Name    *string        `json:"name"`
	Email   *string        `json:"email"`
	Contact *string        `json:"contact"`
	Address *ClientAddress `json:"address"`
}

func (s *Server) ListClients(c *gin.Context) {
	includeArchived, err := parseOptionalBool(c.Query("include_archived"))
	if err != nil {
		AbortWithError(c, newValidationError("include_archived", "invalid_bool", "invalid boolean"))
		return
	}

	resp, err := s.clientSvc.List(c.Request.Context(), clientdomain.ListClientRequest{
		PageToken:       c.Query("page_token"),
		PageSize:        parsePageSize(c.Query("page_size")),
		Name:            strings.TrimSpace(c.Query("name")),
		IncludeArchived: includeArchived,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Clients, "page_info": resp.PageInfo})
}

func (s *Server) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.clientSvc.Create(c.Request.Context(), clientdomain.CreateClientRequest{
		Name:    req.Name,
		Email:   req.Email,
		Contact: req.Contact,
		Address: toDomainAddress(req.Address),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) GetClientByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	item, err := s.clientSvc.GetByID(c.Request.Context(), clientdomain.GetClientRequest{ID: id})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) UpdateClient(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := clientdomain.UpdateClientRequest{
		ID:      id,
		Name:    req.Name,
		Email:   req.Email,
		Contact: req.Contact,
	}
	if req.Address != nil {
		addr := toDomainAddress(*req.Address)
		update.Address = &addr
	}

	item, err := s.clientSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) ArchiveClient(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	if err := s.clientSvc.Archive(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func toDomainAddress(addr ClientAddress) clientdomain.Address {
	return clientdomain.Address{
		Street:     addr.Street,
		City:       addr.City,
		State:      addr.State,
		Country:    addr.Country,
		PostalCode: addr.PostalCode,
	}
}
