package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	notificationdomain "github.com/lancekit/lancekit/internal/notification/domain"
)

func (s *Server) ListNotifications(c *gin.Context) {
	unreadOnly, err := parseOptionalBool(c.Query("unread_only"))
	if err != nil {
		AbortWithError(c, newValidationError("unread_only", "invalid_bool", "invalid boolean"))
		return
	}

	resp, err := s.notificationSvc.List(c.Request.Context(), notificationdomain.ListNotificationRequest{
		PageToken:  c.Query("page_token"),
		PageSize:   parsePageSize(c.Query("page_size")),
		UnreadOnly: unreadOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Notifications, "page_info": resp.PageInfo})
}

func (s *Server) UnreadNotificationCount(c *gin.Context) {
	resp, err := s.notificationSvc.UnreadCount(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkNotificationRead(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	item, err := s.notificationSvc.MarkRead(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) MarkAllNotificationsRead(c *gin.Context) {
	count, err := s.notificationSvc.MarkAllRead(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"marked": count}})
}
