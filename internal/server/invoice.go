package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	invoicedomain "github.com/lancekit/lancekit/internal/invoice/domain"
	"github.com/lancekit/lancekit/internal/invoice/draft"
	paymentdomain "github.com/lancekit/lancekit/internal/payment/domain"
	"github.com/lancekit/lancekit/internal/providers/pdf"
	"github.com/lancekit/lancekit/internal/usercontext"
)

type MarkInvoicePaidRequest struct {
	PaidAt    *time.Time `json:"paid_at"`
	Reference string     `json:"reference"`
}

type PopulateFromProjectRequest struct {
	ProjectID string `json:"project_id"`
}

func (s *Server) ListInvoices(c *gin.Context) {
	dueFrom, err := parseOptionalTime(c.Query("due_from"), false)
	if err != nil {
		AbortWithError(c, newValidationError("due_from", "invalid_time", "invalid time"))
		return
	}
	dueTo, err := parseOptionalTime(c.Query("due_to"), true)
	if err != nil {
		AbortWithError(c, newValidationError("due_to", "invalid_time", "invalid time"))
		return
	}

	req := invoicedomain.ListInvoiceRequest{
		PageToken: c.Query("page_token"),
		PageSize:  parsePageSize(c.Query("page_size")),
		DueFrom:   dueFrom,
		DueTo:     dueTo,
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		invoiceStatus := invoicedomain.InvoiceStatus(status)
		req.Status = &invoiceStatus
	}
	if clientID := strings.TrimSpace(c.Query("client_id")); clientID != "" {
		if _, err := snowflake.ParseString(clientID); err != nil {
			AbortWithError(c, newValidationError("client_id", "invalid_id", "invalid client id"))
			return
		}
		req.ClientID = &clientID
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Invoices, "page_info": resp.PageInfo})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	item, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) NextInvoiceNumber(c *gin.Context) {
	resp, err := s.invoiceSvc.NextNumber(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SubmitInvoice(c *gin.Context) {
	var payload draft.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.invoiceSvc.Submit(c.Request.Context(), invoicedomain.SubmitInvoiceRequest{
		Payload: payload,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) ResubmitInvoice(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var payload draft.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.invoiceSvc.Submit(c.Request.Context(), invoicedomain.SubmitInvoiceRequest{
		InvoiceID: &id,
		Payload:   payload,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) PopulateInvoiceFromProject(c *gin.Context) {
	var req PopulateFromProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.PopulateFromProject(c.Request.Context(), invoicedomain.PopulateFromProjectRequest{
		ProjectID: req.ProjectID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkInvoiceSent(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	item, err := s.invoiceSvc.MarkSent(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	// The body is optional; an empty POST records payment at the current time.
	var req MarkInvoicePaidRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	item, err := s.invoiceSvc.MarkPaid(c.Request.Context(), invoicedomain.MarkPaidRequest{
		ID:        id,
		PaidAt:    req.PaidAt,
		Reference: req.Reference,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) VoidInvoice(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	item, err := s.invoiceSvc.Void(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	if err := s.invoiceSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) RenderInvoicePDF(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	item, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	userID, ok := usercontext.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	user, err := s.users.FindByID(c.Request.Context(), s.db, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if user == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	reader, err := s.pdfProvider.RenderInvoice(c.Request.Context(), pdf.BuildInvoiceData(item, *user))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", item.Number+".pdf"))
	c.DataFromReader(http.StatusOK, -1, "application/pdf", reader, nil)
}

func (s *Server) ListInvoicePayments(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	// Scope check: the invoice must belong to the caller.
	if _, err := s.invoiceSvc.GetByID(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	payments, err := s.paymentSvc.ListByInvoice(c.Request.Context(), paymentdomain.ListPaymentRequest{InvoiceID: id})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payments})
}
