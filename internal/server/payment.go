package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	paymentdomain "github.com/lancekit/lancekit/internal/payment/domain"
)

func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err = s.paymentSvc.HandleWebhook(c.Request.Context(), paymentdomain.HandleWebhookRequest{
		Provider:  provider,
		Payload:   payload,
		Signature: c.GetHeader("Stripe-Signature"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
