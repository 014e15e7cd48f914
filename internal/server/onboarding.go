package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	onboardingdomain "github.com/lancekit/lancekit/internal/onboarding/domain"
)

type OnboardingProfileRequest struct {
	Name         string `json:"name"`
	BusinessName string `json:"business_name"`
}

type OnboardingBillingRequest struct {
	DefaultHourlyRate float64 `json:"default_hourly_rate"`
	Currency          string  `json:"currency"`
}

func (s *Server) GetOnboarding(c *gin.Context) {
	item, err := s.onboardingSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CompleteOnboardingProfile(c *gin.Context) {
	var req OnboardingProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.onboardingSvc.CompleteProfile(c.Request.Context(), onboardingdomain.ProfileStepRequest{
		Name:         req.Name,
		BusinessName: req.BusinessName,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CompleteOnboardingBilling(c *gin.Context) {
	var req OnboardingBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.onboardingSvc.CompleteBilling(c.Request.Context(), onboardingdomain.BillingStepRequest{
		DefaultHourlyRate: req.DefaultHourlyRate,
		Currency:          req.Currency,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) SkipOnboardingBilling(c *gin.Context) {
	item, err := s.onboardingSvc.SkipBilling(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}
