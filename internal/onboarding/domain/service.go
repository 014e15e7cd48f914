package domain

import (
	"context"
	"errors"
)

// ProfileStepRequest captures the first wizard step.
type ProfileStepRequest struct {
	Name         string `json:"name"`
	BusinessName string `json:"business_name"`
}

// BillingStepRequest captures default billing settings. The step may be
// skipped; settings stay at their signup defaults.
type BillingStepRequest struct {
	DefaultHourlyRate float64 `json:"default_hourly_rate"`
	Currency          string  `json:"currency"`
}

type Service interface {
	Get(ctx context.Context) (Onboarding, error)
	CompleteProfile(context.Context, ProfileStepRequest) (Onboarding, error)
	CompleteBilling(context.Context, BillingStepRequest) (Onboarding, error)
	SkipBilling(ctx context.Context) (Onboarding, error)
}

var (
	ErrInvalidUser = errors.New("invalid_user")
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidRate = errors.New("invalid_rate")
	ErrStepOrder   = errors.New("step_out_of_order")
)
