// Package domain contains persistence models for onboarding.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// OnboardingStep is the next step a user has to finish.
type OnboardingStep string

const (
	StepProfile OnboardingStep = "profile"
	StepBilling OnboardingStep = "billing"
	StepDone    OnboardingStep = "done"
)

// Onboarding tracks a user's progress through first-run setup. One row per
// user; the wizard resumes from Step.
type Onboarding struct {
	UserID        snowflake.ID   `gorm:"primaryKey" json:"user_id"`
	Step          OnboardingStep `gorm:"type:text;not null;default:'profile'" json:"step"`
	ProfileDone   bool           `gorm:"not null;default:false" json:"profile_done"`
	BillingDone   bool           `gorm:"not null;default:false" json:"billing_done"`
	BillingSkipped bool          `gorm:"not null;default:false" json:"billing_skipped"`
	CompletedAt   *time.Time     `gorm:"" json:"completed_at,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Onboarding) TableName() string { return "onboardings" }
