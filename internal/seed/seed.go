// Package seed bootstraps a demo account so a fresh local install is usable
// immediately. Never runs in production.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	authdomain "github.com/lancekit/lancekit/internal/auth/domain"
	"github.com/lancekit/lancekit/internal/auth/password"
	onboardingdomain "github.com/lancekit/lancekit/internal/onboarding/domain"
)

const (
	demoEmail    = "demo@lancekit.local"
	demoPassword = "demo1234"
	demoName     = "Demo Freelancer"
)

// EnsureDemoUser creates the demo account if it does not exist yet.
func EnsureDemoUser(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user authdomain.User
		err := tx.WithContext(ctx).
			Where("email = ?", demoEmail).
			First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(demoPassword)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		user = authdomain.User{
			ID:           node.Generate(),
			Name:         demoName,
			Email:        strings.ToLower(demoEmail),
			PasswordHash: hashed,
			Currency:     "USD",
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
			return err
		}

		onboarding := onboardingdomain.Onboarding{
			UserID:    user.ID,
			Step:      onboardingdomain.StepProfile,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.WithContext(ctx).Create(&onboarding).Error
	})
}
