package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Onboarding, error)
	Insert(ctx context.Context, db *gorm.DB, onboarding *Onboarding) error
	Update(ctx context.Context, db *gorm.DB, onboarding *Onboarding) error
}
