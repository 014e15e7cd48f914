package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/lancekit/lancekit/internal/onboarding/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.Onboarding, error) {
	var onboarding domain.Onboarding
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&onboarding).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &onboarding, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, onboarding *domain.Onboarding) error {
	return db.WithContext(ctx).Create(onboarding).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, onboarding *domain.Onboarding) error {
	return db.WithContext(ctx).Save(onboarding).Error
}
