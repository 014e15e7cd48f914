package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/lancekit/lancekit/internal/notification/domain"
	"github.com/lancekit/lancekit/pkg/db/option"
	"github.com/lancekit/lancekit/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, notification *domain.Notification) error {
	return db.WithContext(ctx).Create(notification).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Notification, error) {
	var notification domain.Notification
	err := db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&notification).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID, unreadOnly bool, page pagination.Pagination) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	stmt := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ?", userID)
	if unreadOnly {
		stmt = stmt.Where("read_at IS NULL")
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, notification *domain.Notification) error {
	return db.WithContext(ctx).Save(notification).Error
}

func (r *repo) MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID, at time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", at)
	return result.RowsAffected, result.Error
}

func (r *repo) CountUnread(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
