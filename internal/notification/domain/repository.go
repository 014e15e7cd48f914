package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/lancekit/lancekit/pkg/db/pagination"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notification *Notification) error
	FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Notification, error)
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID, unreadOnly bool, page pagination.Pagination) ([]*Notification, error)
	Update(ctx context.Context, db *gorm.DB, notification *Notification) error
	MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID, at time.Time) (int64, error)
	CountUnread(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
}
