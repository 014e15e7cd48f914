package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/lancekit/lancekit/pkg/db/pagination"
)

type ListInvoiceFilter struct {
	Status   *InvoiceStatus
	ClientID *snowflake.ID
	DueFrom  *time.Time
	DueTo    *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Invoice, error)
	FindByNumber(ctx context.Context, db *gorm.DB, userID snowflake.ID, number string) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	ReplaceItems(ctx context.Context, db *gorm.DB, userID, invoiceID snowflake.ID, items []InvoiceItem) error
	Delete(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error
	MarkOverdue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
}
