package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/lancekit/lancekit/internal/invoice/domain"
	"github.com/lancekit/lancekit/pkg/db/option"
	"github.com/lancekit/lancekit/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc, id asc")
		}).
		Where("user_id = ? AND id = ?", userID, id).
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, userID snowflake.ID, number string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		Where("user_id = ? AND number = ?", userID, number).
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("user_id = ?", userID)
	if filter.Status != nil {
		stmt = stmt.Where("status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		stmt = stmt.Where("client_id = ?", *filter.ClientID)
	}
	if filter.DueFrom != nil {
		stmt = stmt.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		stmt = stmt.Where("due_date <= ?", *filter.DueTo)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).
		Omit("Items").
		Save(invoice).Error
}

func (r *repo) ReplaceItems(ctx context.Context, db *gorm.DB, userID, invoiceID snowflake.ID, items []domain.InvoiceItem) error {
	err := db.WithContext(ctx).
		Where("user_id = ? AND invoice_id = ?", userID, invoiceID).
		Delete(&domain.InvoiceItem{}).Error
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error {
	err := db.WithContext(ctx).
		Where("user_id = ? AND invoice_id = ?", userID, id).
		Delete(&domain.InvoiceItem{}).Error
	if err != nil {
		return err
	}
	return db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&domain.Invoice{}).Error
}

func (r *repo) MarkOverdue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("status = ? AND due_date < ?", domain.InvoiceStatusSent, now).
		Updates(map[string]interface{}{
			"status":     domain.InvoiceStatusOverdue,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}
