package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	invoicedomain "github.com/lancekit/lancekit/internal/invoice/domain"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByReference(ctx context.Context, db *gorm.DB, provider, reference string) (*Payment, error)
	ListByInvoice(ctx context.Context, db *gorm.DB, userID, invoiceID snowflake.ID) ([]*Payment, error)

	// FindInvoiceByID looks an invoice up without a user scope. Webhooks
	// arrive with no authenticated user; ownership comes from the invoice.
	FindInvoiceByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*invoicedomain.Invoice, error)
}
