// Package domain contains persistence models and contracts for payments.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// PaymentStatus represents the outcome of a provider payment.
type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment records money received against an invoice. Provider plus
// Reference is unique so webhook retries stay idempotent.
type Payment struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID     snowflake.ID      `gorm:"not null;index" json:"user_id"`
	InvoiceID  snowflake.ID      `gorm:"not null;index" json:"invoice_id"`
	Provider   string            `gorm:"type:text;not null;uniqueIndex:ux_payment_provider_ref,priority:1" json:"provider"`
	Reference  string            `gorm:"type:text;not null;uniqueIndex:ux_payment_provider_ref,priority:2" json:"reference"`
	Amount     float64           `gorm:"not null;default:0" json:"amount"`
	Currency   string            `gorm:"type:text;not null" json:"currency"`
	Status     PaymentStatus     `gorm:"type:text;not null" json:"status"`
	ReceivedAt time.Time         `gorm:"not null" json:"received_at"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
