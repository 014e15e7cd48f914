// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
	InvoiceStatusVoid    InvoiceStatus = "void"
)

// Invoice is a persisted invoice. Amount is the subtotal before tax and
// discount; Total is the amount actually owed.
type Invoice struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_invoice_user_number,priority:1" json:"user_id"`
	Number      string            `gorm:"type:text;not null;uniqueIndex:ux_invoice_user_number,priority:2" json:"number"`
	ClientID    *snowflake.ID     `gorm:"index" json:"client_id,omitempty"`
	ClientName  string            `gorm:"type:text;not null" json:"client"`
	ClientEmail string            `gorm:"type:text;not null" json:"client_email"`
	ProjectID   *snowflake.ID     `gorm:"index" json:"project_id,omitempty"`
	Status      InvoiceStatus     `gorm:"type:text;not null;default:'draft'" json:"status"`
	Amount      float64           `gorm:"not null;default:0" json:"amount"`
	Tax         float64           `gorm:"not null;default:0" json:"tax"`
	Discount    float64           `gorm:"not null;default:0" json:"discount"`
	Total       float64           `gorm:"not null;default:0" json:"total"`
	Currency    string            `gorm:"type:text;not null" json:"currency"`
	IssueDate   time.Time         `gorm:"not null" json:"issue_date"`
	DueDate     time.Time         `gorm:"not null" json:"due_date"`
	PaidAt      *time.Time        `gorm:"" json:"paid_at,omitempty"`
	Notes       string            `gorm:"type:text" json:"notes,omitempty"`
	Terms       string            `gorm:"type:text" json:"terms,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	Items       []InvoiceItem     `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is a billable line on an invoice. Amount is always stored as
// Quantity * Rate, recomputed at submission time.
type InvoiceItem struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID  `gorm:"not null;index" json:"user_id"`
	InvoiceID   snowflake.ID  `gorm:"not null;index" json:"invoice_id"`
	TaskID      *snowflake.ID `gorm:"index" json:"task_id,omitempty"`
	Description string        `gorm:"type:text;not null" json:"description"`
	Quantity    float64       `gorm:"not null" json:"quantity"`
	Rate        float64       `gorm:"not null" json:"rate"`
	Amount      float64       `gorm:"not null" json:"amount"`
	IsCustom    bool          `gorm:"not null;default:false" json:"is_custom"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// NumberSequence tracks per-user, per-year invoice numbering.
type NumberSequence struct {
	UserID    snowflake.ID `gorm:"primaryKey"`
	Year      int          `gorm:"primaryKey"`
	LastValue int64        `gorm:"not null;default:0"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (NumberSequence) TableName() string { return "invoice_number_sequences" }
