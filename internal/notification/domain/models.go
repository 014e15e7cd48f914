// Package domain contains persistence models for notifications.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// NotificationKind classifies what a notification is about.
type NotificationKind string

const (
	KindInvoicePaid    NotificationKind = "invoice_paid"
	KindInvoiceOverdue NotificationKind = "invoice_overdue"
	KindSystem         NotificationKind = "system"
)

// Notification is an in-app message for a user. Ref optionally points at
// the related record, e.g. an invoice ID.
type Notification struct {
	ID        snowflake.ID     `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID     `gorm:"not null;index" json:"user_id"`
	Kind      NotificationKind `gorm:"type:text;not null" json:"kind"`
	Title     string           `gorm:"type:text;not null" json:"title"`
	Body      string           `gorm:"type:text" json:"body,omitempty"`
	Ref       string           `gorm:"type:text" json:"ref,omitempty"`
	ReadAt    *time.Time       `gorm:"index" json:"read_at,omitempty"`
	CreatedAt time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Notification) TableName() string { return "notifications" }
