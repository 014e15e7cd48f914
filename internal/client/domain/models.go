package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Client is a billable customer owned by a single user account.
type Client struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID     snowflake.ID      `gorm:"not null;index" json:"user_id"`
	Name       string            `gorm:"not null" json:"name"`
	Email      string            `gorm:"not null" json:"email"`
	Contact    string            `gorm:"type:text" json:"contact,omitempty"`
	Street     string            `gorm:"type:text" json:"street,omitempty"`
	City       string            `gorm:"type:text" json:"city,omitempty"`
	State      string            `gorm:"type:text" json:"state,omitempty"`
	Country    string            `gorm:"type:text" json:"country,omitempty"`
	PostalCode string            `gorm:"type:text" json:"postal_code,omitempty"`
	Archived   bool              `gorm:"not null;default:false" json:"archived"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }
