package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is a freelancer account. DefaultHourlyRate seeds line-item rates when
// a project carries no rate of its own.
type User struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	Name              string       `gorm:"not null" json:"name"`
	Email             string       `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash      string       `gorm:"not null" json:"-"`
	BusinessName      string       `gorm:"type:text" json:"business_name,omitempty"`
	DefaultHourlyRate float64      `gorm:"not null;default:0" json:"default_hourly_rate"`
	Currency          string       `gorm:"type:text;not null;default:'USD'" json:"currency"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
