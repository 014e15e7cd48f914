package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ProjectStatus represents project lifecycle states.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// Project is a client engagement. HourlyRate, when set, is the default rate
// for invoice line items derived from the project's tasks.
type Project struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID  `gorm:"not null;index" json:"user_id"`
	ClientID    snowflake.ID  `gorm:"not null;index" json:"client_id"`
	Name        string        `gorm:"not null" json:"name"`
	Code        string        `gorm:"type:text;not null" json:"code"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
	Status      ProjectStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	HourlyRate  float64       `gorm:"not null;default:0" json:"hourly_rate"`
	DueDate     *time.Time    `gorm:"" json:"due_date,omitempty"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Project) TableName() string { return "projects" }

// Task is a unit of work on a project. Completed tasks feed task-derived
// invoice line items.
type Task struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	ProjectID snowflake.ID `gorm:"not null;index" json:"project_id"`
	Name      string       `gorm:"not null" json:"name"`
	Done      bool         `gorm:"not null;default:false" json:"done"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Task) TableName() string { return "tasks" }
