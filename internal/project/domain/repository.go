package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, project *Project) error
	FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Project, error)
	ListByClient(ctx context.Context, db *gorm.DB, userID, clientID snowflake.ID) ([]*Project, error)
	Update(ctx context.Context, db *gorm.DB, project *Project) error

	InsertTask(ctx context.Context, db *gorm.DB, task *Task) error
	FindTaskByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Task, error)
	ListTasks(ctx context.Context, db *gorm.DB, userID, projectID snowflake.ID) ([]*Task, error)
	UpdateTask(ctx context.Context, db *gorm.DB, task *Task) error
	DeleteTask(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error
}
