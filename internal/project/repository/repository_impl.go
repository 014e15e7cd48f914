package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/lancekit/lancekit/internal/project/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).Create(project).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Project, error) {
	var project domain.Project
	err := db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&project).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (r *repo) ListByClient(ctx context.Context, db *gorm.DB, userID, clientID snowflake.ID) ([]*domain.Project, error) {
	var projects []*domain.Project
	err := db.WithContext(ctx).
		Where("user_id = ? AND client_id = ?", userID, clientID).
		Order("created_at desc, id desc").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).Save(project).Error
}

func (r *repo) InsertTask(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return db.WithContext(ctx).Create(task).Error
}

func (r *repo) FindTaskByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Task, error) {
	var task domain.Task
	err := db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&task).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *repo) ListTasks(ctx context.Context, db *gorm.DB, userID, projectID snowflake.ID) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Order("created_at asc, id asc").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *repo) UpdateTask(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return db.WithContext(ctx).Save(task).Error
}

func (r *repo) DeleteTask(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&domain.Task{}).Error
}
