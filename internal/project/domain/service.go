package domain

import (
	"context"
	"errors"
	"time"
)

type CreateProjectRequest struct {
	ClientID    string
	Name        string
	Description string
	HourlyRate  float64
	DueDate     *time.Time
}

type UpdateProjectRequest struct {
	ID          string
	Name        *string
	Description *string
	Status      *ProjectStatus
	HourlyRate  *float64
	DueDate     *time.Time
}

type ListProjectRequest struct {
	ClientID string
}

type ListProjectResponse struct {
	Projects []Project `json:"projects"`
}

type CreateTaskRequest struct {
	ProjectID string
	Name      string
}

type UpdateTaskRequest struct {
	ID   string
	Name *string
	Done *bool
}

type ListTaskResponse struct {
	Tasks []Task `json:"tasks"`
}

type Service interface {
	Create(context.Context, CreateProjectRequest) (Project, error)
	Update(context.Context, UpdateProjectRequest) (Project, error)
	ListByClient(context.Context, ListProjectRequest) (ListProjectResponse, error)
	GetByID(ctx context.Context, id string) (Project, error)

	CreateTask(context.Context, CreateTaskRequest) (Task, error)
	UpdateTask(context.Context, UpdateTaskRequest) (Task, error)
	ListTasks(ctx context.Context, projectID string) (ListTaskResponse, error)
	DeleteTask(ctx context.Context, id string) error
}

var (
	ErrInvalidUser     = errors.New("invalid_user")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidClient   = errors.New("invalid_client")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidRate     = errors.New("invalid_rate")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrNotFound        = errors.New("not_found")
	ErrTaskNotFound    = errors.New("task_not_found")
	ErrInvalidTaskName = errors.New("invalid_task_name")
)
