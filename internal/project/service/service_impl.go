package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	clientdomain "github.com/lancekit/lancekit/internal/client/domain"
	"github.com/lancekit/lancekit/internal/project/domain"
	"github.com/lancekit/lancekit/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	ClientRepo clientdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	clientRepo clientdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("project.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		clientRepo: p.ClientRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProjectRequest) (domain.Project, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Project{}, domain.ErrInvalidUser
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Project{}, domain.ErrInvalidName
	}

	if req.HourlyRate < 0 {
		return domain.Project{}, domain.ErrInvalidRate
	}

	clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
	if err != nil {
		return domain.Project{}, domain.ErrInvalidClient
	}
	client, err := s.clientRepo.FindByID(ctx, s.db, userID, clientID)
	if err != nil {
		return domain.Project{}, err
	}
	if client == nil {
		return domain.Project{}, domain.ErrInvalidClient
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:          s.genID.Generate(),
		UserID:      userID,
		ClientID:    clientID,
		Name:        name,
		Code:        slug.Make(name),
		Description: strings.TrimSpace(req.Description),
		Status:      domain.ProjectStatusActive,
		HourlyRate:  req.HourlyRate,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &project); err != nil {
		return domain.Project{}, err
	}

	return project, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateProjectRequest) (domain.Project, error) {
	project, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Project{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Project{}, domain.ErrInvalidName
		}
		project.Name = name
		project.Code = slug.Make(name)
	}
	if req.Description != nil {
		project.Description = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.ProjectStatusActive, domain.ProjectStatusOnHold, domain.ProjectStatusCompleted:
			project.Status = *req.Status
		default:
			return domain.Project{}, domain.ErrInvalidStatus
		}
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			return domain.Project{}, domain.ErrInvalidRate
		}
		project.HourlyRate = *req.HourlyRate
	}
	if req.DueDate != nil {
		project.DueDate = req.DueDate
	}
	project.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, project); err != nil {
		return domain.Project{}, err
	}
	return *project, nil
}

func (s *Service) ListByClient(ctx context.Context, req domain.ListProjectRequest) (domain.ListProjectResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ListProjectResponse{}, domain.ErrInvalidUser
	}

	clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
	if err != nil {
		return domain.ListProjectResponse{}, domain.ErrInvalidClient
	}

	items, err := s.repo.ListByClient(ctx, s.db, userID, clientID)
	if err != nil {
		return domain.ListProjectResponse{}, err
	}

	projects := make([]domain.Project, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		projects = append(projects, *item)
	}
	return domain.ListProjectResponse{Projects: projects}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}
	return *project, nil
}

func (s *Service) CreateTask(ctx context.Context, req domain.CreateTaskRequest) (domain.Task, error) {
	project, err := s.load(ctx, req.ProjectID)
	if err != nil {
		return domain.Task{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Task{}, domain.ErrInvalidTaskName
	}

	now := time.Now().UTC()
	task := domain.Task{
		ID:        s.genID.Generate(),
		UserID:    project.UserID,
		ProjectID: project.ID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.InsertTask(ctx, s.db, &task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *Service) UpdateTask(ctx context.Context, req domain.UpdateTaskRequest) (domain.Task, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Task{}, domain.ErrInvalidUser
	}

	taskID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Task{}, domain.ErrInvalidID
	}

	task, err := s.repo.FindTaskByID(ctx, s.db, userID, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	if task == nil {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Task{}, domain.ErrInvalidTaskName
		}
		task.Name = name
	}
	if req.Done != nil {
		task.Done = *req.Done
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateTask(ctx, s.db, task); err != nil {
		return domain.Task{}, err
	}
	return *task, nil
}

func (s *Service) ListTasks(ctx context.Context, projectID string) (domain.ListTaskResponse, error) {
	project, err := s.load(ctx, projectID)
	if err != nil {
		return domain.ListTaskResponse{}, err
	}

	items, err := s.repo.ListTasks(ctx, s.db, project.UserID, project.ID)
	if err != nil {
		return domain.ListTaskResponse{}, err
	}

	tasks := make([]domain.Task, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		tasks = append(tasks, *item)
	}
	return domain.ListTaskResponse{Tasks: tasks}, nil
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ErrInvalidUser
	}

	taskID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	return s.repo.DeleteTask(ctx, s.db, userID, taskID)
}

func (s *Service) load(ctx context.Context, id string) (*domain.Project, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	projectID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	project, err := s.repo.FindByID(ctx, s.db, userID, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}
	return project, nil
}
