package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lancekit/lancekit/internal/client/domain"
	"github.com/lancekit/lancekit/internal/usercontext"
	"github.com/lancekit/lancekit/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (domain.Client, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Client{}, domain.ErrInvalidUser
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Client{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Client{}, domain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:         s.genID.Generate(),
		UserID:     userID,
		Name:       name,
		Email:      email,
		Contact:    strings.TrimSpace(req.Contact),
		Street:     strings.TrimSpace(req.Address.Street),
		City:       strings.TrimSpace(req.Address.City),
		State:      strings.TrimSpace(req.Address.State),
		Country:    strings.TrimSpace(req.Address.Country),
		PostalCode: strings.TrimSpace(req.Address.PostalCode),
		Metadata:   datatypes.JSONMap{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &client); err != nil {
		return domain.Client{}, err
	}

	return client, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateClientRequest) (domain.Client, error) {
	client, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Client{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Client{}, domain.ErrInvalidName
		}
		client.Name = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" || !strings.Contains(email, "@") {
			return domain.Client{}, domain.ErrInvalidEmail
		}
		client.Email = email
	}
	if req.Contact != nil {
		client.Contact = strings.TrimSpace(*req.Contact)
	}
	if req.Address != nil {
		client.Street = strings.TrimSpace(req.Address.Street)
		client.City = strings.TrimSpace(req.Address.City)
		client.State = strings.TrimSpace(req.Address.State)
		client.Country = strings.TrimSpace(req.Address.Country)
		client.PostalCode = strings.TrimSpace(req.Address.PostalCode)
	}
	client.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, client); err != nil {
		return domain.Client{}, err
	}
	return *client, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClientRequest) (domain.ListClientResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ListClientResponse{}, domain.ErrInvalidUser
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, userID, domain.ListClientFilter{
		Name:            strings.TrimSpace(req.Name),
		IncludeArchived: req.IncludeArchived,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListClientResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(client *domain.Client) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        client.ID.String(),
			CreatedAt: client.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	clients := make([]domain.Client, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		clients = append(clients, *item)
	}

	resp := domain.ListClientResponse{Clients: clients}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetClientRequest) (domain.Client, error) {
	client, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Client{}, err
	}
	return *client, nil
}

func (s *Service) Archive(ctx context.Context, id string) error {
	client, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	client.Archived = true
	client.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, s.db, client)
}

func (s *Service) load(ctx context.Context, id string) (*domain.Client, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	clientID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	client, err := s.repo.FindByID(ctx, s.db, userID, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	return client, nil
}
