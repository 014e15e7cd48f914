package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lancekit/lancekit/internal/notification/cache"
	"github.com/lancekit/lancekit/internal/notification/domain"
	"github.com/lancekit/lancekit/internal/usercontext"
	"github.com/lancekit/lancekit/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Unread *cache.UnreadCounter
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	unread *cache.UnreadCounter
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("notification.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		unread: p.Unread,
	}
}

func (s *Service) Notify(ctx context.Context, req domain.NotifyRequest) (domain.Notification, error) {
	if req.UserID == 0 {
		return domain.Notification{}, domain.ErrInvalidUser
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Notification{}, domain.ErrInvalidTitle
	}

	kind := req.Kind
	if kind == "" {
		kind = domain.KindSystem
	}

	notification := domain.Notification{
		ID:        s.genID.Generate(),
		UserID:    req.UserID,
		Kind:      kind,
		Title:     title,
		Body:      strings.TrimSpace(req.Body),
		Ref:       strings.TrimSpace(req.Ref),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &notification); err != nil {
		return domain.Notification{}, err
	}

	s.unread.Invalidate(ctx, req.UserID)
	return notification, nil
}

func (s *Service) List(ctx context.Context, req domain.ListNotificationRequest) (domain.ListNotificationResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ListNotificationResponse{}, domain.ErrInvalidUser
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, userID, req.UnreadOnly, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListNotificationResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(notification *domain.Notification) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        notification.ID.String(),
			CreatedAt: notification.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	notifications := make([]domain.Notification, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		notifications = append(notifications, *item)
	}

	resp := domain.ListNotificationResponse{Notifications: notifications}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) MarkRead(ctx context.Context, id string) (domain.Notification, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Notification{}, domain.ErrInvalidUser
	}

	notificationID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.Notification{}, domain.ErrInvalidID
	}

	notification, err := s.repo.FindByID(ctx, s.db, userID, notificationID)
	if err != nil {
		return domain.Notification{}, err
	}
	if notification == nil {
		return domain.Notification{}, domain.ErrNotFound
	}

	if notification.ReadAt == nil {
		now := time.Now().UTC()
		notification.ReadAt = &now
		if err := s.repo.Update(ctx, s.db, notification); err != nil {
			return domain.Notification{}, err
		}
		s.unread.Invalidate(ctx, userID)
	}

	return *notification, nil
}

func (s *Service) MarkAllRead(ctx context.Context) (int64, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return 0, domain.ErrInvalidUser
	}

	affected, err := s.repo.MarkAllRead(ctx, s.db, userID, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		s.unread.Invalidate(ctx, userID)
	}
	return affected, nil
}

func (s *Service) UnreadCount(ctx context.Context) (domain.UnreadCountResponse, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.UnreadCountResponse{}, domain.ErrInvalidUser
	}

	if count, ok := s.unread.Get(ctx, userID); ok {
		return domain.UnreadCountResponse{Count: count}, nil
	}

	count, err := s.repo.CountUnread(ctx, s.db, userID)
	if err != nil {
		return domain.UnreadCountResponse{}, err
	}
	s.unread.Set(ctx, userID, count)

	return domain.UnreadCountResponse{Count: count}, nil
}
