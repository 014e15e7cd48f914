package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"

	"github.com/lancekit/lancekit/pkg/db/pagination"
)

// NotifyRequest creates a notification for a user. UserID is explicit
// because system events, not the authenticated user, raise most of these.
type NotifyRequest struct {
	UserID snowflake.ID
	Kind   NotificationKind
	Title  string
	Body   string
	Ref    string
}

type ListNotificationRequest struct {
	PageToken  string
	PageSize   int32
	UnreadOnly bool
}

type ListNotificationResponse struct {
	pagination.PageInfo
	Notifications []Notification `json:"notifications"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type Service interface {
	Notify(context.Context, NotifyRequest) (Notification, error)
	List(context.Context, ListNotificationRequest) (ListNotificationResponse, error)
	MarkRead(ctx context.Context, id string) (Notification, error)
	MarkAllRead(ctx context.Context) (int64, error)
	UnreadCount(ctx context.Context) (UnreadCountResponse, error)
}

var (
	ErrInvalidUser  = errors.New("invalid_user")
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidTitle = errors.New("invalid_title")
	ErrNotFound     = errors.New("not_found")
)
