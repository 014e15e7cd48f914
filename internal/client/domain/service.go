package domain

import (
	"context"
	"errors"

	"github.com/lancekit/lancekit/pkg/db/pagination"
)

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

type CreateClientRequest struct {
	Name    string
	Email   string
	Contact string
	Address Address
}

type UpdateClientRequest struct {
	ID      string
	Name    *string
	Email   *string
	Contact *string
	Address *Address
}

type ListClientRequest struct {
	PageToken       string
	PageSize        int32
	Name            string
	IncludeArchived bool
}

type ListClientFilter struct {
	Name            string
	IncludeArchived bool
}

type ListClientResponse struct {
	pagination.PageInfo
	Clients []Client `json:"clients"`
}

type GetClientRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateClientRequest) (Client, error)
	Update(context.Context, UpdateClientRequest) (Client, error)
	List(context.Context, ListClientRequest) (ListClientResponse, error)
	GetByID(context.Context, GetClientRequest) (Client, error)
	Archive(ctx context.Context, id string) error
}

var (
	ErrInvalidUser  = errors.New("invalid_user")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
