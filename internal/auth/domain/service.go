package domain

import (
	"context"
	"errors"
)

type SignupRequest struct {
	Name     string
	Email    string
	Password string
}

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	User      User   `json:"user"`
}

type UpdateProfileRequest struct {
	Name              *string
	BusinessName      *string
	DefaultHourlyRate *float64
	Currency          *string
}

type Service interface {
	Signup(context.Context, SignupRequest) (LoginResponse, error)
	Login(context.Context, LoginRequest) (LoginResponse, error)
	Me(ctx context.Context) (User, error)
	UpdateProfile(context.Context, UpdateProfileRequest) (User, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrWeakPassword       = errors.New("weak_password")
	ErrUserExists         = errors.New("user_exists")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrTokenExpired       = errors.New("token_expired")
	ErrNotFound           = errors.New("not_found")
)
