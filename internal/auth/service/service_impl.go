package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lancekit/lancekit/internal/auth/domain"
	"github.com/lancekit/lancekit/internal/auth/password"
	"github.com/lancekit/lancekit/internal/auth/token"
	"github.com/lancekit/lancekit/internal/usercontext"
	"github.com/lancekit/lancekit/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Issuer *token.Issuer
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	issuer *token.Issuer
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("auth.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		issuer: p.Issuer,
	}
}

func (s *Service) Signup(ctx context.Context, req domain.SignupRequest) (domain.LoginResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.LoginResponse{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.LoginResponse{}, domain.ErrInvalidEmail
	}

	if !password.StrongEnough(req.Password) {
		return domain.LoginResponse{}, domain.ErrWeakPassword
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           s.genID.Generate(),
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Currency:     "USD",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.LoginResponse{}, domain.ErrUserExists
		}
		return domain.LoginResponse{}, err
	}

	return s.issue(user, now)
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, s.db, req.Email)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if user == nil || !password.Verify(user.PasswordHash, req.Password) {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	return s.issue(*user, time.Now().UTC())
}

func (s *Service) Me(ctx context.Context) (domain.User, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.User{}, domain.ErrUnauthenticated
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (domain.User, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.User{}, domain.ErrUnauthenticated
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.User{}, domain.ErrInvalidName
		}
		user.Name = name
	}
	if req.BusinessName != nil {
		user.BusinessName = strings.TrimSpace(*req.BusinessName)
	}
	if req.DefaultHourlyRate != nil && *req.DefaultHourlyRate >= 0 {
		user.DefaultHourlyRate = *req.DefaultHourlyRate
	}
	if req.Currency != nil && strings.TrimSpace(*req.Currency) != "" {
		user.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return domain.User{}, err
	}
	return *user, nil
}

func (s *Service) issue(user domain.User, now time.Time) (domain.LoginResponse, error) {
	signed, expiresAt, err := s.issuer.Issue(user.ID, now)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	return domain.LoginResponse{
		Token:     signed,
		ExpiresAt: expiresAt.Unix(),
		User:      user,
	}, nil
}
