package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/lancekit/lancekit/internal/auth/domain"
	"github.com/lancekit/lancekit/internal/onboarding/domain"
	"github.com/lancekit/lancekit/internal/usercontext"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Users authdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	users authdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("onboarding.service"),
		repo:  p.Repo,
		users: p.Users,
	}
}

// Get returns the user's progress, creating the record on first read so the
// wizard always has a row to resume from.
func (s *Service) Get(ctx context.Context) (domain.Onboarding, error) {
	onboarding, err := s.load(ctx)
	if err != nil {
		return domain.Onboarding{}, err
	}
	return *onboarding, nil
}

func (s *Service) CompleteProfile(ctx context.Context, req domain.ProfileStepRequest) (domain.Onboarding, error) {
	onboarding, err := s.load(ctx)
	if err != nil {
		return domain.Onboarding{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Onboarding{}, domain.ErrInvalidName
	}

	user, err := s.users.FindByID(ctx, s.db, onboarding.UserID)
	if err != nil {
		return domain.Onboarding{}, err
	}
	if user == nil {
		return domain.Onboarding{}, domain.ErrInvalidUser
	}

	user.Name = name
	user.BusinessName = strings.TrimSpace(req.BusinessName)
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, s.db, user); err != nil {
		return domain.Onboarding{}, err
	}

	onboarding.ProfileDone = true
	s.advance(onboarding)
	if err := s.repo.Update(ctx, s.db, onboarding); err != nil {
		return domain.Onboarding{}, err
	}
	return *onboarding, nil
}

func (s *Service) CompleteBilling(ctx context.Context, req domain.BillingStepRequest) (domain.Onboarding, error) {
	onboarding, err := s.load(ctx)
	if err != nil {
		return domain.Onboarding{}, err
	}
	if !onboarding.ProfileDone {
		return domain.Onboarding{}, domain.ErrStepOrder
	}
	if req.DefaultHourlyRate < 0 {
		return domain.Onboarding{}, domain.ErrInvalidRate
	}

	user, err := s.users.FindByID(ctx, s.db, onboarding.UserID)
	if err != nil {
		return domain.Onboarding{}, err
	}
	if user == nil {
		return domain.Onboarding{}, domain.ErrInvalidUser
	}

	user.DefaultHourlyRate = req.DefaultHourlyRate
	if currency := strings.ToUpper(strings.TrimSpace(req.Currency)); currency != "" {
		user.Currency = currency
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, s.db, user); err != nil {
		return domain.Onboarding{}, err
	}

	onboarding.BillingDone = true
	onboarding.BillingSkipped = false
	s.advance(onboarding)
	if err := s.repo.Update(ctx, s.db, onboarding); err != nil {
		return domain.Onboarding{}, err
	}
	return *onboarding, nil
}

// SkipBilling finishes the wizard without touching billing settings.
func (s *Service) SkipBilling(ctx context.Context) (domain.Onboarding, error) {
	onboarding, err := s.load(ctx)
	if err != nil {
		return domain.Onboarding{}, err
	}
	if !onboarding.ProfileDone {
		return domain.Onboarding{}, domain.ErrStepOrder
	}

	onboarding.BillingDone = true
	onboarding.BillingSkipped = true
	s.advance(onboarding)
	if err := s.repo.Update(ctx, s.db, onboarding); err != nil {
		return domain.Onboarding{}, err
	}
	return *onboarding, nil
}

func (s *Service) advance(onboarding *domain.Onboarding) {
	now := time.Now().UTC()
	switch {
	case !onboarding.ProfileDone:
		onboarding.Step = domain.StepProfile
	case !onboarding.BillingDone:
		onboarding.Step = domain.StepBilling
	default:
		onboarding.Step = domain.StepDone
		if onboarding.CompletedAt == nil {
			onboarding.CompletedAt = &now
		}
	}
	onboarding.UpdatedAt = now
}

func (s *Service) load(ctx context.Context) (*domain.Onboarding, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	onboarding, err := s.repo.FindByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if onboarding != nil {
		return onboarding, nil
	}

	now := time.Now().UTC()
	onboarding = &domain.Onboarding{
		UserID:    userID,
		Step:      domain.StepProfile,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, onboarding); err != nil {
		return nil, err
	}
	return onboarding, nil
}
