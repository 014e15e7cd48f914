package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/lancekit/lancekit/internal/auth/domain"
	authrepo "github.com/lancekit/lancekit/internal/auth/repository"
	"github.com/lancekit/lancekit/internal/onboarding/domain"
	onboardingrepo "github.com/lancekit/lancekit/internal/onboarding/repository"
	"github.com/lancekit/lancekit/internal/usercontext"
)

type fixture struct {
	svc    domain.Service
	db     *gorm.DB
	ctx    context.Context
	userID snowflake.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&authdomain.User{}, &domain.Onboarding{}))

	genID, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    gdb,
		Log:   zap.NewNop(),
		GenID: genID,
		Repo:  onboardingrepo.Provide(),
		Users: authrepo.Provide(),
	})

	userID := genID.Generate()
	require.NoError(t, gdb.Create(&authdomain.User{
		ID:           userID,
		Name:         "Sam",
		Email:        "sam@example.test",
		PasswordHash: "x",
		Currency:     "USD",
	}).Error)

	return &fixture{
		svc:    svc,
		db:     gdb,
		ctx:    usercontext.WithUserID(context.Background(), userID),
		userID: userID,
	}
}

func TestGetCreatesRecord(t *testing.T) {
	f := setup(t)

	onboarding, err := f.svc.Get(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StepProfile, onboarding.Step)
	assert.False(t, onboarding.ProfileDone)

	// second read resumes the same record
	again, err := f.svc.Get(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, onboarding.CreatedAt, again.CreatedAt)
}

func TestCompleteProfileUpdatesUser(t *testing.T) {
	f := setup(t)

	onboarding, err := f.svc.CompleteProfile(f.ctx, domain.ProfileStepRequest{
		Name:         "Sam Rivera",
		BusinessName: "Rivera Design",
	})
	require.NoError(t, err)
	assert.True(t, onboarding.ProfileDone)
	assert.Equal(t, domain.StepBilling, onboarding.Step)

	var user authdomain.User
	require.NoError(t, f.db.First(&user, "id = ?", f.userID).Error)
	assert.Equal(t, "Sam Rivera", user.Name)
	assert.Equal(t, "Rivera Design", user.BusinessName)
}

func TestCompleteProfileRequiresName(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CompleteProfile(f.ctx, domain.ProfileStepRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestBillingRequiresProfileFirst(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CompleteBilling(f.ctx, domain.BillingStepRequest{DefaultHourlyRate: 100})
	assert.ErrorIs(t, err, domain.ErrStepOrder)

	_, err = f.svc.SkipBilling(f.ctx)
	assert.ErrorIs(t, err, domain.ErrStepOrder)
}

func TestCompleteBillingFinishesWizard(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CompleteProfile(f.ctx, domain.ProfileStepRequest{Name: "Sam"})
	require.NoError(t, err)

	onboarding, err := f.svc.CompleteBilling(f.ctx, domain.BillingStepRequest{
		DefaultHourlyRate: 150,
		Currency:          "eur",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StepDone, onboarding.Step)
	assert.True(t, onboarding.BillingDone)
	assert.False(t, onboarding.BillingSkipped)
	require.NotNil(t, onboarding.CompletedAt)

	var user authdomain.User
	require.NoError(t, f.db.First(&user, "id = ?", f.userID).Error)
	assert.Equal(t, 150.0, user.DefaultHourlyRate)
	assert.Equal(t, "EUR", user.Currency)
}

func TestSkipBillingKeepsDefaults(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CompleteProfile(f.ctx, domain.ProfileStepRequest{Name: "Sam"})
	require.NoError(t, err)

	onboarding, err := f.svc.SkipBilling(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StepDone, onboarding.Step)
	assert.True(t, onboarding.BillingSkipped)

	var user authdomain.User
	require.NoError(t, f.db.First(&user, "id = ?", f.userID).Error)
	assert.Equal(t, "USD", user.Currency)
	assert.Zero(t, user.DefaultHourlyRate)
}
